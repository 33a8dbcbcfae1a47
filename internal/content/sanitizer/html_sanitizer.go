package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips scripts, event handlers and unsafe URLs from editor
// markup while keeping what the editor itself produces: basic marks,
// alignment, lists and styled images.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// alignable are the elements the alignment commands write text-align on.
var alignable = []string{"p", "div", "li", "blockquote", "pre", "h1", "h2", "h3", "h4", "h5", "h6"}

// NewHTMLSanitizer creates a sanitizer for achievement descriptions.
// Starts from the UGC policy. Data URIs are not allowed in images: the
// editor only ever inserts durable server URLs.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	policy.AllowStyles("text-align").
		MatchingEnum("left", "center", "right", "justify").
		OnElements(alignable...)
	policy.AllowStyles("max-width", "height", "margin", "border-radius").OnElements("img")

	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer strips all markup, leaving text.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns html with everything outside the policy removed.
func (s *HTMLSanitizer) Sanitize(html string) (string, error) {
	return s.policy.Sanitize(html), nil
}
