package editor

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// imageStyle is applied to every image the editor inserts.
const imageStyle = "max-width: 100%; height: auto; margin: 10px 0; border-radius: 4px;"

// ImageInfo describes one image node found in the document.
type ImageInfo struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Registry lists the images currently in a document. It holds no state of
// its own: every call rescans the tree, so it cannot drift from the content.
type Registry struct {
	doc *Document
	max int
}

// Registry returns a registry view bounded by max images (0 = unbounded).
func (d *Document) Registry(max int) Registry {
	return Registry{doc: d, max: max}
}

// Images returns the document's images in document order.
func (r Registry) Images() []ImageInfo {
	var out []ImageInfo
	goquery.NewDocumentFromNode(r.doc.root).Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		out = append(out, ImageInfo{Src: src, Alt: alt})
	})
	return out
}

func (r Registry) Count() int {
	return goquery.NewDocumentFromNode(r.doc.root).Find("img").Length()
}

func (r Registry) Max() int { return r.max }

// Full reports whether another image would exceed the bound.
func (r Registry) Full() bool {
	return r.max > 0 && r.Count() >= r.max
}

// Remaining returns how many more images fit, or -1 when unbounded.
func (r Registry) Remaining() int {
	if r.max <= 0 {
		return -1
	}
	if n := r.max - r.Count(); n > 0 {
		return n
	}
	return 0
}

// Summary renders the "N of M images used" status line.
func (r Registry) Summary() string {
	if r.max <= 0 {
		return fmt.Sprintf("%d images used", r.Count())
	}
	return fmt.Sprintf("%d of %d images used", r.Count(), r.max)
}

// Validate fails when the document holds more images than the bound.
func (r Registry) Validate() ValidationResult {
	if n := r.Count(); r.max > 0 && n > r.max {
		return ValidationResult{Error: fmt.Sprintf("too many images: %d (at most %d)", n, r.max)}
	}
	return ValidationResult{Valid: true}
}

// newImageNode builds the image element inserted after an upload.
func newImageNode(src, alt string) *html.Node {
	return newElement("img",
		html.Attribute{Key: "src", Val: src},
		html.Attribute{Key: "alt", Val: alt},
		html.Attribute{Key: "style", Val: imageStyle},
	)
}

// imageMarkup renders the image and its trailing line break for the
// append-at-end path.
func imageMarkup(src, alt string) string {
	d := NewDocument()
	d.root.AppendChild(newImageNode(src, alt))
	d.root.AppendChild(newElement("br"))
	return d.Content()
}
