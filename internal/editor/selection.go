package editor

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Point addresses a position in the tree. In a text node Offset is a byte
// offset into Data; in an element it is a child index.
type Point struct {
	Node   *html.Node
	Offset int
}

// Range is a span between two points. A collapsed range is a caret.
type Range struct {
	Start Point
	End   Point
}

// Caret returns a collapsed range at p.
func Caret(p Point) Range {
	return Range{Start: p, End: p}
}

func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// CollapseToEnd returns a caret at the end of r.
func (r Range) CollapseToEnd() Range {
	return Caret(r.End)
}

// CollapseToStart returns a caret at the start of r.
func (r Range) CollapseToStart() Range {
	return Caret(r.Start)
}

// Selection models the host's single, global selection: a focus flag plus
// the current range. Only a Tracker and the owning Surface write to it.
type Selection struct {
	focused bool
	rng     *Range
}

func (s *Selection) Focused() bool { return s.focused }

func (s *Selection) focus() { s.focused = true }

func (s *Selection) blur() { s.focused = false }

func (s *Selection) set(r Range) { s.rng = &r }

func (s *Selection) reset() { s.rng = nil }

// current returns the range as the host reports it: nothing at all while
// the editor is unfocused.
func (s *Selection) current() (Range, bool) {
	if !s.focused || s.rng == nil {
		return Range{}, false
	}
	return *s.rng, true
}

// Tracker guarantees that mutations act on a point inside the document.
type Tracker struct {
	doc *Document
	sel *Selection
}

// NewTracker binds a tracker to a document and the host selection.
func NewTracker(doc *Document, sel *Selection) *Tracker {
	return &Tracker{doc: doc, sel: sel}
}

// Capture reads the current host selection.
func (t *Tracker) Capture() (Range, bool) {
	r, ok := t.sel.current()
	if !ok {
		return Range{}, false
	}
	return t.ordered(r), true
}

// Validate reports whether r can be used for a mutation right now.
func (t *Tracker) Validate(r Range) bool {
	return t.validPoint(r.Start) && t.validPoint(r.End)
}

func (t *Tracker) validPoint(p Point) bool {
	n := p.Node
	if n == nil || !contains(t.doc.root, n) || isVoid(n) || p.Offset < 0 {
		return false
	}
	if insideOpaque(n, t.doc.root) {
		return false
	}
	switch n.Type {
	case html.TextNode:
		// Offsets count bytes and must not split a UTF-8 sequence.
		return p.Offset == len(n.Data) || p.Offset < len(n.Data) && utf8.RuneStart(n.Data[p.Offset])
	case html.ElementNode:
		return p.Offset <= childCount(n)
	}
	return false
}

// EnsureValidInsertionPoint focuses the editor and returns a usable range,
// falling back to the end of the document. The result is also written to
// the host selection.
func (t *Tracker) EnsureValidInsertionPoint() Range {
	t.sel.focus()
	if r, ok := t.Capture(); ok && t.Validate(r) {
		return r
	}
	r := t.CreateAtEnd()
	t.sel.set(r)
	return r
}

// CreateAtEnd builds a caret after the last content of the document. An
// empty text placeholder is appended when the document has no children.
// The walk never enters void or opaque elements and stops before a
// trailing comment; the caret then sits after them in their parent.
func (t *Tracker) CreateAtEnd() Range {
	root := t.doc.root
	if root.FirstChild == nil {
		placeholder := newText("")
		root.AppendChild(placeholder)
		return Caret(Point{Node: placeholder, Offset: 0})
	}

	n := root
	for c := n.LastChild; c != nil && c.Type != html.CommentNode && !isVoid(c) && !isOpaque(c); c = n.LastChild {
		n = c
	}
	if n.Type == html.TextNode {
		return Caret(Point{Node: n, Offset: len(n.Data)})
	}
	return Caret(Point{Node: n, Offset: childCount(n)})
}

// Restore applies r to the host selection. A range that is no longer inside
// the document is replaced by a caret at the end.
func (t *Tracker) Restore(r Range) Range {
	if !t.Validate(r) {
		r = t.CreateAtEnd()
	}
	t.sel.set(r)
	return r
}

// ordered swaps the ends of a backwards range. Ranges outside the document
// are returned untouched for Validate to reject.
func (t *Tracker) ordered(r Range) Range {
	if !t.Validate(r) {
		return r
	}
	if comparePaths(t.doc.pointPath(r.Start), t.doc.pointPath(r.End)) > 0 {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
