package editor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the live content tree of one Surface. The root element is a
// container that never appears in serialized output.
//
// Not safe for concurrent use; the owning Surface serializes access.
type Document struct {
	root *html.Node
	live map[*liveRange]struct{}
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{root: newElement("div"), live: make(map[*liveRange]struct{})}
}

// Root returns the container node. Hosts use it to build ranges.
func (d *Document) Root() *html.Node {
	return d.root
}

// SetContent replaces the whole tree with the parsed markup.
func (d *Document) SetContent(markup string) error {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	d.Clear()
	for _, n := range nodes {
		d.root.AppendChild(n)
	}
	return nil
}

// Content serializes the tree to markup.
func (d *Document) Content() string {
	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on void elements with children, which the
		// editor never builds; such a subtree is dropped from the output.
		_ = html.Render(&b, c)
	}
	return b.String()
}

// PlainText returns the text content with a line break after every block
// and for every <br>.
func (d *Document) PlainText() string {
	var b strings.Builder
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			return
		case isElement(n, "br"):
			b.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock(n) || isElement(n, "ul", "ol") {
			newline()
		}
	}
	walk(d.root)

	return strings.TrimSpace(b.String())
}

// WordCount returns the number of whitespace-separated words in the text.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.PlainText()))
}

// Clear removes every node. Calling it on an empty document is a no-op.
// Tracked ranges are lost.
func (d *Document) Clear() {
	d.loseAnchors()
	for c := d.root.FirstChild; c != nil; {
		next := c.NextSibling
		d.root.RemoveChild(c)
		c = next
	}
}

// IsEmpty reports whether the document holds no text and no images.
func (d *Document) IsEmpty() bool {
	if strings.TrimSpace(d.PlainText()) != "" {
		return false
	}
	return len(d.Registry(0).Images()) == 0
}

// FindText returns a range over the first occurrence of needle inside a
// single text node.
func (d *Document) FindText(needle string) (Range, bool) {
	if needle == "" {
		return Range{}, false
	}
	for _, t := range textNodes(d.root) {
		if i := strings.Index(t.Data, needle); i >= 0 {
			return Range{
				Start: Point{Node: t, Offset: i},
				End:   Point{Node: t, Offset: i + len(needle)},
			}, true
		}
	}
	return Range{}, false
}

// boundary is a position between two children of parent.
type boundary struct {
	parent *html.Node
	index  int
}

func (d *Document) boundaryPath(b boundary) []int {
	return append(indexPath(b.parent, d.root), b.index)
}

// pointPath orders points; a text offset sorts inside its text node.
func (d *Document) pointPath(p Point) []int {
	return append(indexPath(p.Node, d.root), p.Offset)
}

// boundaryAt turns p into a child boundary, splitting a text node when p
// falls inside it. split reports whether a node was inserted at the
// returned boundary.
func (d *Document) boundaryAt(p Point) (b boundary, split bool) {
	if p.Node.Type != html.TextNode {
		return boundary{parent: p.Node, index: p.Offset}, false
	}
	parent, i := p.Node.Parent, childIndex(p.Node)
	switch {
	case p.Offset <= 0:
		return boundary{parent: parent, index: i}, false
	case p.Offset >= len(p.Node.Data):
		return boundary{parent: parent, index: i + 1}, false
	}
	d.splitText(p.Node, p.Offset)
	return boundary{parent: parent, index: i + 1}, true
}

// splitRange converts r to child boundaries. The end is split first so the
// start offset stays inside the head of a shared text node.
func (d *Document) splitRange(r Range) (boundary, boundary) {
	end, _ := d.boundaryAt(r.End)
	start, split := d.boundaryAt(r.Start)
	if split && start.parent == end.parent && end.index >= start.index {
		end.index++
	}
	return start, end
}

// containedNodes returns the topmost nodes lying entirely between start and
// end, in document order.
func (d *Document) containedNodes(start, end boundary) []*html.Node {
	sp, ep := d.boundaryPath(start), d.boundaryPath(end)

	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			before := indexPath(c, d.root)
			after := append([]int(nil), before...)
			after[len(after)-1]++

			switch {
			case comparePaths(before, sp) >= 0 && comparePaths(after, ep) <= 0:
				out = append(out, c)
			case comparePaths(after, sp) <= 0 || comparePaths(before, ep) >= 0:
				// disjoint
			default:
				walk(c)
			}
		}
	}
	walk(d.root)
	return out
}

// selectedTexts splits r at its edges and returns the non-empty text nodes
// it covers.
func (d *Document) selectedTexts(r Range) []*html.Node {
	start, end := d.splitRange(r)
	var out []*html.Node
	for _, n := range d.containedNodes(start, end) {
		for _, t := range textNodes(n) {
			if t.Data != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// deleteContents removes what r covers and returns the collapsed point where
// it was.
func (d *Document) deleteContents(r Range) Point {
	if r.Start.Node == r.End.Node && r.Start.Node.Type == html.TextNode {
		d.editText(r.Start.Node, r.Start.Offset, r.End.Offset-r.Start.Offset, "")
		return r.Start
	}

	start, end := d.splitRange(r)
	for _, n := range d.containedNodes(start, end) {
		d.remove(n)
	}
	return Point{Node: start.parent, Offset: start.index}
}

// insertNodes places nodes at r (replacing its contents) and returns the
// point right after the last one.
func (d *Document) insertNodes(r Range, nodes ...*html.Node) Point {
	pt := r.Start
	if !r.Collapsed() {
		pt = d.deleteContents(r)
	}

	b, _ := d.boundaryAt(pt)
	ref := childAt(b.parent, b.index)
	for _, n := range nodes {
		b.parent.InsertBefore(n, ref)
	}

	last := nodes[len(nodes)-1]
	return Point{Node: b.parent, Offset: childIndex(last) + 1}
}

// insertText types s at r and returns the point after it.
func (d *Document) insertText(r Range, s string) Point {
	pt := r.Start
	if !r.Collapsed() {
		pt = d.deleteContents(r)
	}

	if pt.Node.Type == html.TextNode {
		d.editText(pt.Node, pt.Offset, 0, s)
		return Point{Node: pt.Node, Offset: pt.Offset + len(s)}
	}

	t := newText(s)
	pt.Node.InsertBefore(t, childAt(pt.Node, pt.Offset))
	return Point{Node: t, Offset: len(s)}
}
