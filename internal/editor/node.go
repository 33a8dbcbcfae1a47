package editor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

// blockElements are the containers alignment and list commands operate on.
// ul/ol are deliberately absent: the block of a list entry is its li.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var markElements = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true, "s": true,
	"strike": true, "del": true, "span": true, "font": true, "sub": true,
	"sup": true, "mark": true,
}

// opaqueElements hold raw text or parser-private content. Markup placed
// inside them does not survive a serialize and parse cycle.
var opaqueElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Textarea: true, atom.Title: true,
	atom.Xmp: true, atom.Iframe: true, atom.Noscript: true, atom.Noembed: true,
	atom.Noframes: true, atom.Plaintext: true, atom.Template: true,
}

func isVoid(n *html.Node) bool {
	return n.Type == html.ElementNode && voidElements[n.Data]
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[n.Data]
}

func isOpaque(n *html.Node) bool {
	return n.Type == html.ElementNode && opaqueElements[n.DataAtom]
}

// insideOpaque reports whether n is, or sits inside, an opaque element
// below root.
func insideOpaque(n, root *html.Node) bool {
	for c := n; c != nil && c != root; c = c.Parent {
		if isOpaque(c) {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// contains reports whether n is ancestor or a descendant of ancestor.
func contains(ancestor, n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == ancestor {
			return true
		}
	}
	return false
}

func childIndex(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

func childCount(n *html.Node) int {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
	}
	return i
}

// childAt returns the i-th child of n, or nil when i is past the last child.
func childAt(n *html.Node, i int) *html.Node {
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

func newElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func shallowClone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	return c
}

func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// moveChildren re-parents every child of from onto the end of to.
func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	p := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		p.InsertBefore(c, n)
		c = next
	}
	p.RemoveChild(n)
}

// wrap puts w where n was and n inside w.
func wrap(n, w *html.Node) {
	n.Parent.InsertBefore(w, n)
	n.Parent.RemoveChild(n)
	w.AppendChild(n)
}

// isolate splits every element between n and anc so that anc ends up holding
// only the branch leading to n. Siblings on either side move into shallow
// clones placed before and after at each level. Returns anc.
func isolate(n, anc *html.Node) *html.Node {
	child := n
	for p := n.Parent; p != nil; p = p.Parent {
		if child.NextSibling != nil {
			after := shallowClone(p)
			for s := child.NextSibling; s != nil; {
				next := s.NextSibling
				p.RemoveChild(s)
				after.AppendChild(s)
				s = next
			}
			p.Parent.InsertBefore(after, p.NextSibling)
		}
		if child.PrevSibling != nil {
			before := shallowClone(p)
			for s := p.FirstChild; s != child; {
				next := s.NextSibling
				p.RemoveChild(s)
				before.AppendChild(s)
				s = next
			}
			p.Parent.InsertBefore(before, p)
		}
		if p == anc {
			return p
		}
		child = p
	}
	return anc
}

// splitText cuts t at offset; t keeps the head and the returned node,
// inserted right after t, holds the tail.
func splitText(t *html.Node, offset int) *html.Node {
	tail := newText(t.Data[offset:])
	t.Data = t.Data[:offset]
	t.Parent.InsertBefore(tail, t.NextSibling)
	return tail
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// setStyleProperty replaces or appends one declaration in n's style attribute.
func setStyleProperty(n *html.Node, prop, val string) {
	var decls []string
	replaced := false
	for _, d := range strings.Split(getAttr(n, "style"), ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		name, _, _ := strings.Cut(d, ":")
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			d = prop + ": " + val
			replaced = true
		}
		decls = append(decls, d)
	}
	if !replaced {
		decls = append(decls, prop+": "+val)
	}
	setAttr(n, "style", strings.Join(decls, "; ")+";")
}

// indexPath lists child indices from root down to n. The path of root is empty.
func indexPath(n, root *html.Node) []int {
	var rev []int
	for c := n; c != nil && c != root; c = c.Parent {
		rev = append(rev, childIndex(c))
	}
	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// comparePaths orders two positions in document order. A path that is a
// prefix of another sorts first.
func comparePaths(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// textNodes returns the text descendants of n (n included) in document order.
func textNodes(n *html.Node) []*html.Node {
	if n.Type == html.TextNode {
		return []*html.Node{n}
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, textNodes(c)...)
	}
	return out
}
