package editor

import "golang.org/x/net/html"

// anchor is a position that follows edits to the tree. In a text node it is
// a byte offset; otherwise it is the boundary in node right before child
// before, with a nil before meaning the end of node. A zero anchor is lost.
type anchor struct {
	node   *html.Node
	offset int
	before *html.Node
}

func anchorAt(p Point) anchor {
	switch {
	case p.Node == nil:
		return anchor{}
	case p.Node.Type == html.TextNode:
		return anchor{node: p.Node, offset: p.Offset}
	}
	return anchor{node: p.Node, before: childAt(p.Node, p.Offset)}
}

// within reports whether a points into the subtree of n.
func (a anchor) within(n *html.Node) bool {
	if a.node == nil {
		return false
	}
	if a.node.Type != html.TextNode && a.before != nil {
		return contains(n, a.before)
	}
	return contains(n, a.node)
}

func (a anchor) point(root *html.Node) (Point, bool) {
	switch {
	case a.node == nil:
		return Point{}, false
	case a.node.Type == html.TextNode:
		if !contains(root, a.node) {
			return Point{}, false
		}
		return Point{Node: a.node, Offset: a.offset}, true
	case a.before != nil:
		parent := a.before.Parent
		if parent == nil || !contains(root, parent) {
			return Point{}, false
		}
		return Point{Node: parent, Offset: childIndex(a.before)}, true
	}
	if !contains(root, a.node) {
		return Point{}, false
	}
	return Point{Node: a.node, Offset: childCount(a.node)}, true
}

// liveRange is a range registered with its document. Splits, text edits
// and removals made through the document move its ends along with the
// content around them.
type liveRange struct {
	start, end anchor
}

// track registers r and returns its live copy. Callers must untrack it.
func (d *Document) track(r Range) *liveRange {
	if d.live == nil {
		d.live = make(map[*liveRange]struct{})
	}
	lr := &liveRange{start: anchorAt(r.Start), end: anchorAt(r.End)}
	d.live[lr] = struct{}{}
	return lr
}

func (d *Document) untrack(lr *liveRange) {
	delete(d.live, lr)
}

// resolve returns the current position of lr, or the zero Range when its
// content has left the document.
func (d *Document) resolve(lr *liveRange) Range {
	start, ok := lr.start.point(d.root)
	if !ok {
		return Range{}
	}
	end, ok := lr.end.point(d.root)
	if !ok {
		return Range{}
	}
	return Range{Start: start, End: end}
}

func (d *Document) eachAnchor(fn func(a *anchor)) {
	for lr := range d.live {
		fn(&lr.start)
		fn(&lr.end)
	}
}

// splitText cuts t at offset and moves anchors past offset into the tail.
func (d *Document) splitText(t *html.Node, offset int) *html.Node {
	tail := splitText(t, offset)
	d.eachAnchor(func(a *anchor) {
		if a.node == t && a.offset > offset {
			a.node = tail
			a.offset -= offset
		}
	})
	return tail
}

// editText replaces del bytes at pos in t with ins. Anchors inside the
// removed bytes collapse to pos; anchors after them shift.
func (d *Document) editText(t *html.Node, pos, del int, ins string) {
	t.Data = t.Data[:pos] + ins + t.Data[pos+del:]
	d.eachAnchor(func(a *anchor) {
		switch {
		case a.node != t || a.offset <= pos:
		case a.offset <= pos+del:
			a.offset = pos
		default:
			a.offset += len(ins) - del
		}
	})
}

// remove detaches n. Anchors inside it move to where n was.
func (d *Document) remove(n *html.Node) {
	if n.Parent == nil {
		return
	}
	at := anchor{node: n.Parent, before: n.NextSibling}
	d.eachAnchor(func(a *anchor) {
		if a.within(n) {
			*a = at
		}
	})
	detach(n)
}

// loseAnchors drops every live position, used when the whole tree is
// replaced.
func (d *Document) loseAnchors() {
	d.eachAnchor(func(a *anchor) {
		*a = anchor{}
	})
}
