package editor

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// Command names a toolbar formatting command.
type Command string

const (
	CommandBold          Command = "bold"
	CommandItalic        Command = "italic"
	CommandUnderline     Command = "underline"
	CommandJustifyLeft   Command = "justifyLeft"
	CommandJustifyCenter Command = "justifyCenter"
	CommandJustifyRight  Command = "justifyRight"
	CommandOrderedList   Command = "insertOrderedList"
	CommandUnorderedList Command = "insertUnorderedList"
	CommandRemoveFormat  Command = "removeFormat"
)

// ErrUnknownCommand is returned for command names the surface does not know.
var ErrUnknownCommand = errors.New("unknown format command")

// Commands lists every supported command in toolbar order.
func Commands() []Command {
	return []Command{
		CommandBold, CommandItalic, CommandUnderline,
		CommandJustifyLeft, CommandJustifyCenter, CommandJustifyRight,
		CommandOrderedList, CommandUnorderedList, CommandRemoveFormat,
	}
}

type markSpec struct {
	tag     string
	aliases []string
}

var marks = map[Command]markSpec{
	CommandBold:      {tag: "strong", aliases: []string{"strong", "b"}},
	CommandItalic:    {tag: "em", aliases: []string{"em", "i"}},
	CommandUnderline: {tag: "u", aliases: []string{"u"}},
}

var alignments = map[Command]string{
	CommandJustifyLeft:   "left",
	CommandJustifyCenter: "center",
	CommandJustifyRight:  "right",
}

var lists = map[Command]string{
	CommandOrderedList:   "ol",
	CommandUnorderedList: "ul",
}

// apply runs cmd over r and returns the range to select afterwards.
func (d *Document) apply(cmd Command, r Range) (Range, error) {
	if m, ok := marks[cmd]; ok {
		return d.toggleMark(r, m), nil
	}
	if align, ok := alignments[cmd]; ok {
		for _, b := range d.blocksFor(r) {
			setStyleProperty(b, "text-align", align)
		}
		return r, nil
	}
	if tag, ok := lists[cmd]; ok {
		d.toggleList(r, tag)
		return r, nil
	}
	if cmd == CommandRemoveFormat {
		return d.removeMarks(r), nil
	}
	return r, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

func (d *Document) markAncestor(n *html.Node, tags []string) *html.Node {
	for p := n.Parent; p != nil && p != d.root; p = p.Parent {
		if isElement(p, tags...) {
			return p
		}
	}
	return nil
}

// spanning selects from the start of the first text to the end of the last.
func spanning(texts []*html.Node) Range {
	last := texts[len(texts)-1]
	return Range{
		Start: Point{Node: texts[0], Offset: 0},
		End:   Point{Node: last, Offset: len(last.Data)},
	}
}

// toggleMark removes the mark when every selected text already carries it
// and adds it to the rest otherwise. A caret is left alone.
func (d *Document) toggleMark(r Range, m markSpec) Range {
	if r.Collapsed() {
		return r
	}
	texts := d.selectedTexts(r)
	if len(texts) == 0 {
		return r
	}

	marked := true
	for _, t := range texts {
		if d.markAncestor(t, m.aliases) == nil {
			marked = false
			break
		}
	}

	for _, t := range texts {
		if marked {
			for a := d.markAncestor(t, m.aliases); a != nil; a = d.markAncestor(t, m.aliases) {
				unwrap(isolate(t, a))
			}
			continue
		}
		if d.markAncestor(t, m.aliases) == nil {
			wrap(t, newElement(m.tag))
		}
	}
	return spanning(texts)
}

func (d *Document) removeMarks(r Range) Range {
	if r.Collapsed() {
		return r
	}
	texts := d.selectedTexts(r)
	if len(texts) == 0 {
		return r
	}

	all := make([]string, 0, len(markElements))
	for tag := range markElements {
		all = append(all, tag)
	}
	for _, t := range texts {
		for a := d.markAncestor(t, all); a != nil; a = d.markAncestor(t, all) {
			unwrap(isolate(t, a))
		}
	}
	return spanning(texts)
}

// blocksFor returns the distinct blocks touched by r, creating a paragraph
// around loose inline content at the top level.
func (d *Document) blocksFor(r Range) []*html.Node {
	var nodes []*html.Node
	if !r.Collapsed() {
		nodes = d.selectedTexts(r)
	}
	if len(nodes) == 0 {
		n := r.Start.Node
		if n.Type == html.ElementNode && !isBlock(n) {
			if c := childAt(n, r.Start.Offset); c != nil {
				n = c
			} else if n.LastChild != nil {
				n = n.LastChild
			}
		}
		nodes = append(nodes, n)
	}

	seen := make(map[*html.Node]bool)
	var blocks []*html.Node
	for _, n := range nodes {
		b := d.blockOf(n)
		if b != nil && !seen[b] {
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func (d *Document) blockOf(n *html.Node) *html.Node {
	for c := n; c != nil && c != d.root; c = c.Parent {
		if isBlock(c) {
			return c
		}
	}
	return d.ensureBlock(n)
}

// ensureBlock wraps the run of inline top-level nodes around n in a <p>.
func (d *Document) ensureBlock(n *html.Node) *html.Node {
	if n == d.root {
		p := newElement("p")
		d.root.AppendChild(p)
		return p
	}
	top := n
	for top.Parent != d.root {
		top = top.Parent
	}
	if isElement(top, "ul", "ol") && isElement(top.LastChild, "li") {
		return top.LastChild
	}

	first, last := top, top
	for first.PrevSibling != nil && !isBlock(first.PrevSibling) && !isElement(first.PrevSibling, "ul", "ol") {
		first = first.PrevSibling
	}
	for last.NextSibling != nil && !isBlock(last.NextSibling) && !isElement(last.NextSibling, "ul", "ol") {
		last = last.NextSibling
	}

	p := newElement("p")
	d.root.InsertBefore(p, first)
	for c := first; ; {
		next := c.NextSibling
		d.root.RemoveChild(c)
		p.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return p
}

// toggleList turns the blocks into entries of a tag list, or back into
// paragraphs when they already are.
func (d *Document) toggleList(r Range, tag string) {
	blocks := d.blocksFor(r)
	if len(blocks) == 0 {
		return
	}

	listed := true
	for _, b := range blocks {
		if !isElement(b, "li") || !isElement(b.Parent, tag) {
			listed = false
			break
		}
	}
	if listed {
		for _, li := range blocks {
			list := isolate(li, li.Parent)
			rename(li, "p")
			unwrap(list)
		}
		return
	}

	var list *html.Node
	for _, b := range blocks {
		if isElement(b, "li") {
			if isElement(b.Parent, "ul", "ol") && b.Parent.Data != tag {
				rename(b.Parent, tag)
			}
			continue
		}
		if list == nil {
			list = newElement(tag)
			b.Parent.InsertBefore(list, b)
		}
		li := newElement("li")
		li.Attr = b.Attr
		moveChildren(b, li)
		detach(b)
		list.AppendChild(li)
	}
}
