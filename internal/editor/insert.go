package editor

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"
)

// InsertPath tells which way an image ended up in the document.
type InsertPath int

const (
	// InsertAtCursor means the image landed at the (re-validated) range.
	InsertAtCursor InsertPath = iota
	// InsertAppended means the captured range was lost and the image went
	// to the refreshed insertion point, or precise placement failed and it
	// was appended to the end of the serialized content.
	InsertAppended
)

func (p InsertPath) String() string {
	if p == InsertAppended {
		return "appended"
	}
	return "at_cursor"
}

// placeFunc mutates the document for one insertion and returns the caret
// position after the inserted nodes.
type placeFunc func(d *Document, r Range, nodes ...*html.Node) (Point, error)

func placeNodes(d *Document, r Range, nodes ...*html.Node) (Point, error) {
	return d.insertNodes(r, nodes...), nil
}

// Engine inserts uploaded images. Once an upload has succeeded the image is
// always added to the document exactly once.
type Engine struct {
	doc     *Document
	tracker *Tracker
	place   placeFunc
	logger  *slog.Logger
}

// NewEngine creates an insertion engine over doc.
func NewEngine(doc *Document, tracker *Tracker, logger *slog.Logger) *Engine {
	return &Engine{doc: doc, tracker: tracker, place: placeNodes, logger: logger}
}

// Insert adds an image for url at captured, or at the current insertion
// point when captured is no longer valid. Only a precise insert at the
// captured range reports InsertAtCursor.
func (e *Engine) Insert(url, alt string, captured Range) InsertPath {
	path := InsertAtCursor
	r := captured
	if !e.tracker.Validate(r) {
		e.logger.Debug("captured range invalidated during upload, refreshing")
		r = e.tracker.EnsureValidInsertionPoint()
		path = InsertAppended
	}

	img := newImageNode(url, alt)
	br := newElement("br")
	if err := e.insertAt(r, img, br); err != nil {
		e.logger.Warn("precise image insertion failed, appending at end",
			"url", url,
			"error", err,
		)
		e.appendAtEnd(url, alt)
		return InsertAppended
	}
	return path
}

// insertAt performs the precise path. Partially inserted nodes are removed
// before an error is returned so the fallback cannot duplicate the image.
func (e *Engine) insertAt(r Range, nodes ...*html.Node) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("insert nodes: %v", rec)
		}
		if err != nil {
			for _, n := range nodes {
				if n.Parent != nil && contains(e.doc.root, n) {
					n.Parent.RemoveChild(n)
				}
			}
		}
	}()

	after, err := e.place(e.doc, r, nodes...)
	if err != nil {
		return err
	}
	e.tracker.Restore(Caret(after))
	return nil
}

func (e *Engine) appendAtEnd(url, alt string) {
	markup := e.doc.Content() + imageMarkup(url, alt)
	if err := e.doc.SetContent(markup); err != nil {
		// Parsing from a string reader cannot fail; keep the image anyway.
		e.doc.root.AppendChild(newImageNode(url, alt))
		e.doc.root.AppendChild(newElement("br"))
	}
	e.tracker.Restore(e.tracker.CreateAtEnd())
}
