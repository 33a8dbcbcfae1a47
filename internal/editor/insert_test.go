package editor

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const testImageURL = "https://cdn.example.com/a.png"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, markup string) (*Document, *Selection, *Engine) {
	t.Helper()
	d := newDoc(t, markup)
	sel := &Selection{}
	return d, sel, NewEngine(d, NewTracker(d, sel), discardLogger())
}

func TestEngine_InsertAtCursor(t *testing.T) {
	d, sel, e := newTestEngine(t, `<p>Hello world</p>`)
	r, _ := d.FindText("Hello")

	path := e.Insert(testImageURL, "a.png", r.CollapseToEnd())

	assert.Equal(t, InsertAtCursor, path)
	assert.Equal(t,
		`<p>Hello<img src="`+testImageURL+`" alt="a.png" style="`+imageStyle+`"/><br/> world</p>`,
		d.Content())

	// The caret sits after the line break so typing continues below the image
	require.NotNil(t, sel.rng)
	assert.Equal(t, Caret(Point{Node: d.Root().FirstChild, Offset: 3}), *sel.rng)
}

func TestEngine_ReplacesSelection(t *testing.T) {
	d, _, e := newTestEngine(t, `<p>Hello world</p>`)
	r, _ := d.FindText("world")

	assert.Equal(t, InsertAtCursor, e.Insert(testImageURL, "a", r))
	assert.Equal(t, `<p>Hello <img src="`+testImageURL+`" alt="a" style="`+imageStyle+`"/><br/></p>`, d.Content())
}

func TestEngine_StaleRange(t *testing.T) {
	d, _, e := newTestEngine(t, `<p>Hello</p>`)
	r, _ := d.FindText("Hello")

	require.NoError(t, d.SetContent(`<p>New</p>`))
	path := e.Insert(testImageURL, "a", r)

	// Placed at the refreshed point, but not where the user left the caret
	assert.Equal(t, InsertAppended, path)
	assert.Equal(t, `<p>New<img src="`+testImageURL+`" alt="a" style="`+imageStyle+`"/><br/></p>`, d.Content())
}

func TestEngine_EmptyDocument(t *testing.T) {
	d, _, e := newTestEngine(t, ``)

	path := e.Insert(testImageURL, "a", Range{})

	assert.Equal(t, InsertAppended, path)
	assert.Equal(t, `<img src="`+testImageURL+`" alt="a" style="`+imageStyle+`"/><br/>`, d.Content())
	assert.Equal(t, 1, d.Registry(10).Count())
}

func TestEngine_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		place placeFunc
	}{
		{
			name: "placement error after partial insert",
			place: func(d *Document, r Range, nodes ...*html.Node) (Point, error) {
				d.insertNodes(r, nodes...)
				return Point{}, errors.New("boom")
			},
		},
		{
			name: "placement panic",
			place: func(d *Document, r Range, nodes ...*html.Node) (Point, error) {
				d.insertNodes(r, nodes[0])
				panic("broken tree")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, e := newTestEngine(t, `<p>Hello world</p>`)
			e.place = tt.place
			r, _ := d.FindText("Hello")

			path := e.Insert(testImageURL, "a", r.CollapseToEnd())

			assert.Equal(t, InsertAppended, path)
			content := d.Content()
			assert.Equal(t, 1, strings.Count(content, testImageURL), content)
			assert.True(t, strings.HasPrefix(content, `<p>Hello world</p><img src="`+testImageURL+`"`), content)
			assert.Equal(t, 1, d.Registry(10).Count())
		})
	}
}

func TestEngine_FallbackSurvivesRoundTrip(t *testing.T) {
	inputs := []string{
		`<p>Hello</p><style>p { color: red; }</style>`,
		`<p>Hello</p><textarea>draft</textarea>`,
		`<div><p>Hello</p><script>track()</script></div>`,
		`<p>Hello</p><title>Results</title>`,
		`<p>Hello</p><!-- end -->`,
	}
	failing := func(d *Document, r Range, nodes ...*html.Node) (Point, error) {
		return Point{}, errors.New("boom")
	}

	for _, in := range inputs {
		for _, precise := range []bool{true, false} {
			d, _, e := newTestEngine(t, in)
			if !precise {
				e.place = failing
			}

			assert.Equal(t, InsertAppended, e.Insert(testImageURL, "a", Range{}), in)

			content := d.Content()
			assert.Equal(t, 1, strings.Count(content, testImageURL), content)
			assert.Equal(t, 1, d.Registry(10).Count(), content)

			again := newDoc(t, content)
			assert.Equal(t, 1, again.Registry(10).Count(), content)
			assert.Equal(t, content, again.Content())
		}
	}
}

func TestEngine_MidRuneRangeIsRefreshed(t *testing.T) {
	d, _, e := newTestEngine(t, `<p>成果展示</p>`)
	text := d.Root().FirstChild.FirstChild

	path := e.Insert(testImageURL, "a", Caret(Point{Node: text, Offset: 1}))

	assert.Equal(t, InsertAppended, path)
	content := d.Content()
	assert.True(t, utf8.ValidString(content), content)
	assert.Equal(t, `<p>成果展示<img src="`+testImageURL+`" alt="a" style="`+imageStyle+`"/><br/></p>`, content)
}

func TestInsertPath_String(t *testing.T) {
	assert.Equal(t, "at_cursor", InsertAtCursor.String())
	assert.Equal(t, "appended", InsertAppended.String())
}
