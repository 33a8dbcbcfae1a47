package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"achievements/internal/editor"
	"achievements/internal/upload"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// uploadServer answers with failures first, then with a durable URL.
func uploadServer(t *testing.T, failures int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "editor", r.URL.Query().Get("profile"))

		w.Header().Set("Content-Type", "application/json")
		if int(n) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"data":{"message":"try later"}}`))
			return
		}
		_, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"url": "https://cdn.example.com/" + hdr.Filename},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestInsertImage(t *testing.T) {
	srv, hits := uploadServer(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(`<p>Won a medal today</p>`))
	img := writeFile(t, dir, "medal.png", pngHeader)
	out := filepath.Join(dir, "out.html")

	_, stderr, err := runCLI(t, "insert-image",
		"--endpoint", srv.URL, "--token", "test-token", "--sanitize=false",
		"--in", in, "--out", out, "--image", img, "--after", "medal")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		`<p>Won a medal<img src="https://cdn.example.com/medal.png" alt="medal.png" style="max-width: 100%; height: auto; margin: 10px 0; border-radius: 4px;"/><br/> today</p>`,
		string(got))
	assert.Contains(t, stderr, "inserted https://cdn.example.com/medal.png (1 of 10 images used)")
	assert.Equal(t, int32(1), hits.Load())
}

func TestInsertImage_Sanitized(t *testing.T) {
	srv, _ := uploadServer(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(`<p onclick="steal()">Won</p>`))
	img := writeFile(t, dir, "medal.png", pngHeader)

	stdout, _, err := runCLI(t, "insert-image",
		"--endpoint", srv.URL, "--token", "test-token",
		"--in", in, "--image", img)
	require.NoError(t, err)

	assert.NotContains(t, stdout, "onclick")
	assert.Contains(t, stdout, `src="https://cdn.example.com/medal.png"`)
}

func TestInsertImage_RetriesServerFailures(t *testing.T) {
	srv, hits := uploadServer(t, 1)
	dir := t.TempDir()
	img := writeFile(t, dir, "medal.png", pngHeader)

	stdout, stderr, err := runCLI(t, "insert-image",
		"--endpoint", srv.URL, "--token", "test-token",
		"--image", img, "--retries", "2", "--retry-delay", "1ms")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Contains(t, stderr, "upload attempt 1 failed: Image upload failed: try later")
	assert.Contains(t, stdout, "https://cdn.example.com/medal.png")
}

func TestInsertImage_GivesUpAfterRetries(t *testing.T) {
	srv, hits := uploadServer(t, 10)
	dir := t.TempDir()
	img := writeFile(t, dir, "medal.png", pngHeader)

	_, _, err := runCLI(t, "insert-image",
		"--endpoint", srv.URL, "--token", "test-token",
		"--image", img, "--retries", "1", "--retry-delay", "1ms")
	assert.ErrorIs(t, err, upload.ErrServerRejected)
	assert.Equal(t, int32(2), hits.Load())
}

func TestInsertImage_InvalidFileIsNotRetried(t *testing.T) {
	srv, hits := uploadServer(t, 0)
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.txt", []byte("not an image"))

	_, _, err := runCLI(t, "insert-image",
		"--endpoint", srv.URL, "--token", "test-token",
		"--image", notes, "--retries", "3", "--retry-delay", "1ms")
	assert.ErrorIs(t, err, upload.ErrInvalidType)
	assert.Zero(t, hits.Load())
}

func TestInsertImage_UnknownAnchor(t *testing.T) {
	srv, hits := uploadServer(t, 0)
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(`<p>Won</p>`))
	img := writeFile(t, dir, "medal.png", pngHeader)

	_, _, err := runCLI(t, "insert-image", "--endpoint", srv.URL,
		"--in", in, "--image", img, "--after", "silver")
	assert.ErrorContains(t, err, `text "silver" not found`)
	assert.Zero(t, hits.Load())
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(`<p>Won a medal</p>`))

	stdout, _, err := runCLI(t, "format", "--sanitize=false",
		"--in", in, "--select", "medal", "-c", "bold", "-c", "justifyCenter")
	require.NoError(t, err)
	assert.Equal(t, `<p style="text-align: center;">Won a <strong>medal</strong></p>`+"\n", stdout)

	_, _, err = runCLI(t, "format", "--in", in, "-c", "strikeThrough")
	assert.ErrorIs(t, err, editor.ErrUnknownCommand)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(`<p>Hi</p><img src="https://cdn.example.com/a.png" alt="a">`))

	stdout, _, err := runCLI(t, "inspect", "--in", in, "--max-images", "1")
	require.NoError(t, err)

	var got inspection
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.False(t, got.Empty)
	assert.Equal(t, "Hi", got.PlainText)
	assert.Equal(t, 1, got.WordCount)
	assert.Equal(t, []editor.ImageInfo{{Src: "https://cdn.example.com/a.png", Alt: "a"}}, got.Images)
	assert.Equal(t, "1 of 1 images used", got.ImageSummary)
	assert.True(t, got.Validation.Valid)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "desc.html", []byte(
		`<p onclick="x()"><strong>Won</strong> gold</p><ul><li>regional final</li></ul><script>alert(1)</script>`))

	md, _, err := runCLI(t, "export", "--in", in)
	require.NoError(t, err)
	assert.Contains(t, md, "**Won** gold")
	assert.Contains(t, md, "- regional final")
	assert.NotContains(t, md, "alert")

	html, _, err := runCLI(t, "export", "--in", in, "--format", "html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, `<p><strong>Won</strong> gold</p>`), html)
	assert.NotContains(t, html, "script")

	_, _, err = runCLI(t, "export", "--in", in, "--format", "pdf")
	assert.Error(t, err)
}
