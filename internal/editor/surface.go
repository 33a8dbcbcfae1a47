package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"achievements/internal/upload"
)

// ErrDestroyed is returned by operations on a destroyed surface.
var ErrDestroyed = errors.New("editor surface destroyed")

// ImageSource is the user action that started an image insertion.
type ImageSource string

const (
	SourcePicker ImageSource = "picker"
	SourceDrop   ImageSource = "drop"
	SourcePaste  ImageSource = "paste"
)

// UploadState is a step of one image insertion attempt.
type UploadState string

const (
	StateIdle            UploadState = "idle"
	StateFileSelected    UploadState = "file_selected"
	StateUploading       UploadState = "uploading"
	StateInsertSucceeded UploadState = "insert_succeeded"
	StateInsertFallback  UploadState = "insert_fallback"
	StateUploadFailed    UploadState = "upload_failed"
)

// FilePicker opens the host's file dialog. A nil file with a nil error
// means the user cancelled.
type FilePicker interface {
	PickFile(ctx context.Context) (*upload.File, error)
}

// FilePickerFunc adapts a function to FilePicker.
type FilePickerFunc func(ctx context.Context) (*upload.File, error)

func (f FilePickerFunc) PickFile(ctx context.Context) (*upload.File, error) { return f(ctx) }

// ValidationResult is what the host page checks before submission.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// pendingUpload is one in-flight insertion attempt.
type pendingUpload struct {
	id       uuid.UUID
	source   ImageSource
	captured *liveRange
	file     upload.File
	state    UploadState
}

// Surface is a headless rich text editor. Document mutations are serialized
// by mu; uploads run without holding it so typing and other insertions
// proceed while an upload is in flight.
type Surface struct {
	mu        sync.Mutex
	opts      Options
	doc       *Document
	sel       *Selection
	tracker   *Tracker
	engine    *Engine
	uploader  Uploader
	status    *statusBoard
	logger    *slog.Logger
	inFlight  int
	destroyed bool
}

// New builds a surface and, unless opts.Uploader is set, its upload client.
func New(opts Options) (*Surface, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid editor options: %w", err)
	}

	uploader := opts.Uploader
	if uploader == nil {
		client, err := upload.NewClient(upload.Config{
			Endpoint:    opts.UploadEndpoint,
			Encoding:    opts.UploadEncoding,
			Credentials: opts.Credentials,
			HTTPClient:  opts.HTTPClient,
			Logger:      opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		uploader = client
	}

	doc := NewDocument()
	sel := &Selection{}
	tracker := NewTracker(doc, sel)
	return &Surface{
		opts:     opts,
		doc:      doc,
		sel:      sel,
		tracker:  tracker,
		engine:   NewEngine(doc, tracker, opts.Logger),
		uploader: uploader,
		status:   newStatusBoard(opts.StatusTTL, opts.OnStatus),
		logger:   opts.Logger,
	}, nil
}

// GetContent returns the serialized document, sanitized when a Sanitizer
// is configured.
func (s *Surface) GetContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentLocked()
}

func (s *Surface) contentLocked() string {
	markup := s.doc.Content()
	if s.opts.Sanitizer == nil {
		return markup
	}
	clean, err := s.opts.Sanitizer.Sanitize(markup)
	if err != nil {
		s.logger.Error("failed to sanitize content", "error", err)
		return markup
	}
	return clean
}

// SetContent replaces the document wholesale and moves the caret to the end.
func (s *Surface) SetContent(markup string) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	if err := s.doc.SetContent(markup); err != nil {
		s.mu.Unlock()
		return err
	}
	s.sel.reset()
	out := s.contentLocked()
	s.mu.Unlock()

	s.contentChanged(out)
	return nil
}

func (s *Surface) GetPlainText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.PlainText()
}

func (s *Surface) WordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.WordCount()
}

// Clear empties the document. Clearing twice is the same as clearing once.
func (s *Surface) Clear() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.doc.Clear()
	s.sel.reset()
	s.mu.Unlock()

	s.contentChanged("")
}

// Focus gives the editor focus and makes sure the caret is inside it.
func (s *Surface) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.tracker.EnsureValidInsertionPoint()
}

// Blur removes focus; the host stops reporting a selection.
func (s *Surface) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.blur()
}

// Select sets the host selection, as a click or drag would. r may lie
// outside the document, as when the user selects elsewhere on the page.
func (s *Surface) Select(r Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.focus()
	s.sel.set(r)
}

// SelectText selects the first occurrence of needle. With caretAfter the
// selection collapses to just after it.
func (s *Surface) SelectText(needle string, caretAfter bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.doc.FindText(needle)
	if !ok {
		return false
	}
	if caretAfter {
		r = r.CollapseToEnd()
	}
	s.sel.focus()
	s.sel.set(r)
	return true
}

// Selection returns the host selection as currently reported.
func (s *Surface) Selection() (Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Capture()
}

// Document exposes the tree for hosts that build ranges by hand. Reads and
// writes must not race with surface operations.
func (s *Surface) Document() *Document {
	return s.doc
}

// Images lists the images currently in the document.
func (s *Surface) Images() []ImageInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Registry(s.opts.MaxImages).Images()
}

// ImageSummary renders "N of M images used".
func (s *Surface) ImageSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Registry(s.opts.MaxImages).Summary()
}

// Placeholder returns the placeholder text while the document is empty.
func (s *Surface) Placeholder() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.IsEmpty() {
		return "", false
	}
	return s.opts.PlaceholderText, true
}

// Status returns the visible status message, if any.
func (s *Surface) Status() (StatusMessage, bool) {
	return s.status.get()
}

// Validate reports whether the image count is within the configured bound.
func (s *Surface) Validate() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Registry(s.opts.MaxImages).Validate()
}

// Destroy stops timers and rejects further mutations. Uploads still in
// flight complete but are not inserted.
func (s *Surface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
	s.status.stop()
}

// InsertText types text at the caret.
func (s *Surface) InsertText(text string) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	r := s.tracker.EnsureValidInsertionPoint()
	after := s.doc.insertText(r, text)
	s.tracker.Restore(Caret(after))
	out := s.contentLocked()
	s.mu.Unlock()

	s.contentChanged(out)
	return nil
}

// ExecuteFormatCommand applies a toolbar command to the current selection.
func (s *Surface) ExecuteFormatCommand(cmd Command) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	r := s.tracker.EnsureValidInsertionPoint()
	next, err := s.doc.apply(cmd, r)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tracker.Restore(next)
	out := s.contentLocked()
	s.mu.Unlock()

	s.contentChanged(out)
	return nil
}

// InsertImageFromPicker is the toolbar path: the picker only opens when
// another image is allowed. A cancelled picker returns (nil, nil).
func (s *Surface) InsertImageFromPicker(ctx context.Context, picker FilePicker) (*upload.Result, error) {
	return s.insertImage(ctx, SourcePicker, picker.PickFile)
}

// InsertImageFromDrop inserts the first image among dropped files.
func (s *Surface) InsertImageFromDrop(ctx context.Context, files []upload.File) (*upload.Result, error) {
	return s.insertImage(ctx, SourceDrop, firstImage(files))
}

// InsertImageFromPaste inserts the first image among clipboard items. A
// paste without image items is not an image insertion and returns (nil, nil).
func (s *Surface) InsertImageFromPaste(ctx context.Context, items []upload.File) (*upload.Result, error) {
	hasImage := false
	for _, it := range items {
		hasImage = hasImage || it.IsImage()
	}
	if !hasImage {
		return nil, nil
	}
	return s.insertImage(ctx, SourcePaste, firstImage(items))
}

// firstImage picks the first image-typed item. When there is none the
// first item is returned so the upload check reports why it was refused.
func firstImage(files []upload.File) func(context.Context) (*upload.File, error) {
	return func(context.Context) (*upload.File, error) {
		for i := range files {
			if files[i].IsImage() {
				return &files[i], nil
			}
		}
		if len(files) > 0 {
			return &files[0], nil
		}
		return nil, nil
	}
}

func (s *Surface) insertImage(ctx context.Context, source ImageSource, obtain func(context.Context) (*upload.File, error)) (*upload.Result, error) {
	p := &pendingUpload{id: uuid.New(), source: source, state: StateIdle}
	log := s.logger.With("upload_id", p.id, "source", source)

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil, ErrDestroyed
	}
	// Uploads still in flight count against the limit so concurrent
	// insertions cannot overshoot it.
	if s.doc.Registry(s.opts.MaxImages).Count()+s.inFlight >= s.opts.MaxImages {
		s.mu.Unlock()
		return nil, s.fail(log, p, upload.LimitReached(s.opts.MaxImages))
	}
	// The captured range is tracked so typing and other insertions made
	// during the upload move it along with the text around it.
	p.captured = s.doc.track(s.tracker.EnsureValidInsertionPoint())
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.doc.untrack(p.captured)
		s.inFlight--
		s.mu.Unlock()
	}()

	file, err := obtain(ctx)
	if err != nil {
		return nil, s.fail(log, p, err)
	}
	if file == nil {
		log.Debug("image insertion cancelled")
		return nil, nil
	}
	p.file = *file
	s.transition(log, p, StateFileSelected)

	limits := upload.Constraints{MaxBytes: s.opts.MaxImageBytes}
	if err := upload.Check(p.file, limits); err != nil {
		return nil, s.fail(log, p, err)
	}

	s.transition(log, p, StateUploading)
	result, err := s.uploader.Upload(ctx, p.file, limits)
	if err != nil {
		return nil, s.fail(log, p, err)
	}

	alt := s.opts.AltText
	if alt == "" {
		alt = p.file.Name
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		log.Info("surface destroyed during upload, image not inserted", "url", result.URL)
		return result, ErrDestroyed
	}
	path := s.engine.Insert(result.URL, alt, s.doc.resolve(p.captured))
	out := s.contentLocked()
	s.mu.Unlock()

	if path == InsertAppended {
		s.transition(log, p, StateInsertFallback)
	} else {
		s.transition(log, p, StateInsertSucceeded)
	}
	s.transition(log, p, StateIdle)

	if s.opts.OnImageUploaded != nil {
		s.opts.OnImageUploaded(*result)
	}
	s.contentChanged(out)
	s.status.show(StatusSuccess, "Image uploaded")
	return result, nil
}

// fail reports err on the status line and ends the attempt.
func (s *Surface) fail(log *slog.Logger, p *pendingUpload, err error) error {
	s.transition(log, p, StateUploadFailed)
	log.Warn("image insertion failed",
		"kind", upload.KindOf(err),
		"file", p.file.Name,
		"error", err,
	)
	s.status.show(StatusError, upload.UserMessage(err))
	s.transition(log, p, StateIdle)
	return err
}

func (s *Surface) transition(log *slog.Logger, p *pendingUpload, next UploadState) {
	log.Debug("upload state", "from", p.state, "to", next)
	p.state = next
}

func (s *Surface) contentChanged(markup string) {
	if s.opts.OnContentChanged != nil {
		s.opts.OnContentChanged(markup)
	}
}
