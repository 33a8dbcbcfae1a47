package editor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"achievements/internal/config"
	"achievements/internal/upload"
)

// Uploader performs one image upload. *upload.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, file upload.File, limits upload.Constraints) (*upload.Result, error)
}

// Sanitizer cleans serialized markup before it leaves the surface.
type Sanitizer interface {
	Sanitize(html string) (string, error)
}

// Options configures a Surface. Zero values take the documented defaults.
type Options struct {
	// PlaceholderText is shown while the document is empty.
	PlaceholderText string
	// MaxImages bounds the images in one document. Default 10.
	MaxImages int
	// MaxImageBytes is the per-image size ceiling. Default 5MB.
	MaxImageBytes int64
	// UploadEndpoint is the absolute upload URL; required unless Uploader is set.
	UploadEndpoint string
	// UploadEncoding selects multipart (default) or data-url requests.
	UploadEncoding upload.Encoding
	// Credentials supplies the bearer token, typically the shared session store.
	Credentials upload.CredentialSource
	HTTPClient  *http.Client
	// Uploader replaces the built-in upload client.
	Uploader Uploader
	// AltText for inserted images; the file name is used when empty.
	AltText string
	// Sanitizer, when set, is applied to GetContent output.
	Sanitizer Sanitizer
	// StatusTTL is how long status messages stay visible. Default 3s.
	StatusTTL time.Duration

	OnImageUploaded  func(upload.Result)
	OnContentChanged func(markup string)
	OnStatus         func(StatusMessage)

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PlaceholderText == "" {
		o.PlaceholderText = "Describe your achievement..."
	}
	if o.MaxImages == 0 {
		o.MaxImages = config.DefaultMaxImages
	}
	if o.MaxImageBytes == 0 {
		o.MaxImageBytes = config.MaxEditorImageBytes
	}
	if o.UploadEncoding == "" {
		o.UploadEncoding = upload.EncodingMultipart
	}
	if o.StatusTTL == 0 {
		o.StatusTTL = 3 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Validate checks the options once, at construction.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.MaxImages, validation.Min(1)),
		validation.Field(&o.MaxImageBytes, validation.Min(int64(1))),
		validation.Field(&o.UploadEndpoint, validation.When(o.Uploader == nil, validation.Required)),
		validation.Field(&o.UploadEncoding, validation.In(upload.EncodingMultipart, upload.EncodingDataURL)),
		validation.Field(&o.StatusTTL, validation.Min(time.Millisecond)),
	)
}
