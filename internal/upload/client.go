package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Encoding selects how the file travels in the request body.
type Encoding string

const (
	// EncodingMultipart sends a multipart/form-data body with a "file" part.
	EncodingMultipart Encoding = "multipart"
	// EncodingDataURL sends JSON {"image": "data:<mime>;base64,...", "filename": ...}.
	EncodingDataURL Encoding = "data-url"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// File is one image picked, dropped or pasted by the user.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (f File) Size() int64 { return int64(len(f.Data)) }

// IsImage reports whether the declared MIME type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(f.MIMEType), "image/")
}

// Constraints are chosen by the caller per upload path.
type Constraints struct {
	MaxBytes int64
}

// Result is returned for a completed upload.
type Result struct {
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	OriginalName string `json:"originalName"`
}

// CredentialSource provides the bearer token for upload requests. The
// client only reads it.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// Config configures a Client.
type Config struct {
	Endpoint    string // absolute URL of the upload endpoint
	Encoding    Encoding
	Credentials CredentialSource
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Validate checks the client configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Encoding, validation.In(EncodingMultipart, EncodingDataURL)),
	)
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// Client uploads one image per call. It never retries; retry policy
// belongs to whoever triggered the upload.
type Client struct {
	endpoint    string
	encoding    Encoding
	credentials CredentialSource
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid upload client config: %w", err)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = EncodingMultipart
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		encoding:    cfg.Encoding,
		credentials: cfg.Credentials,
		httpClient:  cfg.HTTPClient,
		logger:      cfg.Logger,
	}, nil
}

// Check applies the client-side preconditions without touching the network.
func Check(file File, limits Constraints) error {
	if !file.IsImage() {
		return &Error{
			Kind:    KindInvalidType,
			Message: fmt.Sprintf("%s is not an image (type %q)", file.Name, file.MIMEType),
		}
	}
	if limits.MaxBytes > 0 && file.Size() > limits.MaxBytes {
		return &Error{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("image must be at most %s (got %s)", formatBytes(limits.MaxBytes), formatBytes(file.Size())),
		}
	}
	return nil
}

// Upload sends file to the endpoint and returns its durable URL.
func (c *Client) Upload(ctx context.Context, file File, limits Constraints) (*Result, error) {
	if err := Check(file, limits); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, file)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: "could not build upload request", Err: err}
	}
	c.authorize(ctx, req)

	c.logger.Debug("uploading image",
		"endpoint", c.endpoint,
		"encoding", c.encoding,
		"file", file.Name,
		"size", file.Size(),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Host-imposed deadlines and cancellations count as rejections.
			return nil, &Error{Kind: KindServerRejected, Message: "upload did not complete in time", Err: err}
		}
		return nil, &Error{Kind: KindNetworkFailure, Message: "could not reach upload server", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, Message: "could not read upload response", Err: err}
	}

	result, err := parseResponse(resp.StatusCode, body, file)
	if err != nil {
		c.logger.Warn("upload rejected",
			"status", resp.StatusCode,
			"file", file.Name,
			"error", err,
		)
		return nil, err
	}
	return result, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.credentials == nil {
		return
	}
	token, err := c.credentials.Token(ctx)
	if err != nil || token == "" {
		c.logger.Debug("no session credential for upload", "error", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func (c *Client) newRequest(ctx context.Context, file File) (*http.Request, error) {
	var (
		body        bytes.Buffer
		contentType string
	)

	switch c.encoding {
	case EncodingDataURL:
		payload := map[string]string{
			"image":    "data:" + file.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(file.Data),
			"filename": file.Name,
		}
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode data url payload: %w", err)
		}
		contentType = "application/json"
	default:
		w := multipart.NewWriter(&body)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
		header.Set("Content-Type", file.MIMEType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create multipart part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("write multipart part: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close multipart writer: %w", err)
		}
		contentType = w.FormDataContentType()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// envelope is the upload endpoint's response body. message/error/detail
// cover the variants servers use for failures, RFC 7807 included.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
	Data    *struct {
		URL          string `json:"url"`
		Size         int64  `json:"size"`
		OriginalName string `json:"originalName"`
		Message      string `json:"message"`
	} `json:"data"`
}

func (e envelope) message() string {
	if e.Data != nil && e.Data.Message != "" {
		return e.Data.Message
	}
	for _, m := range []string{e.Message, e.Error, e.Detail} {
		if m != "" {
			return m
		}
	}
	return ""
}

func parseResponse(status int, body []byte, file File) (*Result, error) {
	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if status < 200 || status > 299 {
		msg := env.message()
		if msg == "" {
			msg = fmt.Sprintf("upload failed with status %d", status)
		}
		return nil, &Error{Kind: KindServerRejected, Message: msg, StatusCode: status}
	}
	if decodeErr != nil {
		return nil, &Error{Kind: KindServerRejected, Message: "malformed upload response", StatusCode: status, Err: decodeErr}
	}
	if !env.Success || env.Data == nil || env.Data.URL == "" {
		msg := env.message()
		if msg == "" {
			msg = "upload response did not include an image URL"
		}
		return nil, &Error{Kind: KindServerRejected, Message: msg, StatusCode: status}
	}
	if strings.HasPrefix(env.Data.URL, "blob:") || strings.HasPrefix(env.Data.URL, "data:") {
		return nil, &Error{Kind: KindServerRejected, Message: "upload response returned a non-durable URL", StatusCode: status}
	}

	result := &Result{
		URL:          env.Data.URL,
		Size:         env.Data.Size,
		OriginalName: env.Data.OriginalName,
	}
	if result.Size == 0 {
		result.Size = file.Size()
	}
	if result.OriginalName == "" {
		result.OriginalName = file.Name
	}
	return result, nil
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= mb {
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	}
	return fmt.Sprintf("%dKB", (n+1023)/1024)
}
