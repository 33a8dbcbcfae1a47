package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"achievements/internal/domain"
	"achievements/internal/domain/services"
	"achievements/internal/httputil"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

// UploadHandler handles image upload HTTP requests
type UploadHandler struct {
	images services.ImageService
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(images services.ImageService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		images: images,
		logger: logger,
	}
}

// uploadResponse is the data of a successful upload envelope
type uploadResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	OriginalName string `json:"originalName"`
}

// dataURLRequest is the JSON request body variant
type dataURLRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// UploadImage stores one image
// POST /api/uploads/images?profile=editor|page
// Accepts multipart/form-data (field "file") or JSON {image: <data URL>, filename}.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	req, err := h.readUpload(w, r)
	if err != nil {
		h.logger.Debug("upload request rejected", "error", err)
		handleUploadError(w, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.Profile = r.URL.Query().Get("profile")

	image, err := h.images.Upload(r.Context(), req)
	if err != nil {
		status, _ := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("image upload failed", "error", err, "user_id", req.UserID)
		}
		handleUploadError(w, err)
		return
	}

	httputil.RespondSuccess(w, http.StatusCreated, uploadResponse{
		ID:           image.ID.String(),
		URL:          image.URL,
		Size:         image.Size,
		OriginalName: image.OriginalName,
	})
}

// GetImage returns an uploaded image's metadata
// GET /api/uploads/images/{id}
func (h *UploadHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.images.GetImage(r.Context(), r.PathValue("id"), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, image)
}

func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (*services.UploadImageRequest, error) {
	limit := h.images.MaxUploadBytes()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, &domain.ValidationError{Message: "missing or invalid Content-Type"}
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipart(w, r, limit)
	case "application/json":
		return readDataURL(w, r, limit)
	default:
		return nil, &domain.UnsupportedMediaTypeError{
			Message: fmt.Sprintf("unsupported request type %s", mediaType),
		}
	}
}

func readMultipart(w http.ResponseWriter, r *http.Request, limit int64) (*services.UploadImageRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge(limit)
		}
		return nil, &domain.ValidationError{Message: "invalid multipart body"}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &domain.ValidationError{Message: `multipart field "file" is required`}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return &services.UploadImageRequest{
		Filename:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

func readDataURL(w http.ResponseWriter, r *http.Request, limit int64) (*services.UploadImageRequest, error) {
	var body dataURLRequest
	// base64 inflates by 4/3
	if err := httputil.ParseJSONLimit(w, r, &body, limit/3*4+multipartOverhead); err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			return nil, tooLarge(limit)
		}
		return nil, &domain.ValidationError{Message: "invalid JSON body"}
	}

	mimeType, data, err := parseDataURL(body.Image)
	if err != nil {
		return nil, err
	}

	filename := body.Filename
	if filename == "" {
		filename = "image"
	}
	return &services.UploadImageRequest{
		Filename:     filename,
		DeclaredType: mimeType,
		Data:         data,
	}, nil
}

// parseDataURL decodes "data:<mime>;base64,<payload>".
func parseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, &domain.ValidationError{Message: "image must be a data URL"}
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, &domain.ValidationError{Message: "malformed data URL"}
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, &domain.ValidationError{Message: "data URL must be base64 encoded"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, &domain.ValidationError{Message: "invalid base64 image data"}
	}
	return mimeType, data, nil
}

func tooLarge(limit int64) error {
	return &domain.PayloadTooLargeError{Message: fmt.Sprintf("image must be at most %dMB", limit>>20)}
}
