package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"achievements/internal/config"
	"achievements/internal/editor"
	"achievements/internal/httputil"
)

// ContentHandler cleans editor markup submitted by clients
type ContentHandler struct {
	sanitizer editor.Sanitizer
	logger    *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(sanitizer editor.Sanitizer, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		sanitizer: sanitizer,
		logger:    logger,
	}
}

type sanitizeRequest struct {
	Content string `json:"content"`
}

type sanitizeResponse struct {
	Content    string `json:"content"`
	PlainText  string `json:"plainText"`
	WordCount  int    `json:"wordCount"`
	ImageCount int    `json:"imageCount"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

// Sanitize returns the sanitized markup with its image count and validity
// against the default image limit
// POST /api/content/sanitize
func (h *ContentHandler) Sanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			handleError(w, err)
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	clean, err := h.sanitizer.Sanitize(req.Content)
	if err != nil {
		h.logger.Error("failed to sanitize content", "error", err)
		handleError(w, err)
		return
	}

	doc := editor.NewDocument()
	if err := doc.SetContent(clean); err != nil {
		handleError(w, err)
		return
	}
	reg := doc.Registry(config.DefaultMaxImages)
	result := reg.Validate()

	httputil.RespondJSON(w, http.StatusOK, sanitizeResponse{
		Content:    clean,
		PlainText:  doc.PlainText(),
		WordCount:  doc.WordCount(),
		ImageCount: reg.Count(),
		Valid:      result.Valid,
		Error:      result.Error,
	})
}
