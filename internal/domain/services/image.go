package services

import (
	"context"

	"achievements/internal/domain/models"
)

// ObjectStore holds uploaded image bytes.
type ObjectStore interface {
	// Put writes data under key, replacing nothing: keys are fresh UUIDs.
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// URL returns the durable public URL of key.
	URL(key string) string
}

// UploadImageRequest is one image received by the upload endpoint.
type UploadImageRequest struct {
	UserID       string
	Profile      string // empty selects the default profile
	Filename     string
	DeclaredType string // MIME type claimed by the client
	Data         []byte
}

// ImageService stores uploaded images and their metadata.
type ImageService interface {
	// Upload validates and stores the image and returns its metadata.
	Upload(ctx context.Context, req *UploadImageRequest) (*models.UploadedImage, error)

	// GetImage returns metadata for an image the user uploaded.
	GetImage(ctx context.Context, imageID, userID string) (*models.UploadedImage, error)

	// MaxUploadBytes is the largest size any profile accepts. Handlers use
	// it to bound request bodies.
	MaxUploadBytes() int64
}
