package repositories

import (
	"context"

	"github.com/google/uuid"

	"achievements/internal/domain/models"
)

// ImageRepository defines data access for uploaded image metadata
type ImageRepository interface {
	// Create inserts the metadata row. ID and CreatedAt are set by the caller.
	Create(ctx context.Context, image *models.UploadedImage) error

	// GetByID returns domain.ErrNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedImage, error)
}
