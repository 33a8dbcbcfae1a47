package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"achievements/internal/domain/models"
	"achievements/internal/domain/repositories"
)

// PostgresImageRepository implements the ImageRepository interface
type PostgresImageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewImageRepository creates a new PostgresImageRepository
func NewImageRepository(config *RepositoryConfig) repositories.ImageRepository {
	return &PostgresImageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts an uploaded image's metadata
func (r *PostgresImageRepository) Create(ctx context.Context, image *models.UploadedImage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, profile, original_name, mime_type, size_bytes, storage_key, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.UploadedImages)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		image.ID,
		image.UserID,
		image.Profile,
		image.OriginalName,
		image.MIMEType,
		image.Size,
		image.StorageKey,
		image.URL,
		image.CreatedAt,
	)
	if err != nil {
		return imageError(err, "create uploaded image", image.ID)
	}

	return nil
}

// GetByID retrieves an uploaded image's metadata
func (r *PostgresImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedImage, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, profile, original_name, mime_type, size_bytes, storage_key, url, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.UploadedImages)

	var image models.UploadedImage
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&image.ID,
		&image.UserID,
		&image.Profile,
		&image.OriginalName,
		&image.MIMEType,
		&image.Size,
		&image.StorageKey,
		&image.URL,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, imageError(err, "get uploaded image", id)
	}

	return &image, nil
}
