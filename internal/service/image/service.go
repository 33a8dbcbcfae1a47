package image

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"achievements/internal/config"
	"achievements/internal/domain"
	"achievements/internal/domain/models"
	"achievements/internal/domain/repositories"
	"achievements/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// extensions maps stored MIME types to file extensions.
var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
}

// imageService implements the ImageService interface
type imageService struct {
	imageRepo  repositories.ImageRepository
	txManager  repositories.TransactionManager
	store      services.ObjectStore
	profiles   *config.Profiles
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewImageService creates a new image service
func NewImageService(
	imageRepo repositories.ImageRepository,
	txManager repositories.TransactionManager,
	store services.ObjectStore,
	profiles *config.Profiles,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.ImageService {
	return &imageService{
		imageRepo:  imageRepo,
		txManager:  txManager,
		store:      store,
		profiles:   profiles,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload validates the image against its profile, writes the bytes and
// records the metadata in one transaction.
func (s *imageService) Upload(ctx context.Context, req *services.UploadImageRequest) (*models.UploadedImage, error) {
	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid user id"}
	}

	profile, err := s.profiles.Get(req.Profile)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	size := int64(len(req.Data))
	if size > profile.MaxBytes {
		return nil, &domain.PayloadTooLargeError{
			Message: fmt.Sprintf("image must be at most %dMB", profile.MaxBytes>>20),
		}
	}

	mimeType, err := detectImageType(req.DeclaredType, req.Data)
	if err != nil {
		return nil, err
	}
	if !profile.Allows(mimeType) {
		return nil, &domain.UnsupportedMediaTypeError{
			Message: fmt.Sprintf("%s images are not accepted for %s uploads", mimeType, profile.Name),
		}
	}

	id := uuid.New()
	key := id.String() + extensions[mimeType]
	image := &models.UploadedImage{
		ID:           id,
		UserID:       userID,
		Profile:      profile.Name,
		OriginalName: cleanFilename(req.Filename),
		MIMEType:     mimeType,
		Size:         size,
		StorageKey:   key,
		URL:          s.store.URL(key),
		CreatedAt:    s.now(),
	}

	stored := false
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.imageRepo.Create(txCtx, image); err != nil {
			return err
		}
		if err := s.store.Put(txCtx, key, req.Data); err != nil {
			return fmt.Errorf("store image: %w", err)
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			// Commit failed after the bytes were written
			if delErr := s.store.Delete(ctx, key); delErr != nil {
				s.logger.Error("failed to remove orphaned image", "key", key, "error", delErr)
			}
		}
		return nil, err
	}

	s.logger.Info("image uploaded",
		"id", image.ID,
		"user_id", req.UserID,
		"profile", image.Profile,
		"mime_type", image.MIMEType,
		"size", image.Size,
	)

	return image, nil
}

// GetImage retrieves an image's metadata by ID
func (s *imageService) GetImage(ctx context.Context, imageID, userID string) (*models.UploadedImage, error) {
	if err := s.authorizer.CanAccessImage(ctx, userID, imageID); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(imageID)
	if err != nil {
		return nil, &domain.ValidationError{Message: "invalid image id"}
	}
	return s.imageRepo.GetByID(ctx, id)
}

func (s *imageService) MaxUploadBytes() int64 {
	var max int64
	for _, name := range s.profiles.Names() {
		if p, err := s.profiles.Get(name); err == nil && p.MaxBytes > max {
			max = p.MaxBytes
		}
	}
	return max
}

// validateUploadRequest validates an upload request
func (s *imageService) validateUploadRequest(req *services.UploadImageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Filename,
			validation.Required,
			validation.Length(1, config.MaxFilenameLength),
		),
		validation.Field(&req.Data, validation.Required.Error("file is empty")),
	)
}

// detectImageType checks the declared type and the sniffed content agree
// that this is an image, and returns the type to store.
func detectImageType(declared string, data []byte) (string, error) {
	declared = normalizeType(declared)
	if !strings.HasPrefix(declared, "image/") {
		return "", &domain.UnsupportedMediaTypeError{Message: "only image files can be uploaded"}
	}

	sniffed := normalizeType(http.DetectContentType(data))
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		return sniffed, nil
	case declared == "image/svg+xml" && (sniffed == "text/xml" || sniffed == "text/plain"):
		// SVG sniffs as XML or text
		return declared, nil
	}
	return "", &domain.UnsupportedMediaTypeError{
		Message: fmt.Sprintf("file content is %s, not an image", sniffed),
	}
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// cleanFilename keeps the base name of what the client sent.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		return "image"
	}
	return name
}
