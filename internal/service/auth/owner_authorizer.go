package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"achievements/internal/domain"
	"achievements/internal/domain/repositories"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access an image if they uploaded it.
type OwnerBasedAuthorizer struct {
	imageRepo repositories.ImageRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(imageRepo repositories.ImageRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{imageRepo: imageRepo}
}

// CanAccessImage checks if user owns the image
func (a *OwnerBasedAuthorizer) CanAccessImage(ctx context.Context, userID, imageID string) error {
	id, err := uuid.Parse(imageID)
	if err != nil {
		return &domain.ValidationError{Message: "invalid image id"}
	}

	image, err := a.imageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("get image for auth: %w", err)
	}

	if image.UserID.String() != userID {
		return fmt.Errorf("access denied to image %s: %w", imageID, domain.ErrForbidden)
	}
	return nil
}
