package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Services call it before returning a resource by ID.
type ResourceAuthorizer interface {
	// CanAccessImage checks if user can read an uploaded image's metadata
	CanAccessImage(ctx context.Context, userID, imageID string) error
}
