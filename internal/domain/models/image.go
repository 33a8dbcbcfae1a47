package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadedImage is the stored metadata of one uploaded image. The bytes
// live in the object store under StorageKey.
type UploadedImage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Profile      string    `json:"profile" db:"profile"`
	OriginalName string    `json:"originalName" db:"original_name"`
	MIMEType     string    `json:"mimeType" db:"mime_type"`
	Size         int64     `json:"size" db:"size_bytes"`
	StorageKey   string    `json:"-" db:"storage_key"`
	URL          string    `json:"url" db:"url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
