package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"achievements/internal/domain"
)

func TestImageError(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-3b0e-4c49-9f5e-0d3a2f4b8c11")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound, "image 6f1c1a52-3b0e-4c49-9f5e-0d3a2f4b8c11 not found"},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), domain.ErrNotFound, "image 6f1c1a52-3b0e-4c49-9f5e-0d3a2f4b8c11 not found"},
		{"duplicate id", &pgconn.PgError{Code: "23505"}, domain.ErrValidation, "image 6f1c1a52-3b0e-4c49-9f5e-0d3a2f4b8c11 already exists"},
		{"value too long", &pgconn.PgError{Code: "22001"}, domain.ErrValidation, "image metadata exceeds column limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := imageError(tt.err, "get uploaded image", id)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.EqualError(t, err, tt.message)
		})
	}

	cause := errors.New("connection reset")
	err := imageError(cause, "create uploaded image", id)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "create uploaded image: connection reset")
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
