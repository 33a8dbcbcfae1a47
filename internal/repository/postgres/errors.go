package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"achievements/internal/domain"
)

// SQLSTATE codes the image repository maps to domain errors.
const (
	uniqueViolation = "23505"
	stringTooLong   = "22001"
)

// imageError maps a failed query on the images table to a domain error.
// Anything unrecognised is wrapped with op.
func imageError(err error, op string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Message: fmt.Sprintf("image %s not found", id)}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return &domain.ValidationError{Message: fmt.Sprintf("image %s already exists", id)}
		case stringTooLong:
			return &domain.ValidationError{Message: "image metadata exceeds column limits"}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
