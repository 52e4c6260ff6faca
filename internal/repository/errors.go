package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrOverlap means another non-cancelled booking occupies part of the
	// requested window. Raised either by the in-transaction count or by the
	// bookings_no_overlap exclusion constraint.
	ErrOverlap = errors.New("booking overlaps an existing reservation")

	// ErrDuplicateReference means the generated reference collided with an
	// existing row; callers regenerate and retry.
	ErrDuplicateReference = errors.New("duplicate booking reference")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

func translateBookingConflict(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return ErrOverlap
		case pgUniqueViolation:
			if strings.Contains(pgErr.ConstraintName, "reference") {
				return ErrDuplicateReference
			}
			return ErrOverlap
		}
		return err
	}

	// SQLite reports constraint violations as plain strings.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "bookings.reference") {
			return ErrDuplicateReference
		}
		return ErrOverlap
	}
	return err
}
