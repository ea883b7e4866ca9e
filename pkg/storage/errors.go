// Package storage holds the error taxonomy shared by every persistence adapter.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnavailable marks an infrastructure failure reaching the backing store.
// It is never retried internally.
var ErrUnavailable = errors.New("storage unavailable")

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint violation.
// constraint narrows the match when non-empty.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsDataException reports whether postgres rejected a value that does not fit
// its column, such as a numeric field overflow (class 22).
func IsDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "22"
}

// Classify wraps connectivity failures with ErrUnavailable. Query-level postgres
// errors, pgx.ErrNoRows and context cancellation pass through untouched.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return err
		}
		switch pgErr.Code[:2] {
		case "08", "53", "57":
			return fmt.Errorf("%w: %s", ErrUnavailable, pgErr.Message)
		}
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
