package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound marks lookups that found no row (or a reservation with
// no candidates). Callers branch with IsNotFound rather than
// comparing errors directly.
var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
