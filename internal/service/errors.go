package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Typed errors form the core's failure taxonomy. Handlers translate them to
// HTTP responses with errors.As/Is; the core never knows about status codes.

// NotFoundError: the referenced entity does not exist (or is soft-deleted and
// thus invisible to the operation).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InactiveEntityError: the entity exists but is flagged inactive.
type InactiveEntityError struct {
	Entity string
	ID     string
}

func (e *InactiveEntityError) Error() string {
	return fmt.Sprintf("%s %s is inactive", e.Entity, e.ID)
}

// InsufficientStockError: an OUT movement would drive stock negative.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: have %d, requested %d",
		e.VariantID, e.Available, e.Requested)
}

// InvalidRequestError: malformed input rejected before any mutation.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return "invalid request: " + e.Reason }

// NoTransitionError: ADVANCE requested on a terminal or unrecognized status.
type NoTransitionError struct {
	Status string
}

func (e *NoTransitionError) Error() string {
	return "no further status transition allowed from " + e.Status
}

// ConflictError: an idempotency key collided at commit time with a movement
// recording a different change. Distinct from the skip path, which handles
// a genuine duplicate submission and is not an error.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return "idempotency key conflict: " + e.Key
}

// TransientStorageError: the transaction aborted due to contention. Safe to
// retry with the same idempotency key — abort means the call never happened.
type TransientStorageError struct {
	Err error
}

func (e *TransientStorageError) Error() string {
	return "transient storage failure: " + e.Err.Error()
}

func (e *TransientStorageError) Unwrap() error { return e.Err }

// Postgres SQLSTATE codes surfaced by pgx through GORM.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally narrowed to a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isRetryableTxError reports whether err is a serialization failure or a
// deadlock — storage-level contention the caller may retry.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
