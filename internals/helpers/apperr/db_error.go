// file: internals/helpers/apperr/db_error.go
package apperr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SQLSTATE codes the ledger cares about.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgExclusionViolation   = "23P01"
)

// sqlState pulls the SQLSTATE out of a pgx or lib/pq error.
func sqlState(err error) (string, string, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.Message, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// FromDB translates a storage error raised during op into a ledger error.
// Errors that are already classified pass through unchanged.
func FromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: op + ": record not found", Status: 404, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Persistence(op+": transaction timed out", err)
	}

	if code, msg, ok := sqlState(err); ok {
		switch code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgUniqueViolation, pgExclusionViolation:
			ae := Conflict("%s: %s", op, msg)
			ae.Err = err
			return ae.WithDetail("sqlstate", code)
		case pgForeignKeyViolation:
			return Validation("%s: referenced record does not exist", op).WithDetail("sqlstate", code)
		case pgCheckViolation:
			return Validation("%s: %s", op, msg).WithDetail("sqlstate", code)
		}
		return Persistence(op, err)
	}

	if isUniqueViolation(err) {
		ae := Conflict("%s: duplicate key", op)
		ae.Err = err
		return ae
	}
	return Persistence(op, err)
}
