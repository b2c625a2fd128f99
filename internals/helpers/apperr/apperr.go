// file: internals/helpers/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind groups errors by how the caller should react to them.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindOverpayment Kind = "overpayment"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "concurrency_conflict"
	KindPersistence Kind = "persistence"
)

// Sentinels for errors.Is checks.
var (
	ErrValidation          = errors.New("ledger: validation failed")
	ErrNotFound            = errors.New("ledger: not found")
	ErrSequenceNotFound    = errors.New("ledger: sequence not found")
	ErrConcurrencyConflict = errors.New("ledger: concurrency conflict")
	ErrPersistence         = errors.New("ledger: persistence failure")
	ErrOverpayment         = errors.New("ledger: overpayment")
)

/* =========================================================
   AppError
========================================================= */

type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Err     error
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches the kind sentinel so callers can use errors.Is(err, apperr.ErrNotFound).
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConcurrencyConflict:
		return e.Kind == KindConflict
	case ErrPersistence:
		return e.Kind == KindPersistence
	case ErrOverpayment:
		return e.Kind == KindOverpayment
	}
	return false
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func Validation(format string, args ...any) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusUnprocessableEntity,
	}
}

// ValidationField is a validation error bound to one input field.
func ValidationField(field, format string, args ...any) *AppError {
	return Validation(format, args...).WithDetail("field", field)
}

func NotFound(entity string, id any) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %v not found", entity, id),
		Status:  http.StatusNotFound,
	}
}

func SequenceNotFound(name string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "SEQUENCE_NOT_FOUND",
		Message: fmt.Sprintf("sequence %q not found", name),
		Status:  http.StatusNotFound,
		Err:     ErrSequenceNotFound,
	}
}

func Conflict(format string, args ...any) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    "CONCURRENCY_CONFLICT",
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusConflict,
	}
}

func Persistence(op string, err error) *AppError {
	return &AppError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_ERROR",
		Message: op,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

/* =========================================================
   OverpaymentError
========================================================= */

// OverpaymentError reports a receipt line asking for more than the debt line still owes.
type OverpaymentError struct {
	Line           int
	DebtLineItemID uuid.UUID
	Requested      decimal.Decimal
	Outstanding    decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("line %d: amount %s exceeds outstanding balance %s (debt line %s)",
		e.Line, e.Requested.StringFixed(2), e.Outstanding.StringFixed(2), e.DebtLineItemID)
}

func (e *OverpaymentError) Is(target error) bool { return target == ErrOverpayment }

func NewOverpayment(line int, debtID uuid.UUID, requested, outstanding decimal.Decimal) *OverpaymentError {
	return &OverpaymentError{
		Line:           line,
		DebtLineItemID: debtID,
		Requested:      requested,
		Outstanding:    outstanding,
	}
}

/* =========================================================
   Classification
========================================================= */

// KindOf returns the kind of err, or "" when err is not a ledger error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var op *OverpaymentError
	if errors.As(err, &op) {
		return KindOverpayment
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsRetryable reports whether the whole operation may be attempted again.
func IsRetryable(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindPersistence
}

// HTTPStatus maps an error onto the status code the transport should answer with.
func HTTPStatus(err error) int {
	var op *OverpaymentError
	if errors.As(err, &op) {
		return http.StatusConflict
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
