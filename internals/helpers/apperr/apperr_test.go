package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOverpaymentError_Message(t *testing.T) {
	id := uuid.New()
	err := NewOverpayment(2, id, decimal.RequireFromString("150"), decimal.RequireFromString("120"))

	assert.Contains(t, err.Error(), "amount 150.00 exceeds outstanding balance 120.00")
	assert.Contains(t, err.Error(), "line 2")
	assert.True(t, errors.Is(err, ErrOverpayment))
	assert.Equal(t, KindOverpayment, KindOf(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.False(t, IsRetryable(err))
}

func TestAppError_IsAndStatus(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		sentinel  error
		status    int
		retryable bool
	}{
		{"validation", Validation("bad %s", "input"), ErrValidation, http.StatusUnprocessableEntity, false},
		{"not found", NotFound("debt line item", uuid.Nil), ErrNotFound, http.StatusNotFound, false},
		{"sequence not found", SequenceNotFound("receipt-income"), ErrNotFound, http.StatusNotFound, false},
		{"conflict", Conflict("lost race"), ErrConcurrencyConflict, http.StatusConflict, true},
		{"persistence", Persistence("insert receipt", errors.New("conn reset")), ErrPersistence, http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.status, HTTPStatus(wrapped))
			assert.Equal(t, tt.retryable, IsRetryable(wrapped))
		})
	}

	assert.True(t, errors.Is(SequenceNotFound("x"), ErrSequenceNotFound))
	assert.False(t, errors.Is(NotFound("concept", 1), ErrSequenceNotFound))
}

func TestHTTPStatus_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestFromDB(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, FromDB("op", nil))
	})

	t.Run("classified passes through", func(t *testing.T) {
		in := Validation("x")
		assert.Same(t, in, FromDB("op", in))
	})

	t.Run("pgx serialization failure", func(t *testing.T) {
		err := FromDB("commit", &pgconn.PgError{Code: "40001", Message: "could not serialize access"})
		assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	})

	t.Run("pq deadlock", func(t *testing.T) {
		err := FromDB("commit", &pq.Error{Code: "40P01", Message: "deadlock detected"})
		assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	})

	t.Run("unique violation", func(t *testing.T) {
		err := FromDB("insert receipt", fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"}))
		assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	})

	t.Run("sqlite unique message", func(t *testing.T) {
		err := FromDB("insert receipt", errors.New("UNIQUE constraint failed: receipts.receipt_number"))
		assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	})

	t.Run("foreign key is validation", func(t *testing.T) {
		err := FromDB("insert line", &pq.Error{Code: "23503"})
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("record not found", func(t *testing.T) {
		err := FromDB("load", gorm.ErrRecordNotFound)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("deadline", func(t *testing.T) {
		err := FromDB("tx", context.DeadlineExceeded)
		assert.True(t, errors.Is(err, ErrPersistence))
	})

	t.Run("other", func(t *testing.T) {
		err := FromDB("tx", errors.New("connection refused"))
		var ae *AppError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, KindPersistence, ae.Kind)
		assert.Equal(t, "tx", ae.Message)
	})
}
