package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standbill_backend/internals/configs"
	routes "standbill_backend/internals/route"
	"standbill_backend/internals/testutil"
)

const testSecret = "test-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   uuid.NewString(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
	Details   map[string]any  `json:"details"`
}

func call(t *testing.T, app *fiber.App, method, path, bearer string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	return routes.NewApp(testutil.NewTestDB(t), routes.Options{
		JWTSecret: testSecret,
		Ledger:    configs.DefaultLedgerConfig(),
	})
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	status, _ := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminGroup_AuthAndRoles(t *testing.T) {
	app := newApp(t)

	status, env := call(t, app, http.MethodGet, "/api/a/concepts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = call(t, app, http.MethodGet, "/api/a/concepts", token(t, "viewer"), nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodPost, "/api/a/concepts", token(t, "viewer"), map[string]any{
		"concept_description": "Rent", "concept_kind": "income",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.ErrorCode)

	status, env = call(t, app, http.MethodPost, "/api/a/concepts", token(t, "admin"), map[string]any{
		"concept_description": "Rent", "concept_kind": "transfer",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)
}

func TestReceiptFlow_OverHTTP(t *testing.T) {
	app := newApp(t)
	admin := token(t, "admin")
	cashier := token(t, "cashier")
	stand := uuid.New()

	status, env := call(t, app, http.MethodPost, "/api/a/concepts", admin, map[string]any{
		"concept_description": "Rent", "concept_kind": "income", "concept_is_debt": true,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var concept struct {
		ConceptID uuid.UUID `json:"concept_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &concept))

	status, env = call(t, app, http.MethodPost, "/api/a/debt-batches", admin, map[string]any{
		"debt_batch_concept_id": concept.ConceptID,
		"items": []map[string]any{
			{"stand_id": stand, "principal": "100.00", "penalty": "20.00"},
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var batch struct {
		Total string `json:"debt_batch_total"`
		Items []struct {
			ID uuid.UUID `json:"debt_line_item_id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Equal(t, "120.00", batch.Total)
	require.Len(t, batch.Items, 1)
	debtID := batch.Items[0].ID

	receipt := func(amount string) map[string]any {
		return map[string]any{
			"receipt_payment_method_id": uuid.New(),
			"receipt_stand_id":          stand,
			"lines": []map[string]any{
				{"concept_id": concept.ConceptID, "debt_line_item_id": debtID, "amount": amount},
			},
		}
	}

	status, env = call(t, app, http.MethodPost, "/api/a/receipts/income", cashier, receipt("50.00"))
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created struct {
		ID     uuid.UUID `json:"receipt_id"`
		Number int64     `json:"receipt_number"`
		Total  string    `json:"receipt_total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(1), created.Number)
	assert.Equal(t, "50.00", created.Total)

	status, env = call(t, app, http.MethodPost, "/api/a/receipts/income", cashier, receipt("80.00"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "OVERPAYMENT", env.ErrorCode)
	assert.Equal(t, "70.00", env.Details["outstanding"])

	status, env = call(t, app, http.MethodGet, "/api/a/debts/outstanding?stand_id="+stand.String(), cashier, nil)
	require.Equal(t, http.StatusOK, status)
	var open []struct {
		Outstanding string `json:"outstanding"`
		Settled     bool   `json:"debt_line_item_settled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &open))
	require.Len(t, open, 1)
	assert.Equal(t, "70.00", open[0].Outstanding)
	assert.False(t, open[0].Settled)

	// kasir tidak boleh void
	status, _ = call(t, app, http.MethodPatch, "/api/a/receipts/"+created.ID.String()+"/active", cashier, map[string]any{"active": false})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, app, http.MethodPatch, "/api/a/receipts/"+created.ID.String()+"/active", admin, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = call(t, app, http.MethodGet, "/api/a/receipts?status=void", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var listed []struct {
		ID uuid.UUID `json:"receipt_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	status, _ = call(t, app, http.MethodGet, "/api/a/receipts/"+uuid.NewString(), admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSequences_Configure(t *testing.T) {
	app := newApp(t)
	admin := token(t, "admin")

	status, env := call(t, app, http.MethodPut, "/api/a/sequences/receipt-income", admin, map[string]any{
		"number_sequence_start_from": 500,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var seq struct {
		Next int64 `json:"number_sequence_next_value"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &seq))
	assert.Equal(t, int64(500), seq.Next)

	status, _ = call(t, app, http.MethodGet, "/api/a/sequences", token(t, "cashier"), nil)
	assert.Equal(t, http.StatusForbidden, status)
}
