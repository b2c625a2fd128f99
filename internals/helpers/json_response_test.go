package helper_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "standbill_backend/internals/helpers"
	"standbill_backend/internals/helpers/apperr"
)

type errorBody struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Details   map[string]any      `json:"details"`
}

func respond(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return helper.JsonAppError(c, err) })

	resp, e := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, e)
	defer resp.Body.Close()

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestJsonAppError(t *testing.T) {
	debtID := uuid.New()

	t.Run("overpayment carries figures", func(t *testing.T) {
		status, body := respond(t, apperr.NewOverpayment(2, debtID, decimal.RequireFromString("150"), decimal.RequireFromString("120")))
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, "OVERPAYMENT", body.ErrorCode)
		assert.Equal(t, "150.00", body.Details["requested"])
		assert.Equal(t, "120.00", body.Details["outstanding"])
		assert.Equal(t, debtID.String(), body.Details["debt_line_item_id"])
	})

	t.Run("not found", func(t *testing.T) {
		status, body := respond(t, apperr.NotFound("receipt", debtID))
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.False(t, body.Success)
	})

	t.Run("persistence hides driver text", func(t *testing.T) {
		status, body := respond(t, apperr.Persistence("create receipt", assert.AnError))
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
		assert.Equal(t, "PERSISTENCE_ERROR", body.ErrorCode)
		assert.NotContains(t, body.Message, assert.AnError.Error())
	})

	t.Run("fiber error", func(t *testing.T) {
		status, body := respond(t, fiber.NewError(fiber.StatusForbidden, "forbidden"))
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", body.ErrorCode)
	})

	t.Run("unknown error", func(t *testing.T) {
		status, body := respond(t, assert.AnError)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL_ERROR", body.ErrorCode)
	})
}

func TestBuildPaginationFromOffset(t *testing.T) {
	p := helper.BuildPaginationFromOffset(45, 20, 20)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := helper.BuildPaginationFromOffset(0, 0, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestJsonList_CountsAndEmptySlice(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		var rows []string
		return helper.JsonList(c, "", rows, helper.BuildPaginationFromOffset(0, 0, 20))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Data       []string          `json:"data"`
		Pagination helper.Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Data)
	assert.Equal(t, 0, body.Pagination.Count)
}
