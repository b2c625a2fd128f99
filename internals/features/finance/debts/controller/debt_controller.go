// file: internals/features/finance/debts/controller/debt_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"standbill_backend/internals/features/finance/debts/dto"
	"standbill_backend/internals/features/finance/debts/service"
	helper "standbill_backend/internals/helpers"
	helperAuth "standbill_backend/internals/helpers/auth"
)

// =======================================================
// BOOTSTRAP
// =======================================================

type DebtController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Ledger    *service.LedgerStore
}

func NewDebtController(db *gorm.DB) *DebtController {
	return &DebtController{
		DB:        db,
		Validator: helper.NewValidator(),
		Ledger:    service.NewLedgerStore(db),
	}
}

// =======================================================
// HELPERS
// =======================================================

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params(name)))
}

// optionalUUIDQuery: kosong → nil, invalid → 400
func optionalUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &id, nil
}

// =======================================================
// BATCHES
// =======================================================

// POST /api/a/debt-batches
func (h *DebtController) CreateBatch(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	var req dto.CreateDebtBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	batch, items, err := h.Ledger.CreateDebtBatch(c.UserContext(), actor, req.ToInput(h.Ledger.Now()))
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	lines := make([]dto.DebtLineResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, dto.ToDebtLineResponse(service.DebtLineView{Item: it, Outstanding: it.Due()}))
	}
	return helper.JsonCreated(c, "debt batch created", dto.ToDebtBatchResponse(batch, lines))
}

// GET /api/a/debt-batches?concept_id=
func (h *DebtController) ListBatches(c *fiber.Ctx) error {
	conceptID, err := optionalUUIDQuery(c, "concept_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 200)

	rows, total, err := h.Ledger.ListDebtBatches(c.UserContext(), conceptID, p.Limit, p.Offset)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToDebtBatchResponses(rows), helper.BuildPaginationFromOffset(total, p.Offset, p.Limit))
}

// GET /api/a/debt-batches/:id
func (h *DebtController) GetBatch(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid batch id")
	}
	batch, views, err := h.Ledger.GetDebtBatch(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDebtBatchResponse(batch, dto.ToDebtLineResponses(views)))
}

// =======================================================
// DEBT LINES
// =======================================================

// GET /api/a/debts?stand_id=&concept_id=&batch_id=&only_outstanding=
func (h *DebtController) List(c *fiber.Ctx) error {
	var (
		f   service.DebtLineFilter
		err error
	)
	if f.StandID, err = optionalUUIDQuery(c, "stand_id"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if f.ConceptID, err = optionalUUIDQuery(c, "concept_id"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if f.BatchID, err = optionalUUIDQuery(c, "batch_id"); err != nil {
		return helper.JsonAppError(c, err)
	}
	f.OnlyOutstanding = c.QueryBool("only_outstanding", false)

	p := helper.ResolvePaging(c, 50, 500)
	f.Limit, f.Offset = p.Limit, p.Offset

	views, total, err := h.Ledger.ListDebtLineItems(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToDebtLineResponses(views), helper.BuildPaginationFromOffset(total, p.Offset, p.Limit))
}

// GET /api/a/debts/outstanding?stand_id=
// Tanpa paging: dipakai form kasir untuk memilih baris yang dibayar.
func (h *DebtController) ListOutstanding(c *fiber.Ctx) error {
	standID, err := optionalUUIDQuery(c, "stand_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	views, err := h.Ledger.ListOutstanding(c.UserContext(), standID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDebtLineResponses(views))
}

// GET /api/a/debts/:id
func (h *DebtController) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid debt line id")
	}
	view, err := h.Ledger.GetDebtLineItem(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDebtLineResponse(view))
}

// PATCH /api/a/debts/:id/correction
func (h *DebtController) Correct(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid debt line id")
	}

	var req dto.CorrectDebtLineRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	view, err := h.Ledger.CorrectDebtLineItem(c.UserContext(), actor, id, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "debt line corrected", dto.ToDebtLineResponse(view))
}

// GET /api/a/debts/:id/corrections
func (h *DebtController) ListCorrections(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid debt line id")
	}
	rows, err := h.Ledger.ListCorrections(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", rows)
}
