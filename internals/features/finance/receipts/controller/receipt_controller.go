// file: internals/features/finance/receipts/controller/receipt_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	"standbill_backend/internals/features/finance/receipts/dto"
	"standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/features/finance/receipts/service"
	helper "standbill_backend/internals/helpers"
	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/helpers/dbtime"
)

type ReceiptController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Svc       *service.ReconciliationService
}

func NewReceiptController(db *gorm.DB, cfg configs.LedgerConfig) *ReceiptController {
	return &ReceiptController{
		DB:        db,
		Validator: helper.NewValidator(),
		Svc:       service.NewReconciliationService(db, cfg),
	}
}

func parseReceiptID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid receipt id")
	}
	return id, nil
}

// parseDateQuery: YYYY-MM-DD (timezone bisnis) atau RFC3339.
// "to" berupa tanggal dianggap inklusif.
func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return nil, nil
	}
	t, ok := dbtime.ParseDate(s, dbtime.Location())
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key+" (use YYYY-MM-DD)")
	}
	if key == "to" && len(s) == len("2006-01-02") {
		t = dbtime.EndOfDayExclusive(t)
	}
	return &t, nil
}

/* =========================================================
   Income
========================================================= */

// POST /api/a/receipts/income
func (h *ReceiptController) CreateIncome(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.IncomeReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.CreateIncomeReceipt(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "income receipt created", dto.ToReceiptResponse(m))
}

// PUT /api/a/receipts/income/:id
func (h *ReceiptController) UpdateIncome(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := parseReceiptID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.IncomeReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.UpdateIncomeReceipt(c.UserContext(), actor, id, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "income receipt updated", dto.ToReceiptResponse(m))
}

/* =========================================================
   Expense
========================================================= */

// POST /api/a/receipts/expense
func (h *ReceiptController) CreateExpense(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ExpenseReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.CreateExpenseReceipt(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "expense receipt created", dto.ToReceiptResponse(m))
}

// PUT /api/a/receipts/expense/:id
func (h *ReceiptController) UpdateExpense(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := parseReceiptID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.ExpenseReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.UpdateExpenseReceipt(c.UserContext(), actor, id, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "expense receipt updated", dto.ToReceiptResponse(m))
}

/* =========================================================
   Read
========================================================= */

// GET /api/a/receipts?type=&status=&stand_id=&from=&to=
func (h *ReceiptController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	f := service.ReceiptFilter{Limit: p.Limit, Offset: p.Offset}

	switch t := model.ReceiptType(strings.ToLower(strings.TrimSpace(c.Query("type")))); t {
	case "":
	case model.ReceiptTypeIncome, model.ReceiptTypeExpense:
		f.Type = &t
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "type must be income or expense")
	}
	switch s := model.ReceiptStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))); s {
	case "":
	case model.ReceiptStatusActive, model.ReceiptStatusVoid:
		f.Status = &s
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "status must be active or void")
	}
	if s := strings.TrimSpace(c.Query("stand_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid stand_id")
		}
		f.StandID = &id
	}

	var err error
	if f.From, err = parseDateQuery(c, "from"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if f.To, err = parseDateQuery(c, "to"); err != nil {
		return helper.JsonAppError(c, err)
	}

	rows, total, err := h.Svc.Receipts.ListReceipts(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToReceiptResponses(rows), helper.BuildPaginationFromOffset(total, p.Offset, p.Limit))
}

// GET /api/a/receipts/:id?with_lines=true
func (h *ReceiptController) Get(c *fiber.Ctx) error {
	id, err := parseReceiptID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Receipts.GetReceipt(c.UserContext(), id, c.QueryBool("with_lines", true))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToReceiptResponse(m))
}

/* =========================================================
   Status & delete
========================================================= */

// PATCH /api/a/receipts/:id/active
func (h *ReceiptController) SetActive(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := parseReceiptID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.SetReceiptActive(c.UserContext(), actor, id, *req.Active)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	msg := "receipt voided"
	if *req.Active {
		msg = "receipt reactivated"
	}
	return helper.JsonUpdated(c, msg, dto.ToReceiptResponse(m))
}

// DELETE /api/a/receipts/:id
func (h *ReceiptController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	id, err := parseReceiptID(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.DeleteReceipt(c.UserContext(), actor, id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "receipt deleted", fiber.Map{"receipt_id": id})
}
