// file: internals/features/finance/concepts/controller/concept_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"standbill_backend/internals/features/finance/concepts/dto"
	"standbill_backend/internals/features/finance/concepts/model"
	"standbill_backend/internals/features/finance/concepts/service"
	helper "standbill_backend/internals/helpers"
)

type ConceptController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Svc       *service.ConceptService
}

func NewConceptController(db *gorm.DB) *ConceptController {
	return &ConceptController{
		DB:        db,
		Validator: helper.NewValidator(),
		Svc:       service.NewConceptService(db),
	}
}

// POST /api/a/concepts
func (h *ConceptController) Create(c *fiber.Ctx) error {
	var req dto.CreateConceptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "concept created", dto.FromModel(m))
}

// GET /api/a/concepts?kind=&active=
func (h *ConceptController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)

	f := service.ListFilter{Limit: p.Limit, Offset: p.Offset}
	if k := strings.TrimSpace(c.Query("kind")); k != "" {
		kind, ok := model.ParseConceptKind(k)
		if !ok {
			return helper.JsonError(c, fiber.StatusBadRequest, "kind must be income or expense")
		}
		f.Kind = &kind
	}
	f.OnlyActive = c.QueryBool("active", false)

	rows, total, err := h.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPaginationFromOffset(total, p.Offset, p.Limit))
}

// GET /api/a/concepts/:id
func (h *ConceptController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid concept id")
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m))
}

// PATCH /api/a/concepts/:id
func (h *ConceptController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid concept id")
	}

	var req dto.UpdateConceptRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	m, err := h.Svc.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "concept updated", dto.FromModel(m))
}
