package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/features/finance/sequences/dto"
	"standbill_backend/internals/features/finance/sequences/service"
	helper "standbill_backend/internals/helpers"
	"standbill_backend/internals/helpers/logger"
)

type SequenceController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Allocator *service.Allocator
}

func NewSequenceController(db *gorm.DB) *SequenceController {
	return &SequenceController{
		DB:        db,
		Validator: helper.NewValidator(),
		Allocator: service.NewAllocator(db),
	}
}

// GET /api/a/sequences
func (h *SequenceController) List(c *fiber.Ctx) error {
	rows, err := h.Allocator.List(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModels(rows))
}

// GET /api/a/sequences/:name
func (h *SequenceController) Get(c *fiber.Ctx) error {
	seq, err := h.Allocator.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(seq))
}

// PUT /api/a/sequences/:name
func (h *SequenceController) Configure(c *fiber.Ctx) error {
	var req dto.ConfigureSequenceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonAppError(c, err)
	}

	seq, err := h.Allocator.Configure(c.UserContext(), c.Params("name"), req.NumberSequenceStartFrom)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	logger.WithContext(c.UserContext()).Info().
		Str("sequence", seq.NumberSequenceName).
		Int64("start_from", seq.NumberSequenceStartFrom).
		Msg("sequence configured")
	return helper.JsonUpdated(c, "sequence configured", dto.FromModel(seq))
}
