package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/constants"
	"standbill_backend/internals/features/finance/concepts/controller"
	authMiddleware "standbill_backend/internals/middlewares/auth"
)

func ConceptAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewConceptController(db)

	grp := admin.Group("/concepts")
	grp.Get("/", authMiddleware.RequireAction(constants.ActionLedgerRead), h.List)
	grp.Get("/:id", authMiddleware.RequireAction(constants.ActionLedgerRead), h.Get)
	grp.Post("/", authMiddleware.RequireAction(constants.ActionConceptWrite), h.Create)
	grp.Patch("/:id", authMiddleware.RequireAction(constants.ActionConceptWrite), h.Update)
}
