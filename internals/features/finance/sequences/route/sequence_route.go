package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/constants"
	"standbill_backend/internals/features/finance/sequences/controller"
	authMiddleware "standbill_backend/internals/middlewares/auth"
)

func SequenceAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewSequenceController(db)

	grp := admin.Group("/sequences", authMiddleware.RequireAction(constants.ActionSequenceAdmin))
	grp.Get("/", h.List)
	grp.Get("/:name", h.Get)
	grp.Put("/:name", h.Configure)
}
