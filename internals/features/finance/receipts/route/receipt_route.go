package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	"standbill_backend/internals/constants"
	"standbill_backend/internals/features/finance/receipts/controller"
	authMiddleware "standbill_backend/internals/middlewares/auth"
)

func ReceiptAdminRoutes(admin fiber.Router, db *gorm.DB, cfg configs.LedgerConfig) {
	h := controller.NewReceiptController(db, cfg)
	write := authMiddleware.RequireAction(constants.ActionReceiptWrite)

	grp := admin.Group("/receipts")
	grp.Get("/", authMiddleware.RequireAction(constants.ActionLedgerRead), h.List)
	grp.Get("/:id", authMiddleware.RequireAction(constants.ActionLedgerRead), h.Get)

	grp.Post("/income", write, h.CreateIncome)
	grp.Put("/income/:id", write, h.UpdateIncome)
	grp.Post("/expense", write, h.CreateExpense)
	grp.Put("/expense/:id", write, h.UpdateExpense)

	grp.Patch("/:id/active", authMiddleware.RequireAction(constants.ActionReceiptVoid), h.SetActive)
	grp.Delete("/:id", authMiddleware.RequireAction(constants.ActionReceiptDelete), h.Delete)
}
