package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/constants"
	"standbill_backend/internals/features/finance/debts/controller"
	authMiddleware "standbill_backend/internals/middlewares/auth"
)

func DebtAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewDebtController(db)
	read := authMiddleware.RequireAction(constants.ActionLedgerRead)

	batches := admin.Group("/debt-batches")
	batches.Get("/", read, h.ListBatches)
	batches.Get("/:id", read, h.GetBatch)
	batches.Post("/", authMiddleware.RequireAction(constants.ActionDebtBatch), h.CreateBatch)

	debts := admin.Group("/debts")
	debts.Get("/", read, h.List)
	// /outstanding harus sebelum /:id
	debts.Get("/outstanding", read, h.ListOutstanding)
	debts.Get("/:id", read, h.Get)
	debts.Get("/:id/corrections", read, h.ListCorrections)
	debts.Patch("/:id/correction", authMiddleware.RequireAction(constants.ActionDebtCorrect), h.Correct)
}
