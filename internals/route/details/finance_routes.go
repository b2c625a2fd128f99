package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	conceptRoute "standbill_backend/internals/features/finance/concepts/route"
	debtRoute "standbill_backend/internals/features/finance/debts/route"
	receiptRoute "standbill_backend/internals/features/finance/receipts/route"
	sequenceRoute "standbill_backend/internals/features/finance/sequences/route"
)

// FinanceAdminRoutes mounts the ledger under the authenticated admin group.
func FinanceAdminRoutes(admin fiber.Router, db *gorm.DB, cfg configs.LedgerConfig) {
	conceptRoute.ConceptAdminRoutes(admin, db)
	debtRoute.DebtAdminRoutes(admin, db)
	receiptRoute.ReceiptAdminRoutes(admin, db, cfg)
	sequenceRoute.SequenceAdminRoutes(admin, db)
}
