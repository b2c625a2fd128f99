package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	conceptModel "standbill_backend/internals/features/finance/concepts/model"
	debtModel "standbill_backend/internals/features/finance/debts/model"
	receiptModel "standbill_backend/internals/features/finance/receipts/model"
	sequenceModel "standbill_backend/internals/features/finance/sequences/model"
)

// Models lists every ledger table in creation order.
func Models() []any {
	return []any{
		&conceptModel.ConceptModel{},
		&sequenceModel.NumberSequenceModel{},
		&debtModel.DebtBatchModel{},
		&debtModel.DebtLineItemModel{},
		&debtModel.DebtCorrectionModel{},
		&receiptModel.ReceiptModel{},
		&receiptModel.ReceiptAllocationModel{},
		&receiptModel.ReceiptExpenseLineModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return SeedSequences(db)
}

// SeedSequences inserts the default receipt series, leaving existing rows untouched.
func SeedSequences(db *gorm.DB) error {
	for _, s := range sequenceModel.DefaultSequences {
		row := s
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
