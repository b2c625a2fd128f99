// file: internals/features/finance/debts/model/debt_correction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DebtCorrectionModel records a direct edit of a debt line outside reconciliation.
type DebtCorrectionModel struct {
	DebtCorrectionID             uuid.UUID      `json:"debt_correction_id" gorm:"column:debt_correction_id;type:uuid;primaryKey"`
	DebtCorrectionDebtLineItemID uuid.UUID      `json:"debt_correction_debt_line_item_id" gorm:"column:debt_correction_debt_line_item_id;type:uuid;not null;index"`
	DebtCorrectionActorID        uuid.UUID      `json:"debt_correction_actor_id" gorm:"column:debt_correction_actor_id;type:uuid;not null"`
	DebtCorrectionReason         string         `json:"debt_correction_reason" gorm:"column:debt_correction_reason;type:text;not null"`
	DebtCorrectionBefore         datatypes.JSON `json:"debt_correction_before" gorm:"column:debt_correction_before"`
	DebtCorrectionAfter          datatypes.JSON `json:"debt_correction_after" gorm:"column:debt_correction_after"`

	DebtCorrectionCreatedAt time.Time `json:"debt_correction_created_at" gorm:"column:debt_correction_created_at;autoCreateTime"`
}

func (DebtCorrectionModel) TableName() string { return "debt_corrections" }

func (m *DebtCorrectionModel) BeforeCreate(tx *gorm.DB) error {
	if m.DebtCorrectionID == uuid.Nil {
		m.DebtCorrectionID = uuid.New()
	}
	return nil
}
