// file: internals/features/finance/debts/model/debt_batch_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtBatchModel is one billing run. Total is fixed at creation.
type DebtBatchModel struct {
	DebtBatchID        uuid.UUID       `json:"debt_batch_id" gorm:"column:debt_batch_id;type:uuid;primaryKey"`
	DebtBatchDate      time.Time       `json:"debt_batch_date" gorm:"column:debt_batch_date;not null;index"`
	DebtBatchConceptID uuid.UUID       `json:"debt_batch_concept_id" gorm:"column:debt_batch_concept_id;type:uuid;not null;index"`
	DebtBatchTotal     decimal.Decimal `json:"debt_batch_total" gorm:"column:debt_batch_total;type:numeric(14,2);not null"`
	DebtBatchNote      *string         `json:"debt_batch_note,omitempty" gorm:"column:debt_batch_note;type:text"`
	DebtBatchCreatedBy *uuid.UUID      `json:"debt_batch_created_by,omitempty" gorm:"column:debt_batch_created_by;type:uuid"`

	DebtBatchCreatedAt time.Time `json:"debt_batch_created_at" gorm:"column:debt_batch_created_at;autoCreateTime"`
	DebtBatchUpdatedAt time.Time `json:"debt_batch_updated_at" gorm:"column:debt_batch_updated_at;autoUpdateTime"`
}

func (DebtBatchModel) TableName() string { return "debt_batches" }

func (m *DebtBatchModel) BeforeCreate(tx *gorm.DB) error {
	if m.DebtBatchID == uuid.Nil {
		m.DebtBatchID = uuid.New()
	}
	return nil
}
