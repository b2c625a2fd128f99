// file: internals/features/finance/debts/model/debt_line_item_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DebtLineItemModel struct {
	DebtLineItemID        uuid.UUID `json:"debt_line_item_id" gorm:"column:debt_line_item_id;type:uuid;primaryKey"`
	DebtLineItemBatchID   uuid.UUID `json:"debt_line_item_batch_id" gorm:"column:debt_line_item_batch_id;type:uuid;not null;index"`
	DebtLineItemStandID   uuid.UUID `json:"debt_line_item_stand_id" gorm:"column:debt_line_item_stand_id;type:uuid;not null;index:idx_debt_line_items_stand_settled,priority:1"`
	DebtLineItemConceptID uuid.UUID `json:"debt_line_item_concept_id" gorm:"column:debt_line_item_concept_id;type:uuid;not null;index"`
	DebtLineItemDueDate   time.Time `json:"debt_line_item_due_date" gorm:"column:debt_line_item_due_date;not null"`

	// monto & mora
	DebtLineItemPrincipal decimal.Decimal `json:"debt_line_item_principal" gorm:"column:debt_line_item_principal;type:numeric(14,2);not null;check:chk_debt_line_items_principal,debt_line_item_principal >= 0"`
	DebtLineItemPenalty   decimal.Decimal `json:"debt_line_item_penalty" gorm:"column:debt_line_item_penalty;type:numeric(14,2);not null;check:chk_debt_line_items_penalty,debt_line_item_penalty >= 0"`

	// informational only
	DebtLineItemActiveTenantID *uuid.UUID `json:"debt_line_item_active_tenant_id,omitempty" gorm:"column:debt_line_item_active_tenant_id;type:uuid"`

	DebtLineItemSettled   bool       `json:"debt_line_item_settled" gorm:"column:debt_line_item_settled;not null;index:idx_debt_line_items_stand_settled,priority:2"`
	DebtLineItemSettledAt *time.Time `json:"debt_line_item_settled_at,omitempty" gorm:"column:debt_line_item_settled_at"`

	DebtLineItemCreatedAt time.Time `json:"debt_line_item_created_at" gorm:"column:debt_line_item_created_at;autoCreateTime"`
	DebtLineItemUpdatedAt time.Time `json:"debt_line_item_updated_at" gorm:"column:debt_line_item_updated_at;autoUpdateTime"`
}

func (DebtLineItemModel) TableName() string { return "debt_line_items" }

func (m *DebtLineItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.DebtLineItemID == uuid.Nil {
		m.DebtLineItemID = uuid.New()
	}
	return nil
}

// Due returns principal + penalty.
func (m DebtLineItemModel) Due() decimal.Decimal {
	return m.DebtLineItemPrincipal.Add(m.DebtLineItemPenalty)
}
