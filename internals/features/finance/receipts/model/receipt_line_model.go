// file: internals/features/finance/receipts/model/receipt_line_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* =========================
   Income line (allocation)
   ========================= */

type ReceiptAllocationModel struct {
	ReceiptAllocationID        uuid.UUID `json:"receipt_allocation_id" gorm:"column:receipt_allocation_id;type:uuid;primaryKey"`
	ReceiptAllocationReceiptID uuid.UUID `json:"receipt_allocation_receipt_id" gorm:"column:receipt_allocation_receipt_id;type:uuid;not null;index"`
	ReceiptAllocationLineIndex int       `json:"receipt_allocation_line_index" gorm:"column:receipt_allocation_line_index;not null"`
	ReceiptAllocationConceptID uuid.UUID `json:"receipt_allocation_concept_id" gorm:"column:receipt_allocation_concept_id;type:uuid;not null;index"`

	// null → baris "other income" tanpa debt
	ReceiptAllocationDebtLineItemID *uuid.UUID `json:"receipt_allocation_debt_line_item_id,omitempty" gorm:"column:receipt_allocation_debt_line_item_id;type:uuid;index"`

	ReceiptAllocationAmount      decimal.Decimal `json:"receipt_allocation_amount" gorm:"column:receipt_allocation_amount;type:numeric(14,2);not null;check:chk_receipt_allocations_amount,receipt_allocation_amount > 0"`
	ReceiptAllocationDescription *string         `json:"receipt_allocation_description,omitempty" gorm:"column:receipt_allocation_description;type:text"`

	ReceiptAllocationCreatedAt time.Time `json:"receipt_allocation_created_at" gorm:"column:receipt_allocation_created_at;autoCreateTime"`
}

func (ReceiptAllocationModel) TableName() string { return "receipt_allocations" }

func (m *ReceiptAllocationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReceiptAllocationID == uuid.Nil {
		m.ReceiptAllocationID = uuid.New()
	}
	return nil
}

/* =========================
   Expense line
   ========================= */

type ReceiptExpenseLineModel struct {
	ReceiptExpenseLineID          uuid.UUID       `json:"receipt_expense_line_id" gorm:"column:receipt_expense_line_id;type:uuid;primaryKey"`
	ReceiptExpenseLineReceiptID   uuid.UUID       `json:"receipt_expense_line_receipt_id" gorm:"column:receipt_expense_line_receipt_id;type:uuid;not null;index"`
	ReceiptExpenseLineLineIndex   int             `json:"receipt_expense_line_line_index" gorm:"column:receipt_expense_line_line_index;not null"`
	ReceiptExpenseLineConceptID   uuid.UUID       `json:"receipt_expense_line_concept_id" gorm:"column:receipt_expense_line_concept_id;type:uuid;not null;index"`
	ReceiptExpenseLineAmount      decimal.Decimal `json:"receipt_expense_line_amount" gorm:"column:receipt_expense_line_amount;type:numeric(14,2);not null;check:chk_receipt_expense_lines_amount,receipt_expense_line_amount > 0"`
	ReceiptExpenseLineDescription *string         `json:"receipt_expense_line_description,omitempty" gorm:"column:receipt_expense_line_description;type:text"`

	ReceiptExpenseLineCreatedAt time.Time `json:"receipt_expense_line_created_at" gorm:"column:receipt_expense_line_created_at;autoCreateTime"`
}

func (ReceiptExpenseLineModel) TableName() string { return "receipt_expense_lines" }

func (m *ReceiptExpenseLineModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReceiptExpenseLineID == uuid.Nil {
		m.ReceiptExpenseLineID = uuid.New()
	}
	return nil
}
