// file: internals/features/finance/receipts/model/receipt_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* =========================
   Enums
   ========================= */

type ReceiptType string

const (
	ReceiptTypeIncome  ReceiptType = "income"
	ReceiptTypeExpense ReceiptType = "expense"
)

type ReceiptStatus string

const (
	ReceiptStatusActive ReceiptStatus = "active"
	ReceiptStatusVoid   ReceiptStatus = "void"
)

/* =========================
   Header
   ========================= */

type ReceiptModel struct {
	ReceiptID   uuid.UUID   `json:"receipt_id" gorm:"column:receipt_id;type:uuid;primaryKey"`
	ReceiptType ReceiptType `json:"receipt_type" gorm:"column:receipt_type;type:varchar(10);not null;uniqueIndex:uq_receipts_type_number,priority:1"`
	// nomor urut per type, dari number_sequences
	ReceiptNumber    int64     `json:"receipt_number" gorm:"column:receipt_number;not null;uniqueIndex:uq_receipts_type_number,priority:2"`
	ReceiptIssueDate time.Time `json:"receipt_issue_date" gorm:"column:receipt_issue_date;not null;index"`

	ReceiptPaymentMethodID *uuid.UUID `json:"receipt_payment_method_id,omitempty" gorm:"column:receipt_payment_method_id;type:uuid"`
	ReceiptStandID         *uuid.UUID `json:"receipt_stand_id,omitempty" gorm:"column:receipt_stand_id;type:uuid;index"`
	ReceiptOperationNumber *string    `json:"receipt_operation_number,omitempty" gorm:"column:receipt_operation_number;type:varchar(60)"`
	ReceiptEntityID        *uuid.UUID `json:"receipt_entity_id,omitempty" gorm:"column:receipt_entity_id;type:uuid"`

	// = SUM(lines.amount), ditulis ulang setiap kali line set berubah
	ReceiptTotal  decimal.Decimal `json:"receipt_total" gorm:"column:receipt_total;type:numeric(14,2);not null"`
	ReceiptStatus ReceiptStatus   `json:"receipt_status" gorm:"column:receipt_status;type:varchar(10);not null;index"`

	ReceiptCreatedBy *uuid.UUID `json:"receipt_created_by,omitempty" gorm:"column:receipt_created_by;type:uuid"`
	ReceiptUpdatedBy *uuid.UUID `json:"receipt_updated_by,omitempty" gorm:"column:receipt_updated_by;type:uuid"`

	ReceiptCreatedAt time.Time `json:"receipt_created_at" gorm:"column:receipt_created_at;autoCreateTime"`
	ReceiptUpdatedAt time.Time `json:"receipt_updated_at" gorm:"column:receipt_updated_at;autoUpdateTime"`

	Allocations  []ReceiptAllocationModel  `json:"allocations,omitempty" gorm:"foreignKey:ReceiptAllocationReceiptID;references:ReceiptID;constraint:OnDelete:CASCADE"`
	ExpenseLines []ReceiptExpenseLineModel `json:"expense_lines,omitempty" gorm:"foreignKey:ReceiptExpenseLineReceiptID;references:ReceiptID;constraint:OnDelete:CASCADE"`
}

func (ReceiptModel) TableName() string { return "receipts" }

func (m *ReceiptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ReceiptID == uuid.Nil {
		m.ReceiptID = uuid.New()
	}
	return nil
}

func (m ReceiptModel) IsActive() bool { return m.ReceiptStatus == ReceiptStatusActive }
