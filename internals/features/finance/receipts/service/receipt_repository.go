// file: internals/features/finance/receipts/service/receipt_repository.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/helpers/apperr"
)

// ReceiptRepository reads and writes receipt headers with their line sets.
type ReceiptRepository struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{DB: db, Now: time.Now}
}

type ReceiptFilter struct {
	Type    *model.ReceiptType
	Status  *model.ReceiptStatus
	StandID *uuid.UUID
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

func withLines(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_allocation_line_index ASC")
		}).
		Preload("ExpenseLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("receipt_expense_line_line_index ASC")
		})
}

func (r *ReceiptRepository) GetReceipt(ctx context.Context, id uuid.UUID, lines bool) (model.ReceiptModel, error) {
	m, err := r.find(r.DB.WithContext(ctx), id, lines)
	if err != nil && apperr.KindOf(err) == "" {
		return m, apperr.FromDB("get receipt", err)
	}
	return m, err
}

func (r *ReceiptRepository) find(tx *gorm.DB, id uuid.UUID, lines bool) (model.ReceiptModel, error) {
	var m model.ReceiptModel
	q := tx
	if lines {
		q = withLines(q)
	}
	err := q.Where("receipt_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, apperr.NotFound("receipt", id)
	}
	return m, err
}

func (r *ReceiptRepository) ListReceipts(ctx context.Context, f ReceiptFilter) ([]model.ReceiptModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.ReceiptModel{})
	if f.Type != nil {
		q = q.Where("receipt_type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("receipt_status = ?", *f.Status)
	}
	if f.StandID != nil {
		q = q.Where("receipt_stand_id = ?", *f.StandID)
	}
	if f.From != nil {
		q = q.Where("receipt_issue_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("receipt_issue_date < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB("count receipts", err)
	}

	var rows []model.ReceiptModel
	q = q.Order("receipt_issue_date DESC, receipt_number DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB("list receipts", err)
	}
	return rows, total, nil
}

/* =========================================================
   Transaction helpers
========================================================= */

func (r *ReceiptRepository) LockReceipt(tx *gorm.DB, id uuid.UUID) (model.ReceiptModel, error) {
	var m model.ReceiptModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("receipt_id = ?", id).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, apperr.NotFound("receipt", id)
	}
	return m, err
}

func (r *ReceiptRepository) Reload(tx *gorm.DB, id uuid.UUID) (model.ReceiptModel, error) {
	return r.find(tx, id, true)
}

func (r *ReceiptRepository) InsertHeader(tx *gorm.DB, m *model.ReceiptModel) error {
	return tx.Omit(clause.Associations).Create(m).Error
}

// ReplaceAllocations deletes the receipt's income lines and writes the new set.
func (r *ReceiptRepository) ReplaceAllocations(tx *gorm.DB, receiptID uuid.UUID, lines []model.ReceiptAllocationModel) error {
	if err := tx.Where("receipt_allocation_receipt_id = ?", receiptID).
		Delete(&model.ReceiptAllocationModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ReceiptAllocationReceiptID = receiptID
	}
	return tx.Create(&lines).Error
}

// ReplaceExpenseLines deletes the receipt's expense lines and writes the new set.
func (r *ReceiptRepository) ReplaceExpenseLines(tx *gorm.DB, receiptID uuid.UUID, lines []model.ReceiptExpenseLineModel) error {
	if err := tx.Where("receipt_expense_line_receipt_id = ?", receiptID).
		Delete(&model.ReceiptExpenseLineModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ReceiptExpenseLineReceiptID = receiptID
	}
	return tx.Create(&lines).Error
}

// RecalcTotal rewrites receipt_total from the current line set.
func (r *ReceiptRepository) RecalcTotal(tx *gorm.DB, receiptID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&model.ReceiptAllocationModel{}).
		Where("receipt_allocation_receipt_id = ?", receiptID).
		Pluck("receipt_allocation_amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	var expense []decimal.Decimal
	if err := tx.Model(&model.ReceiptExpenseLineModel{}).
		Where("receipt_expense_line_receipt_id = ?", receiptID).
		Pluck("receipt_expense_line_amount", &expense).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range append(amounts, expense...) {
		total = total.Add(a)
	}
	err := tx.Model(&model.ReceiptModel{}).
		Where("receipt_id = ?", receiptID).
		Updates(map[string]any{
			"receipt_total":      total,
			"receipt_updated_at": r.Now(),
		}).Error
	return total, err
}

// DeleteReceiptCascade removes lines first, then the header.
func (r *ReceiptRepository) DeleteReceiptCascade(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("receipt_allocation_receipt_id = ?", id).
		Delete(&model.ReceiptAllocationModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("receipt_expense_line_receipt_id = ?", id).
		Delete(&model.ReceiptExpenseLineModel{}).Error; err != nil {
		return err
	}
	res := tx.Where("receipt_id = ?", id).Delete(&model.ReceiptModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("receipt", id)
	}
	return nil
}
