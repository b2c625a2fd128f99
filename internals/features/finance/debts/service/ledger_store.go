// file: internals/features/finance/debts/service/ledger_store.go
package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	conceptModel "standbill_backend/internals/features/finance/concepts/model"
	conceptService "standbill_backend/internals/features/finance/concepts/service"
	"standbill_backend/internals/features/finance/debts/model"
	receiptModel "standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/helpers/apperr"
	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/helpers/logger"
)

// LedgerStore owns debt batches and debt line items. Methods taking a *gorm.DB
// run inside the caller's transaction and return store errors untouched.
type LedgerStore struct {
	DB  *gorm.DB
	Now func() time.Time
	log zerolog.Logger
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{DB: db, Now: time.Now, log: logger.WithComponent("ledger")}
}

/* =========================================================
   Types
========================================================= */

// DebtLineView is a debt line with its balance computed at read time.
type DebtLineView struct {
	Item        model.DebtLineItemModel
	Allocated   decimal.Decimal
	Outstanding decimal.Decimal
}

type DebtLineFilter struct {
	StandID         *uuid.UUID
	ConceptID       *uuid.UUID
	BatchID         *uuid.UUID
	OnlyOutstanding bool
	Limit           int
	Offset          int
}

type CreateBatchItem struct {
	StandID        uuid.UUID
	DueDate        *time.Time
	Principal      decimal.Decimal
	Penalty        decimal.Decimal
	ActiveTenantID *uuid.UUID
}

type CreateBatchInput struct {
	Date      time.Time
	ConceptID uuid.UUID
	Note      *string
	Items     []CreateBatchItem
}

type CorrectionInput struct {
	Principal      *decimal.Decimal
	Penalty        *decimal.Decimal
	DueDate        *time.Time
	ActiveTenantID *uuid.UUID
	Settled        *bool
	Reason         string
}

/* =========================================================
   Reads
========================================================= */

func (s *LedgerStore) GetDebtLineItem(ctx context.Context, id uuid.UUID) (DebtLineView, error) {
	db := s.DB.WithContext(ctx)

	var item model.DebtLineItemModel
	if err := db.Where("debt_line_item_id = ?", id).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DebtLineView{}, apperr.NotFound("debt line item", id)
		}
		return DebtLineView{}, apperr.FromDB("get debt line item", err)
	}

	allocs, err := s.AllocatedAmounts(db, []uuid.UUID{id}, nil)
	if err != nil {
		return DebtLineView{}, apperr.FromDB("get debt line item", err)
	}
	return newView(item, allocs[id]), nil
}

// ListDebtLineItems returns matching lines. OnlyOutstanding is applied after the
// balance is computed, so paging happens in memory for that projection.
func (s *LedgerStore) ListDebtLineItems(ctx context.Context, f DebtLineFilter) ([]DebtLineView, int64, error) {
	db := s.DB.WithContext(ctx)

	q := db.Model(&model.DebtLineItemModel{})
	if f.StandID != nil {
		q = q.Where("debt_line_item_stand_id = ?", *f.StandID)
	}
	if f.ConceptID != nil {
		q = q.Where("debt_line_item_concept_id = ?", *f.ConceptID)
	}
	if f.BatchID != nil {
		q = q.Where("debt_line_item_batch_id = ?", *f.BatchID)
	}

	var items []model.DebtLineItemModel
	if err := q.Order("debt_line_item_due_date ASC, debt_line_item_id ASC").Find(&items).Error; err != nil {
		return nil, 0, apperr.FromDB("list debt line items", err)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.DebtLineItemID)
	}
	allocs, err := s.AllocatedAmounts(db, ids, nil)
	if err != nil {
		return nil, 0, apperr.FromDB("list debt line items", err)
	}

	views := make([]DebtLineView, 0, len(items))
	for _, it := range items {
		v := newView(it, allocs[it.DebtLineItemID])
		if f.OnlyOutstanding && !v.Outstanding.IsPositive() {
			continue
		}
		views = append(views, v)
	}

	total := int64(len(views))
	return page(views, f.Limit, f.Offset), total, nil
}

// ListOutstanding lists every line of a stand (or of all stands) that still owes money.
func (s *LedgerStore) ListOutstanding(ctx context.Context, standID *uuid.UUID) ([]DebtLineView, error) {
	views, _, err := s.ListDebtLineItems(ctx, DebtLineFilter{StandID: standID, OnlyOutstanding: true})
	return views, err
}

func (s *LedgerStore) GetDebtBatch(ctx context.Context, id uuid.UUID) (model.DebtBatchModel, []DebtLineView, error) {
	var batch model.DebtBatchModel
	if err := s.DB.WithContext(ctx).Where("debt_batch_id = ?", id).Take(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return batch, nil, apperr.NotFound("debt batch", id)
		}
		return batch, nil, apperr.FromDB("get debt batch", err)
	}
	items, _, err := s.ListDebtLineItems(ctx, DebtLineFilter{BatchID: &id})
	if err != nil {
		return batch, nil, err
	}
	return batch, items, nil
}

func (s *LedgerStore) ListDebtBatches(ctx context.Context, conceptID *uuid.UUID, limit, offset int) ([]model.DebtBatchModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.DebtBatchModel{})
	if conceptID != nil {
		q = q.Where("debt_batch_concept_id = ?", *conceptID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB("count debt batches", err)
	}

	var rows []model.DebtBatchModel
	q = q.Order("debt_batch_date DESC, debt_batch_created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB("list debt batches", err)
	}
	return rows, total, nil
}

/* =========================================================
   Writes
========================================================= */

// CreateDebtBatch writes a billing run and its lines. Total is fixed here and never recomputed.
func (s *LedgerStore) CreateDebtBatch(ctx context.Context, actor helperAuth.Actor, in CreateBatchInput) (model.DebtBatchModel, []model.DebtLineItemModel, error) {
	if in.ConceptID == uuid.Nil {
		return model.DebtBatchModel{}, nil, apperr.ValidationField("concept_id", "concept_id is required")
	}
	if len(in.Items) == 0 {
		return model.DebtBatchModel{}, nil, apperr.ValidationField("items", "at least one item is required")
	}
	if in.Date.IsZero() {
		in.Date = s.Now()
	}

	total := decimal.Zero
	for i, it := range in.Items {
		if it.StandID == uuid.Nil {
			return model.DebtBatchModel{}, nil, apperr.ValidationField("stand_id", "item %d: stand_id is required", i+1)
		}
		if err := validateMoney("principal", i+1, it.Principal); err != nil {
			return model.DebtBatchModel{}, nil, err
		}
		if err := validateMoney("penalty", i+1, it.Penalty); err != nil {
			return model.DebtBatchModel{}, nil, err
		}
		total = total.Add(it.Principal).Add(it.Penalty)
	}

	batch := model.DebtBatchModel{
		DebtBatchDate:      in.Date,
		DebtBatchConceptID: in.ConceptID,
		DebtBatchTotal:     total,
		DebtBatchNote:      trimPtr(in.Note),
		DebtBatchCreatedBy: actor.IDPtr(),
	}
	items := make([]model.DebtLineItemModel, 0, len(in.Items))

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		concepts, err := conceptService.LoadActive(tx, []uuid.UUID{in.ConceptID}, conceptModel.ConceptKindIncome)
		if err != nil {
			return err
		}
		if !concepts[in.ConceptID].ConceptIsDebt {
			return apperr.ValidationField("concept_id", "concept %s does not generate debt", in.ConceptID)
		}

		if err := tx.Create(&batch).Error; err != nil {
			return err
		}
		for _, it := range in.Items {
			due := in.Date
			if it.DueDate != nil && !it.DueDate.IsZero() {
				due = *it.DueDate
			}
			items = append(items, model.DebtLineItemModel{
				DebtLineItemBatchID:        batch.DebtBatchID,
				DebtLineItemStandID:        it.StandID,
				DebtLineItemConceptID:      in.ConceptID,
				DebtLineItemDueDate:        due,
				DebtLineItemPrincipal:      it.Principal,
				DebtLineItemPenalty:        it.Penalty,
				DebtLineItemActiveTenantID: it.ActiveTenantID,
			})
		}
		return tx.CreateInBatches(&items, 200).Error
	})
	if err != nil {
		return model.DebtBatchModel{}, nil, apperr.FromDB("create debt batch", err)
	}

	s.log.Info().
		Str("batch_id", batch.DebtBatchID.String()).
		Int("items", len(items)).
		Str("total", total.StringFixed(2)).
		Msg("debt batch created")
	return batch, items, nil
}

// CorrectDebtLineItem is the authorized escape hatch for editing a debt line directly.
// Every call leaves an audit row and a warn log line.
func (s *LedgerStore) CorrectDebtLineItem(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, in CorrectionInput) (DebtLineView, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return DebtLineView{}, apperr.ValidationField("reason", "reason is required for a correction")
	}
	if actor.UserID == uuid.Nil {
		return DebtLineView{}, apperr.Validation("correction requires an authenticated actor")
	}
	if in.Principal != nil {
		if err := validateMoney("principal", 0, *in.Principal); err != nil {
			return DebtLineView{}, err
		}
	}
	if in.Penalty != nil {
		if err := validateMoney("penalty", 0, *in.Penalty); err != nil {
			return DebtLineView{}, err
		}
	}

	var view DebtLineView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.LockDebtLineItems(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		before := locked[0]
		after := before

		if in.Principal != nil {
			after.DebtLineItemPrincipal = *in.Principal
		}
		if in.Penalty != nil {
			after.DebtLineItemPenalty = *in.Penalty
		}
		if in.DueDate != nil && !in.DueDate.IsZero() {
			after.DebtLineItemDueDate = *in.DueDate
		}
		if in.ActiveTenantID != nil {
			after.DebtLineItemActiveTenantID = in.ActiveTenantID
		}

		allocs, err := s.AllocatedAmounts(tx, []uuid.UUID{id}, nil)
		if err != nil {
			return err
		}
		allocated := Allocated(allocs[id])
		if after.Due().LessThan(allocated) {
			return apperr.Validation("principal + penalty %s would fall below the %s already allocated",
				after.Due().StringFixed(2), allocated.StringFixed(2)).WithDetail("field", "principal")
		}

		if in.Settled != nil && *in.Settled != after.DebtLineItemSettled {
			after.DebtLineItemSettled = *in.Settled
			if *in.Settled {
				now := s.Now()
				after.DebtLineItemSettledAt = &now
			} else {
				after.DebtLineItemSettledAt = nil
			}
		}

		if err := tx.Model(&model.DebtLineItemModel{}).
			Where("debt_line_item_id = ?", id).
			Updates(map[string]any{
				"debt_line_item_principal":        after.DebtLineItemPrincipal,
				"debt_line_item_penalty":          after.DebtLineItemPenalty,
				"debt_line_item_due_date":         after.DebtLineItemDueDate,
				"debt_line_item_active_tenant_id": after.DebtLineItemActiveTenantID,
				"debt_line_item_settled":          after.DebtLineItemSettled,
				"debt_line_item_settled_at":       after.DebtLineItemSettledAt,
				"debt_line_item_updated_at":       s.Now(),
			}).Error; err != nil {
			return err
		}

		beforeJSON, err := snapshot(before)
		if err != nil {
			return err
		}
		afterJSON, err := snapshot(after)
		if err != nil {
			return err
		}
		if err := tx.Create(&model.DebtCorrectionModel{
			DebtCorrectionDebtLineItemID: id,
			DebtCorrectionActorID:        actor.UserID,
			DebtCorrectionReason:         reason,
			DebtCorrectionBefore:         beforeJSON,
			DebtCorrectionAfter:          afterJSON,
		}).Error; err != nil {
			return err
		}

		view = newView(after, allocs[id])
		return nil
	})
	if err != nil {
		return DebtLineView{}, apperr.FromDB("correct debt line item", err)
	}

	s.log.Warn().
		Str("debt_line_item_id", id.String()).
		Str("actor_id", actor.UserID.String()).
		Str("role", actor.Role).
		Str("reason", reason).
		Str("outstanding", view.Outstanding.StringFixed(2)).
		Msg("debt line item corrected outside reconciliation")
	return view, nil
}

func (s *LedgerStore) ListCorrections(ctx context.Context, debtLineItemID uuid.UUID) ([]model.DebtCorrectionModel, error) {
	var rows []model.DebtCorrectionModel
	err := s.DB.WithContext(ctx).
		Where("debt_correction_debt_line_item_id = ?", debtLineItemID).
		Order("debt_correction_created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.FromDB("list debt corrections", err)
	}
	return rows, nil
}

/* =========================================================
   Transaction helpers (used by reconciliation)
========================================================= */

// LockDebtLineItems loads the lines FOR UPDATE in id order so concurrent
// payments against overlapping lines always lock in the same sequence.
func (s *LedgerStore) LockDebtLineItems(tx *gorm.DB, ids []uuid.UUID) ([]model.DebtLineItemModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	uniq := sortedUnique(ids)

	var rows []model.DebtLineItemModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("debt_line_item_id IN ?", uniq).
		Order("debt_line_item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(uniq) {
		found := make(map[uuid.UUID]struct{}, len(rows))
		for _, r := range rows {
			found[r.DebtLineItemID] = struct{}{}
		}
		for _, id := range uniq {
			if _, ok := found[id]; !ok {
				return nil, apperr.NotFound("debt line item", id)
			}
		}
	}
	return rows, nil
}

// AllocatedAmounts returns the allocation amounts of active receipts per debt line.
// excludeReceipt leaves out one receipt's own lines (used while editing it).
func (s *LedgerStore) AllocatedAmounts(tx *gorm.DB, ids []uuid.UUID, excludeReceipt *uuid.UUID) (map[uuid.UUID][]decimal.Decimal, error) {
	out := make(map[uuid.UUID][]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	type row struct {
		DebtLineItemID uuid.UUID
		Amount         decimal.Decimal
	}
	q := tx.Table("receipt_allocations AS a").
		Select("a.receipt_allocation_debt_line_item_id AS debt_line_item_id, a.receipt_allocation_amount AS amount").
		Joins("JOIN receipts AS r ON r.receipt_id = a.receipt_allocation_receipt_id").
		Where("a.receipt_allocation_debt_line_item_id IN ?", sortedUnique(ids)).
		Where("r.receipt_status = ?", receiptModel.ReceiptStatusActive)
	if excludeReceipt != nil {
		q = q.Where("r.receipt_id <> ?", *excludeReceipt)
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.DebtLineItemID] = append(out[r.DebtLineItemID], r.Amount)
	}
	return out, nil
}

// Settle flips the settled flag on. It never clears it.
func (s *LedgerStore) Settle(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.DebtLineItemModel{}).
		Where("debt_line_item_id = ? AND debt_line_item_settled = ?", id, false).
		Updates(map[string]any{
			"debt_line_item_settled":    true,
			"debt_line_item_settled_at": s.Now(),
			"debt_line_item_updated_at": s.Now(),
		}).Error
}

/* =========================================================
   helpers
========================================================= */

func newView(item model.DebtLineItemModel, allocs []decimal.Decimal) DebtLineView {
	return DebtLineView{
		Item:        item,
		Allocated:   Allocated(allocs),
		Outstanding: Outstanding(item.DebtLineItemPrincipal, item.DebtLineItemPenalty, allocs),
	}
}

func validateMoney(field string, line int, v decimal.Decimal) error {
	prefix := ""
	if line > 0 {
		prefix = "item " + strconv.Itoa(line) + ": "
	}
	if v.IsNegative() {
		return apperr.ValidationField(field, "%s%s must be >= 0", prefix, field)
	}
	if !v.Equal(v.Round(2)) {
		return apperr.ValidationField(field, "%s%s must have at most 2 decimal places", prefix, field)
	}
	return nil
}

func snapshot(m model.DebtLineItemModel) (datatypes.JSON, error) {
	b, err := sonic.Marshal(map[string]any{
		"principal":        m.DebtLineItemPrincipal.StringFixed(2),
		"penalty":          m.DebtLineItemPenalty.StringFixed(2),
		"due_date":         m.DebtLineItemDueDate,
		"active_tenant_id": m.DebtLineItemActiveTenantID,
		"settled":          m.DebtLineItemSettled,
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func page[T any](xs []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(xs) {
		return []T{}
	}
	xs = xs[offset:]
	if limit > 0 && limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
