// file: internals/features/finance/receipts/service/reconciliation_service.go
package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	conceptModel "standbill_backend/internals/features/finance/concepts/model"
	conceptService "standbill_backend/internals/features/finance/concepts/service"
	debtModel "standbill_backend/internals/features/finance/debts/model"
	debtService "standbill_backend/internals/features/finance/debts/service"
	"standbill_backend/internals/features/finance/receipts/model"
	seqModel "standbill_backend/internals/features/finance/sequences/model"
	seqService "standbill_backend/internals/features/finance/sequences/service"
	"standbill_backend/internals/helpers/apperr"
	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/helpers/logger"
)

var operationNumberRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ReconciliationService turns payments into numbered receipts and keeps debt
// balances consistent. Every operation is one transaction.
type ReconciliationService struct {
	DB        *gorm.DB
	Ledger    *debtService.LedgerStore
	Sequences *seqService.Allocator
	Receipts  *ReceiptRepository
	Config    configs.LedgerConfig
	Now       func() time.Time

	log zerolog.Logger
}

func NewReconciliationService(db *gorm.DB, cfg configs.LedgerConfig) *ReconciliationService {
	return &ReconciliationService{
		DB:        db,
		Ledger:    debtService.NewLedgerStore(db),
		Sequences: seqService.NewAllocator(db),
		Receipts:  NewReceiptRepository(db),
		Config:    cfg,
		Now:       time.Now,
		log:       logger.WithComponent("reconciliation"),
	}
}

/* =========================================================
   Inputs
========================================================= */

type IncomeLineInput struct {
	ConceptID      uuid.UUID
	DebtLineItemID *uuid.UUID
	Amount         decimal.Decimal
	Description    *string
}

type IncomeReceiptInput struct {
	PaymentMethodID uuid.UUID
	StandID         *uuid.UUID
	OperationNumber *string
	EntityID        *uuid.UUID
	IssueDate       *time.Time
	Lines           []IncomeLineInput
}

type ExpenseLineInput struct {
	ConceptID   uuid.UUID
	Amount      decimal.Decimal
	Description *string
}

type ExpenseReceiptInput struct {
	StandID         *uuid.UUID
	OperationNumber *string
	EntityID        *uuid.UUID
	IssueDate       *time.Time
	Lines           []ExpenseLineInput
}

/* =========================================================
   Transaction runner
========================================================= */

// runTx runs fn in one transaction bounded by the configured timeout and retries
// the whole transaction on conflict (up to TxRetries) or storage failure (once).
func (s *ReconciliationService) runTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	for attempt := 0; ; attempt++ {
		txCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.Config.TxTimeout > 0 {
			txCtx, cancel = context.WithTimeout(ctx, s.Config.TxTimeout)
		}
		err := apperr.FromDB(op, s.DB.WithContext(txCtx).Transaction(fn))
		cancel()

		if err == nil || !apperr.IsRetryable(err) || attempt >= s.retryLimit(err) || ctx.Err() != nil {
			return err
		}

		wait := s.Config.RetryBackoff * time.Duration(attempt+1)
		s.log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Dur("backoff", wait).Msg("retrying transaction")
		select {
		case <-ctx.Done():
			return apperr.FromDB(op, ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (s *ReconciliationService) retryLimit(err error) int {
	if apperr.KindOf(err) == apperr.KindPersistence {
		return min(s.Config.TxRetries, 1)
	}
	return s.Config.TxRetries
}

/* =========================================================
   Income
========================================================= */

func (s *ReconciliationService) CreateIncomeReceipt(ctx context.Context, actor helperAuth.Actor, in IncomeReceiptInput) (model.ReceiptModel, error) {
	opNumber, err := validateIncome(in)
	if err != nil {
		return model.ReceiptModel{}, err
	}

	var out model.ReceiptModel
	err = s.runTx(ctx, "create income receipt", func(tx *gorm.DB) error {
		requested, err := s.checkIncomeLines(tx, in.Lines, nil)
		if err != nil {
			return err
		}

		number, err := s.Sequences.Allocate(tx, seqModel.SequenceReceiptIncome)
		if err != nil {
			return err
		}

		header := model.ReceiptModel{
			ReceiptType:            model.ReceiptTypeIncome,
			ReceiptNumber:          number,
			ReceiptIssueDate:       s.issueDate(in.IssueDate),
			ReceiptPaymentMethodID: &in.PaymentMethodID,
			ReceiptStandID:         in.StandID,
			ReceiptOperationNumber: opNumber,
			ReceiptEntityID:        in.EntityID,
			ReceiptTotal:           decimal.Zero,
			ReceiptStatus:          model.ReceiptStatusActive,
			ReceiptCreatedBy:       actor.IDPtr(),
			ReceiptUpdatedBy:       actor.IDPtr(),
		}
		if err := s.Receipts.InsertHeader(tx, &header); err != nil {
			return err
		}
		if err := s.Receipts.ReplaceAllocations(tx, header.ReceiptID, allocationRows(in.Lines)); err != nil {
			return err
		}
		if _, err := s.Receipts.RecalcTotal(tx, header.ReceiptID); err != nil {
			return err
		}
		if err := s.applySettlement(tx, requested); err != nil {
			return err
		}

		out, err = s.Receipts.Reload(tx, header.ReceiptID)
		return err
	})
	if err != nil {
		return model.ReceiptModel{}, err
	}

	s.log.Info().
		Str("receipt_id", out.ReceiptID.String()).
		Int64("number", out.ReceiptNumber).
		Str("total", out.ReceiptTotal.StringFixed(2)).
		Str("actor_id", actor.UserID.String()).
		Msg("income receipt created")
	return out, nil
}

// UpdateIncomeReceipt rewrites the line set. The receipt's own previous allocations
// are left out of the balance check, so resubmitting unchanged amounts passes.
func (s *ReconciliationService) UpdateIncomeReceipt(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, in IncomeReceiptInput) (model.ReceiptModel, error) {
	opNumber, err := validateIncome(in)
	if err != nil {
		return model.ReceiptModel{}, err
	}

	var out model.ReceiptModel
	err = s.runTx(ctx, "update income receipt", func(tx *gorm.DB) error {
		header, err := s.Receipts.LockReceipt(tx, id)
		if err != nil {
			return err
		}
		if err := editable(header, model.ReceiptTypeIncome); err != nil {
			return err
		}

		requested, err := s.checkIncomeLines(tx, in.Lines, &id)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"receipt_payment_method_id": in.PaymentMethodID,
			"receipt_stand_id":          in.StandID,
			"receipt_operation_number":  opNumber,
			"receipt_entity_id":         in.EntityID,
			"receipt_updated_by":        actor.IDPtr(),
			"receipt_updated_at":        s.Now(),
		}
		if in.IssueDate != nil && !in.IssueDate.IsZero() {
			updates["receipt_issue_date"] = *in.IssueDate
		}
		if err := tx.Model(&model.ReceiptModel{}).Where("receipt_id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := s.Receipts.ReplaceAllocations(tx, id, allocationRows(in.Lines)); err != nil {
			return err
		}
		if _, err := s.Receipts.RecalcTotal(tx, id); err != nil {
			return err
		}
		if err := s.applySettlement(tx, requested); err != nil {
			return err
		}

		out, err = s.Receipts.Reload(tx, id)
		return err
	})
	if err != nil {
		return model.ReceiptModel{}, err
	}

	s.log.Info().
		Str("receipt_id", id.String()).
		Str("total", out.ReceiptTotal.StringFixed(2)).
		Str("actor_id", actor.UserID.String()).
		Msg("income receipt updated")
	return out, nil
}

/* =========================================================
   Expense
========================================================= */

func (s *ReconciliationService) CreateExpenseReceipt(ctx context.Context, actor helperAuth.Actor, in ExpenseReceiptInput) (model.ReceiptModel, error) {
	opNumber, err := validateExpense(in)
	if err != nil {
		return model.ReceiptModel{}, err
	}

	var out model.ReceiptModel
	err = s.runTx(ctx, "create expense receipt", func(tx *gorm.DB) error {
		if _, err := conceptService.LoadActive(tx, expenseConceptIDs(in.Lines), conceptModel.ConceptKindExpense); err != nil {
			return err
		}

		number, err := s.Sequences.Allocate(tx, seqModel.SequenceReceiptExpense)
		if err != nil {
			return err
		}

		header := model.ReceiptModel{
			ReceiptType:            model.ReceiptTypeExpense,
			ReceiptNumber:          number,
			ReceiptIssueDate:       s.issueDate(in.IssueDate),
			ReceiptStandID:         in.StandID,
			ReceiptOperationNumber: opNumber,
			ReceiptEntityID:        in.EntityID,
			ReceiptTotal:           decimal.Zero,
			ReceiptStatus:          model.ReceiptStatusActive,
			ReceiptCreatedBy:       actor.IDPtr(),
			ReceiptUpdatedBy:       actor.IDPtr(),
		}
		if err := s.Receipts.InsertHeader(tx, &header); err != nil {
			return err
		}
		if err := s.Receipts.ReplaceExpenseLines(tx, header.ReceiptID, expenseRows(in.Lines)); err != nil {
			return err
		}
		if _, err := s.Receipts.RecalcTotal(tx, header.ReceiptID); err != nil {
			return err
		}

		out, err = s.Receipts.Reload(tx, header.ReceiptID)
		return err
	})
	if err != nil {
		return model.ReceiptModel{}, err
	}

	s.log.Info().
		Str("receipt_id", out.ReceiptID.String()).
		Int64("number", out.ReceiptNumber).
		Str("total", out.ReceiptTotal.StringFixed(2)).
		Msg("expense receipt created")
	return out, nil
}

func (s *ReconciliationService) UpdateExpenseReceipt(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, in ExpenseReceiptInput) (model.ReceiptModel, error) {
	opNumber, err := validateExpense(in)
	if err != nil {
		return model.ReceiptModel{}, err
	}

	var out model.ReceiptModel
	err = s.runTx(ctx, "update expense receipt", func(tx *gorm.DB) error {
		header, err := s.Receipts.LockReceipt(tx, id)
		if err != nil {
			return err
		}
		if err := editable(header, model.ReceiptTypeExpense); err != nil {
			return err
		}
		if _, err := conceptService.LoadActive(tx, expenseConceptIDs(in.Lines), conceptModel.ConceptKindExpense); err != nil {
			return err
		}

		updates := map[string]any{
			"receipt_stand_id":         in.StandID,
			"receipt_operation_number": opNumber,
			"receipt_entity_id":        in.EntityID,
			"receipt_updated_by":       actor.IDPtr(),
			"receipt_updated_at":       s.Now(),
		}
		if in.IssueDate != nil && !in.IssueDate.IsZero() {
			updates["receipt_issue_date"] = *in.IssueDate
		}
		if err := tx.Model(&model.ReceiptModel{}).Where("receipt_id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := s.Receipts.ReplaceExpenseLines(tx, id, expenseRows(in.Lines)); err != nil {
			return err
		}
		if _, err := s.Receipts.RecalcTotal(tx, id); err != nil {
			return err
		}

		out, err = s.Receipts.Reload(tx, id)
		return err
	})
	if err != nil {
		return model.ReceiptModel{}, err
	}

	s.log.Info().
		Str("receipt_id", id.String()).
		Str("total", out.ReceiptTotal.StringFixed(2)).
		Str("actor_id", actor.UserID.String()).
		Msg("expense receipt updated")
	return out, nil
}

/* =========================================================
   Status & delete
========================================================= */

// SetReceiptActive voids or reactivates a receipt. Voiding never reopens debts;
// reactivating an income receipt re-checks its allocations against current balances.
func (s *ReconciliationService) SetReceiptActive(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, active bool) (model.ReceiptModel, error) {
	target := model.ReceiptStatusVoid
	if active {
		target = model.ReceiptStatusActive
	}

	var out model.ReceiptModel
	err := s.runTx(ctx, "set receipt status", func(tx *gorm.DB) error {
		header, err := s.Receipts.LockReceipt(tx, id)
		if err != nil {
			return err
		}
		if header.ReceiptStatus == target {
			out, err = s.Receipts.Reload(tx, id)
			return err
		}

		var requested map[uuid.UUID]decimal.Decimal
		if active && header.ReceiptType == model.ReceiptTypeIncome {
			current, err := s.Receipts.Reload(tx, id)
			if err != nil {
				return err
			}
			lines := make([]IncomeLineInput, 0, len(current.Allocations))
			for _, a := range current.Allocations {
				lines = append(lines, IncomeLineInput{
					DebtLineItemID: a.ReceiptAllocationDebtLineItemID,
					Amount:         a.ReceiptAllocationAmount,
				})
			}
			requested, err = s.checkDebtBalances(tx, lines, &id)
			if err != nil {
				return err
			}
		}

		if err := tx.Model(&model.ReceiptModel{}).
			Where("receipt_id = ?", id).
			Updates(map[string]any{
				"receipt_status":     target,
				"receipt_updated_by": actor.IDPtr(),
				"receipt_updated_at": s.Now(),
			}).Error; err != nil {
			return err
		}
		if err := s.applySettlement(tx, requested); err != nil {
			return err
		}

		out, err = s.Receipts.Reload(tx, id)
		return err
	})
	if err != nil {
		return model.ReceiptModel{}, err
	}

	s.log.Info().
		Str("receipt_id", id.String()).
		Str("status", string(target)).
		Str("actor_id", actor.UserID.String()).
		Msg("receipt status changed")
	return out, nil
}

// DeleteReceipt hard-deletes a receipt and its lines. Debt lines it settled stay settled.
func (s *ReconciliationService) DeleteReceipt(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	var deleted model.ReceiptModel
	err := s.runTx(ctx, "delete receipt", func(tx *gorm.DB) error {
		var err error
		if deleted, err = s.Receipts.LockReceipt(tx, id); err != nil {
			return err
		}
		return s.Receipts.DeleteReceiptCascade(tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Warn().
		Str("receipt_id", id.String()).
		Str("type", string(deleted.ReceiptType)).
		Int64("number", deleted.ReceiptNumber).
		Str("actor_id", actor.UserID.String()).
		Msg("receipt deleted")
	return nil
}

/* =========================================================
   Balance checks & settlement
========================================================= */

// checkIncomeLines validates concepts and debt references, then the balances.
func (s *ReconciliationService) checkIncomeLines(tx *gorm.DB, lines []IncomeLineInput, exclude *uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	conceptIDs := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		conceptIDs = append(conceptIDs, l.ConceptID)
	}
	if _, err := conceptService.LoadActive(tx, conceptIDs, conceptModel.ConceptKindIncome); err != nil {
		return nil, err
	}
	return s.checkDebtBalances(tx, lines, exclude)
}

// checkDebtBalances locks every referenced debt line and rejects the whole set
// when the running total for a debt line passes its outstanding balance.
// It returns the requested amount per debt line.
func (s *ReconciliationService) checkDebtBalances(tx *gorm.DB, lines []IncomeLineInput, exclude *uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	debtIDs := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.DebtLineItemID != nil {
			debtIDs = append(debtIDs, *l.DebtLineItemID)
		}
	}
	requested := make(map[uuid.UUID]decimal.Decimal, len(debtIDs))
	if len(debtIDs) == 0 {
		return requested, nil
	}

	locked, err := s.Ledger.LockDebtLineItems(tx, debtIDs)
	if err != nil {
		return nil, err
	}
	debts := make(map[uuid.UUID]debtModel.DebtLineItemModel, len(locked))
	for _, d := range locked {
		debts[d.DebtLineItemID] = d
	}

	allocs, err := s.Ledger.AllocatedAmounts(tx, debtIDs, exclude)
	if err != nil {
		return nil, err
	}

	for i, l := range lines {
		if l.DebtLineItemID == nil {
			continue
		}
		id := *l.DebtLineItemID
		d := debts[id]
		if l.ConceptID != uuid.Nil && l.ConceptID != d.DebtLineItemConceptID {
			return nil, apperr.ValidationField("concept_id",
				"line %d: concept does not match the concept of debt line %s", i+1, id)
		}

		sum := requested[id].Add(l.Amount)
		outstanding := debtService.Outstanding(d.DebtLineItemPrincipal, d.DebtLineItemPenalty, allocs[id])
		if sum.GreaterThan(outstanding) {
			return nil, apperr.NewOverpayment(i+1, id, sum, outstanding)
		}
		requested[id] = sum
	}
	return requested, nil
}

// applySettlement flips settled on the debt lines just paid, according to the policy.
func (s *ReconciliationService) applySettlement(tx *gorm.DB, requested map[uuid.UUID]decimal.Decimal) error {
	if len(requested) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}

	if s.Config.Settlement == configs.SettleOnAnyAllocation {
		for _, id := range ids {
			if err := s.Ledger.Settle(tx, id); err != nil {
				return err
			}
		}
		return nil
	}

	var rows []debtModel.DebtLineItemModel
	if err := tx.Where("debt_line_item_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	allocs, err := s.Ledger.AllocatedAmounts(tx, ids, nil)
	if err != nil {
		return err
	}
	for _, d := range rows {
		if d.DebtLineItemSettled {
			continue
		}
		if debtService.IsFullyPaid(d.DebtLineItemPrincipal, d.DebtLineItemPenalty, allocs[d.DebtLineItemID]) {
			if err := s.Ledger.Settle(tx, d.DebtLineItemID); err != nil {
				return err
			}
		}
	}
	return nil
}

/* =========================================================
   Validation helpers
========================================================= */

func validateOperationNumber(op *string) (*string, error) {
	if op == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*op)
	if v == "" {
		return nil, nil
	}
	if !operationNumberRe.MatchString(v) {
		return nil, apperr.ValidationField("operation_number", "operation number %q must be alphanumeric", v)
	}
	return &v, nil
}

func validateAmount(line int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.ValidationField("amount", "line %d: amount must be greater than 0", line)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.ValidationField("amount", "line %d: amount must have at most 2 decimal places", line)
	}
	return nil
}

func validateIncome(in IncomeReceiptInput) (*string, error) {
	op, err := validateOperationNumber(in.OperationNumber)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethodID == uuid.Nil {
		return nil, apperr.ValidationField("payment_method_id", "payment method is required")
	}
	if len(in.Lines) == 0 {
		return nil, apperr.ValidationField("lines", "at least one line is required")
	}
	for i, l := range in.Lines {
		if l.ConceptID == uuid.Nil {
			return nil, apperr.ValidationField("concept_id", "line %d: concept is required", i+1)
		}
		if err := validateAmount(i+1, l.Amount); err != nil {
			return nil, err
		}
		if l.DebtLineItemID != nil && *l.DebtLineItemID == uuid.Nil {
			return nil, apperr.ValidationField("debt_line_item_id", "line %d: invalid debt line reference", i+1)
		}
	}
	return op, nil
}

func validateExpense(in ExpenseReceiptInput) (*string, error) {
	op, err := validateOperationNumber(in.OperationNumber)
	if err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, apperr.ValidationField("lines", "at least one line is required")
	}
	for i, l := range in.Lines {
		if l.ConceptID == uuid.Nil {
			return nil, apperr.ValidationField("concept_id", "line %d: concept is required", i+1)
		}
		if err := validateAmount(i+1, l.Amount); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func editable(header model.ReceiptModel, want model.ReceiptType) error {
	if header.ReceiptType != want {
		return apperr.Validation("receipt %s is an %s receipt", header.ReceiptID, header.ReceiptType)
	}
	if !header.IsActive() {
		return apperr.Validation("receipt %s is void; reactivate it before editing", header.ReceiptID)
	}
	return nil
}

func (s *ReconciliationService) issueDate(t *time.Time) time.Time {
	if t != nil && !t.IsZero() {
		return *t
	}
	return s.Now()
}

func allocationRows(lines []IncomeLineInput) []model.ReceiptAllocationModel {
	out := make([]model.ReceiptAllocationModel, 0, len(lines))
	for i, l := range lines {
		out = append(out, model.ReceiptAllocationModel{
			ReceiptAllocationLineIndex:      i + 1,
			ReceiptAllocationConceptID:      l.ConceptID,
			ReceiptAllocationDebtLineItemID: l.DebtLineItemID,
			ReceiptAllocationAmount:         l.Amount,
			ReceiptAllocationDescription:    trimmed(l.Description),
		})
	}
	return out
}

func expenseRows(lines []ExpenseLineInput) []model.ReceiptExpenseLineModel {
	out := make([]model.ReceiptExpenseLineModel, 0, len(lines))
	for i, l := range lines {
		out = append(out, model.ReceiptExpenseLineModel{
			ReceiptExpenseLineLineIndex:   i + 1,
			ReceiptExpenseLineConceptID:   l.ConceptID,
			ReceiptExpenseLineAmount:      l.Amount,
			ReceiptExpenseLineDescription: trimmed(l.Description),
		})
	}
	return out
}

func expenseConceptIDs(lines []ExpenseLineInput) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ConceptID)
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
