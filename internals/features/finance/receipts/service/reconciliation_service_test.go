package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"standbill_backend/internals/configs"
	conceptModel "standbill_backend/internals/features/finance/concepts/model"
	debtService "standbill_backend/internals/features/finance/debts/service"
	"standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/features/finance/receipts/service"
	seqModel "standbill_backend/internals/features/finance/sequences/model"
	"standbill_backend/internals/helpers/apperr"
	helperAuth "standbill_backend/internals/helpers/auth"
	"standbill_backend/internals/testutil"
)

var cashier = helperAuth.Actor{UserID: uuid.New(), Role: "cashier"}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	db      *gorm.DB
	svc     *service.ReconciliationService
	rent    conceptModel.ConceptModel
	repairs conceptModel.ConceptModel
	stand   uuid.UUID
	method  uuid.UUID
}

func newFixture(t *testing.T, cfg configs.LedgerConfig) fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := fixture{
		db:     db,
		svc:    service.NewReconciliationService(db, cfg),
		stand:  uuid.New(),
		method: uuid.New(),
	}
	f.rent = conceptModel.ConceptModel{ConceptDescription: "Rent", ConceptKind: conceptModel.ConceptKindIncome, ConceptIsDebt: true, ConceptIsActive: true}
	f.repairs = conceptModel.ConceptModel{ConceptDescription: "Repairs", ConceptKind: conceptModel.ConceptKindExpense, ConceptIsActive: true}
	require.NoError(t, db.Create(&f.rent).Error)
	require.NoError(t, db.Create(&f.repairs).Error)
	return f
}

// debt creates one debt line of principal+penalty for the fixture stand.
func (f fixture) debt(t *testing.T, principal, penalty string) uuid.UUID {
	t.Helper()
	_, items, err := f.svc.Ledger.CreateDebtBatch(context.Background(), helperAuth.Actor{UserID: uuid.New(), Role: "admin"}, debtService.CreateBatchInput{
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ConceptID: f.rent.ConceptID,
		Items:     []debtService.CreateBatchItem{{StandID: f.stand, Principal: money(principal), Penalty: money(penalty)}},
	})
	require.NoError(t, err)
	return items[0].DebtLineItemID
}

func (f fixture) income(debtID uuid.UUID, amounts ...string) service.IncomeReceiptInput {
	in := service.IncomeReceiptInput{PaymentMethodID: f.method, StandID: &f.stand}
	for _, a := range amounts {
		id := debtID
		in.Lines = append(in.Lines, service.IncomeLineInput{ConceptID: f.rent.ConceptID, DebtLineItemID: &id, Amount: money(a)})
	}
	return in
}

func (f fixture) view(t *testing.T, id uuid.UUID) debtService.DebtLineView {
	t.Helper()
	v, err := f.svc.Ledger.GetDebtLineItem(context.Background(), id)
	require.NoError(t, err)
	return v
}

func (f fixture) sequence(t *testing.T, name string) int64 {
	t.Helper()
	seq, err := f.svc.Sequences.Get(context.Background(), name)
	require.NoError(t, err)
	return seq.NumberSequenceCurrentValue
}

func TestIncomeReceipt_PartialThenFullPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "20.00")

	first, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "50.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ReceiptNumber)
	assert.Equal(t, model.ReceiptTypeIncome, first.ReceiptType)
	assert.Equal(t, "50.00", first.ReceiptTotal.StringFixed(2))
	require.Len(t, first.Allocations, 1)

	v := f.view(t, debtID)
	assert.Equal(t, "70.00", v.Outstanding.StringFixed(2))
	assert.False(t, v.Item.DebtLineItemSettled)

	second, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "70.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ReceiptNumber)

	v = f.view(t, debtID)
	assert.True(t, v.Outstanding.IsZero())
	assert.True(t, v.Item.DebtLineItemSettled)
	assert.NotNil(t, v.Item.DebtLineItemSettledAt)

	_, err = f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "0.01"))
	var op *apperr.OverpaymentError
	require.True(t, errors.As(err, &op), "got %v", err)
	assert.Equal(t, 1, op.Line)
	assert.Equal(t, debtID, op.DebtLineItemID)
	assert.Equal(t, "0.00", op.Outstanding.StringFixed(2))
	assert.Equal(t, "0.01", op.Requested.StringFixed(2))
}

func TestIncomeReceipt_OverpaymentChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")
	before := f.sequence(t, seqModel.SequenceReceiptIncome)

	_, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "100.01"))
	assert.True(t, errors.Is(err, apperr.ErrOverpayment))

	assert.Equal(t, before, f.sequence(t, seqModel.SequenceReceiptIncome))
	var n int64
	require.NoError(t, f.db.Model(&model.ReceiptModel{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&model.ReceiptAllocationModel{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Equal(t, "100.00", f.view(t, debtID).Outstanding.StringFixed(2))
}

func TestIncomeReceipt_LinesOnSameDebtAreSummed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")

	_, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "60.00", "50.00"))
	var op *apperr.OverpaymentError
	require.True(t, errors.As(err, &op), "got %v", err)
	assert.Equal(t, 2, op.Line)
	assert.Equal(t, "110.00", op.Requested.StringFixed(2))
	assert.Equal(t, "100.00", op.Outstanding.StringFixed(2))

	r, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "60.00", "40.00"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", r.ReceiptTotal.StringFixed(2))
	require.Len(t, r.Allocations, 2)
	assert.Equal(t, 1, r.Allocations[0].ReceiptAllocationLineIndex)
	assert.Equal(t, 2, r.Allocations[1].ReceiptAllocationLineIndex)
	assert.True(t, f.view(t, debtID).Item.DebtLineItemSettled)
}

func TestIncomeReceipt_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")
	bad := "OP-12"
	blank := "   "

	tests := []struct {
		name   string
		mutate func(in *service.IncomeReceiptInput)
		want   error
	}{
		{"zero amount", func(in *service.IncomeReceiptInput) { in.Lines[0].Amount = decimal.Zero }, apperr.ErrValidation},
		{"negative amount", func(in *service.IncomeReceiptInput) { in.Lines[0].Amount = money("-5") }, apperr.ErrValidation},
		{"sub-cent amount", func(in *service.IncomeReceiptInput) { in.Lines[0].Amount = money("1.001") }, apperr.ErrValidation},
		{"operation number with dash", func(in *service.IncomeReceiptInput) { in.OperationNumber = &bad }, apperr.ErrValidation},
		{"no payment method", func(in *service.IncomeReceiptInput) { in.PaymentMethodID = uuid.Nil }, apperr.ErrValidation},
		{"no lines", func(in *service.IncomeReceiptInput) { in.Lines = nil }, apperr.ErrValidation},
		{"expense concept", func(in *service.IncomeReceiptInput) { in.Lines[0].ConceptID = f.repairs.ConceptID }, apperr.ErrValidation},
		{"unknown debt line", func(in *service.IncomeReceiptInput) {
			missing := uuid.New()
			in.Lines[0].DebtLineItemID = &missing
		}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.income(debtID, "10.00")
			tt.mutate(&in)
			_, err := f.svc.CreateIncomeReceipt(ctx, cashier, in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	t.Run("blank operation number is absent", func(t *testing.T) {
		in := f.income(debtID, "10.00")
		in.OperationNumber = &blank
		r, err := f.svc.CreateIncomeReceipt(ctx, cashier, in)
		require.NoError(t, err)
		assert.Nil(t, r.ReceiptOperationNumber)
	})

	t.Run("alphanumeric operation number", func(t *testing.T) {
		op := "TRX20240301A"
		in := f.income(debtID, "10.00")
		in.OperationNumber = &op
		r, err := f.svc.CreateIncomeReceipt(ctx, cashier, in)
		require.NoError(t, err)
		require.NotNil(t, r.ReceiptOperationNumber)
		assert.Equal(t, op, *r.ReceiptOperationNumber)
	})

	t.Run("line without debt reference", func(t *testing.T) {
		in := service.IncomeReceiptInput{
			PaymentMethodID: f.method,
			Lines:           []service.IncomeLineInput{{ConceptID: f.rent.ConceptID, Amount: money("999.99")}},
		}
		r, err := f.svc.CreateIncomeReceipt(ctx, cashier, in)
		require.NoError(t, err)
		assert.Equal(t, "999.99", r.ReceiptTotal.StringFixed(2))
	})
}

func TestUpdateIncomeReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "20.00")

	r, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "50.00"))
	require.NoError(t, err)
	_, err = f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "70.00"))
	require.NoError(t, err)

	t.Run("resubmitting the same amount passes", func(t *testing.T) {
		got, err := f.svc.UpdateIncomeReceipt(ctx, cashier, r.ReceiptID, f.income(debtID, "50.00"))
		require.NoError(t, err)
		assert.Equal(t, r.ReceiptNumber, got.ReceiptNumber)
		assert.Equal(t, "50.00", got.ReceiptTotal.StringFixed(2))
	})

	t.Run("raising it overpays", func(t *testing.T) {
		_, err := f.svc.UpdateIncomeReceipt(ctx, cashier, r.ReceiptID, f.income(debtID, "50.01"))
		var op *apperr.OverpaymentError
		require.True(t, errors.As(err, &op), "got %v", err)
		assert.Equal(t, "50.00", op.Outstanding.StringFixed(2))

		got, err := f.svc.Receipts.GetReceipt(ctx, r.ReceiptID, true)
		require.NoError(t, err)
		require.Len(t, got.Allocations, 1)
		assert.Equal(t, "50.00", got.Allocations[0].ReceiptAllocationAmount.StringFixed(2))
	})

	t.Run("lowering it keeps the debt settled", func(t *testing.T) {
		got, err := f.svc.UpdateIncomeReceipt(ctx, cashier, r.ReceiptID, f.income(debtID, "30.00", "5.00"))
		require.NoError(t, err)
		assert.Equal(t, "35.00", got.ReceiptTotal.StringFixed(2))
		v := f.view(t, debtID)
		assert.Equal(t, "15.00", v.Outstanding.StringFixed(2))
		assert.True(t, v.Item.DebtLineItemSettled)
	})

	t.Run("unknown receipt", func(t *testing.T) {
		_, err := f.svc.UpdateIncomeReceipt(ctx, cashier, uuid.New(), f.income(debtID, "1.00"))
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestSetReceiptActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")

	r, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "100.00"))
	require.NoError(t, err)
	require.True(t, f.view(t, debtID).Item.DebtLineItemSettled)

	voided, err := f.svc.SetReceiptActive(ctx, cashier, r.ReceiptID, false)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptStatusVoid, voided.ReceiptStatus)

	v := f.view(t, debtID)
	assert.Equal(t, "100.00", v.Outstanding.StringFixed(2))
	assert.True(t, v.Item.DebtLineItemSettled, "voiding does not reopen")

	_, err = f.svc.UpdateIncomeReceipt(ctx, cashier, r.ReceiptID, f.income(debtID, "10.00"))
	assert.True(t, errors.Is(err, apperr.ErrValidation), "void receipts are read-only")

	// another payment takes the freed balance
	_, err = f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "60.00"))
	require.NoError(t, err)

	_, err = f.svc.SetReceiptActive(ctx, cashier, r.ReceiptID, true)
	assert.True(t, errors.Is(err, apperr.ErrOverpayment), "got %v", err)

	got, err := f.svc.Receipts.GetReceipt(ctx, r.ReceiptID, false)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptStatusVoid, got.ReceiptStatus)

	again, err := f.svc.SetReceiptActive(ctx, cashier, r.ReceiptID, false)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptStatusVoid, again.ReceiptStatus)
}

func TestSetReceiptActive_ReactivatesWhenBalanceAllows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")

	r, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "40.00"))
	require.NoError(t, err)
	_, err = f.svc.SetReceiptActive(ctx, cashier, r.ReceiptID, false)
	require.NoError(t, err)

	got, err := f.svc.SetReceiptActive(ctx, cashier, r.ReceiptID, true)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptStatusActive, got.ReceiptStatus)
	assert.Equal(t, "60.00", f.view(t, debtID).Outstanding.StringFixed(2))
}

func TestDeleteReceipt_DoesNotReopenDebt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "80.00", "0")

	r, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "80.00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteReceipt(ctx, cashier, r.ReceiptID))

	_, err = f.svc.Receipts.GetReceipt(ctx, r.ReceiptID, false)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	var n int64
	require.NoError(t, f.db.Model(&model.ReceiptAllocationModel{}).Count(&n).Error)
	assert.Zero(t, n)

	v := f.view(t, debtID)
	assert.Equal(t, "80.00", v.Outstanding.StringFixed(2))
	assert.True(t, v.Item.DebtLineItemSettled)

	// numbers are never reused
	next, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "1.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ReceiptNumber)

	assert.True(t, errors.Is(f.svc.DeleteReceipt(ctx, cashier, uuid.New()), apperr.ErrNotFound))
}

func TestExpenseReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	note := "  roof  "

	r, err := f.svc.CreateExpenseReceipt(ctx, cashier, service.ExpenseReceiptInput{
		Lines: []service.ExpenseLineInput{
			{ConceptID: f.repairs.ConceptID, Amount: money("12.50"), Description: &note},
			{ConceptID: f.repairs.ConceptID, Amount: money("7.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptTypeExpense, r.ReceiptType)
	assert.Equal(t, int64(1), r.ReceiptNumber)
	assert.Equal(t, "19.75", r.ReceiptTotal.StringFixed(2))
	require.Len(t, r.ExpenseLines, 2)
	assert.Equal(t, "roof", *r.ExpenseLines[0].ReceiptExpenseLineDescription)

	assert.Equal(t, int64(1), f.sequence(t, seqModel.SequenceReceiptExpense))
	assert.Equal(t, int64(0), f.sequence(t, seqModel.SequenceReceiptIncome))

	updated, err := f.svc.UpdateExpenseReceipt(ctx, cashier, r.ReceiptID, service.ExpenseReceiptInput{
		Lines: []service.ExpenseLineInput{{ConceptID: f.repairs.ConceptID, Amount: money("3.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.00", updated.ReceiptTotal.StringFixed(2))
	assert.Len(t, updated.ExpenseLines, 1)
	assert.Equal(t, r.ReceiptNumber, updated.ReceiptNumber)

	_, err = f.svc.CreateExpenseReceipt(ctx, cashier, service.ExpenseReceiptInput{
		Lines: []service.ExpenseLineInput{{ConceptID: f.rent.ConceptID, Amount: money("1.00")}},
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "income concept on expense receipt")

	_, err = f.svc.UpdateIncomeReceipt(ctx, cashier, r.ReceiptID, service.IncomeReceiptInput{
		PaymentMethodID: f.method,
		Lines:           []service.IncomeLineInput{{ConceptID: f.rent.ConceptID, Amount: money("1.00")}},
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "type mismatch")
}

func TestLegacySettlementPolicy(t *testing.T) {
	ctx := context.Background()
	cfg := configs.DefaultLedgerConfig()
	cfg.Settlement = configs.SettleOnAnyAllocation
	f := newFixture(t, cfg)
	debtID := f.debt(t, "100.00", "0")

	_, err := f.svc.CreateIncomeReceipt(ctx, cashier, f.income(debtID, "1.00"))
	require.NoError(t, err)

	v := f.view(t, debtID)
	assert.True(t, v.Item.DebtLineItemSettled)
	assert.Equal(t, "99.00", v.Outstanding.StringFixed(2))
}

func TestIncomeReceipt_ConceptMustMatchDebtLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configs.DefaultLedgerConfig())
	debtID := f.debt(t, "100.00", "0")

	water := conceptModel.ConceptModel{ConceptDescription: "Water", ConceptKind: conceptModel.ConceptKindIncome, ConceptIsActive: true}
	require.NoError(t, f.db.Create(&water).Error)

	in := f.income(debtID, "10.00")
	in.Lines[0].ConceptID = water.ConceptID
	_, err := f.svc.CreateIncomeReceipt(ctx, cashier, in)
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}
