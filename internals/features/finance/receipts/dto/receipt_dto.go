// File: internals/features/finance/receipts/dto/receipt_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/features/finance/receipts/service"
)

////////////////////////////////////////////////////////////////////////////////
// REQUESTS
////////////////////////////////////////////////////////////////////////////////

type IncomeLineRequest struct {
	ConceptID      uuid.UUID       `json:"concept_id" validate:"required"`
	DebtLineItemID *uuid.UUID      `json:"debt_line_item_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Dipakai untuk create (POST) maupun replace (PUT): line set selalu dikirim utuh.
type IncomeReceiptRequest struct {
	ReceiptPaymentMethodID uuid.UUID           `json:"receipt_payment_method_id" validate:"required"`
	ReceiptStandID         *uuid.UUID          `json:"receipt_stand_id,omitempty"`
	ReceiptOperationNumber *string             `json:"receipt_operation_number,omitempty" validate:"omitempty,max=60"`
	ReceiptEntityID        *uuid.UUID          `json:"receipt_entity_id,omitempty"`
	ReceiptIssueDate       *time.Time          `json:"receipt_issue_date,omitempty"`
	Lines                  []IncomeLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r IncomeReceiptRequest) ToInput() service.IncomeReceiptInput {
	in := service.IncomeReceiptInput{
		PaymentMethodID: r.ReceiptPaymentMethodID,
		StandID:         r.ReceiptStandID,
		OperationNumber: r.ReceiptOperationNumber,
		EntityID:        r.ReceiptEntityID,
		IssueDate:       r.ReceiptIssueDate,
		Lines:           make([]service.IncomeLineInput, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, service.IncomeLineInput{
			ConceptID:      l.ConceptID,
			DebtLineItemID: l.DebtLineItemID,
			Amount:         l.Amount,
			Description:    l.Description,
		})
	}
	return in
}

type ExpenseLineRequest struct {
	ConceptID   uuid.UUID       `json:"concept_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=500"`
}

type ExpenseReceiptRequest struct {
	ReceiptStandID         *uuid.UUID           `json:"receipt_stand_id,omitempty"`
	ReceiptOperationNumber *string              `json:"receipt_operation_number,omitempty" validate:"omitempty,max=60"`
	ReceiptEntityID        *uuid.UUID           `json:"receipt_entity_id,omitempty"`
	ReceiptIssueDate       *time.Time           `json:"receipt_issue_date,omitempty"`
	Lines                  []ExpenseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r ExpenseReceiptRequest) ToInput() service.ExpenseReceiptInput {
	in := service.ExpenseReceiptInput{
		StandID:         r.ReceiptStandID,
		OperationNumber: r.ReceiptOperationNumber,
		EntityID:        r.ReceiptEntityID,
		IssueDate:       r.ReceiptIssueDate,
		Lines:           make([]service.ExpenseLineInput, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, service.ExpenseLineInput{
			ConceptID:   l.ConceptID,
			Amount:      l.Amount,
			Description: l.Description,
		})
	}
	return in
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSES
////////////////////////////////////////////////////////////////////////////////

type ReceiptLineResponse struct {
	LineIndex      int        `json:"line_index"`
	ConceptID      uuid.UUID  `json:"concept_id"`
	DebtLineItemID *uuid.UUID `json:"debt_line_item_id,omitempty"`
	Amount         string     `json:"amount"`
	Description    *string    `json:"description,omitempty"`
}

type ReceiptResponse struct {
	ReceiptID              uuid.UUID  `json:"receipt_id"`
	ReceiptType            string     `json:"receipt_type"`
	ReceiptNumber          int64      `json:"receipt_number"`
	ReceiptIssueDate       time.Time  `json:"receipt_issue_date"`
	ReceiptPaymentMethodID *uuid.UUID `json:"receipt_payment_method_id,omitempty"`
	ReceiptStandID         *uuid.UUID `json:"receipt_stand_id,omitempty"`
	ReceiptOperationNumber *string    `json:"receipt_operation_number,omitempty"`
	ReceiptEntityID        *uuid.UUID `json:"receipt_entity_id,omitempty"`
	ReceiptTotal           string     `json:"receipt_total"`
	ReceiptStatus          string     `json:"receipt_status"`
	ReceiptCreatedBy       *uuid.UUID `json:"receipt_created_by,omitempty"`
	ReceiptUpdatedBy       *uuid.UUID `json:"receipt_updated_by,omitempty"`
	ReceiptCreatedAt       time.Time  `json:"receipt_created_at"`
	ReceiptUpdatedAt       time.Time  `json:"receipt_updated_at"`

	Lines []ReceiptLineResponse `json:"lines,omitempty"`
}

func ToReceiptResponse(m model.ReceiptModel) ReceiptResponse {
	out := ReceiptResponse{
		ReceiptID:              m.ReceiptID,
		ReceiptType:            string(m.ReceiptType),
		ReceiptNumber:          m.ReceiptNumber,
		ReceiptIssueDate:       m.ReceiptIssueDate,
		ReceiptPaymentMethodID: m.ReceiptPaymentMethodID,
		ReceiptStandID:         m.ReceiptStandID,
		ReceiptOperationNumber: m.ReceiptOperationNumber,
		ReceiptEntityID:        m.ReceiptEntityID,
		ReceiptTotal:           m.ReceiptTotal.StringFixed(2),
		ReceiptStatus:          string(m.ReceiptStatus),
		ReceiptCreatedBy:       m.ReceiptCreatedBy,
		ReceiptUpdatedBy:       m.ReceiptUpdatedBy,
		ReceiptCreatedAt:       m.ReceiptCreatedAt,
		ReceiptUpdatedAt:       m.ReceiptUpdatedAt,
	}
	for _, a := range m.Allocations {
		out.Lines = append(out.Lines, ReceiptLineResponse{
			LineIndex:      a.ReceiptAllocationLineIndex,
			ConceptID:      a.ReceiptAllocationConceptID,
			DebtLineItemID: a.ReceiptAllocationDebtLineItemID,
			Amount:         a.ReceiptAllocationAmount.StringFixed(2),
			Description:    a.ReceiptAllocationDescription,
		})
	}
	for _, e := range m.ExpenseLines {
		out.Lines = append(out.Lines, ReceiptLineResponse{
			LineIndex:   e.ReceiptExpenseLineLineIndex,
			ConceptID:   e.ReceiptExpenseLineConceptID,
			Amount:      e.ReceiptExpenseLineAmount.StringFixed(2),
			Description: e.ReceiptExpenseLineDescription,
		})
	}
	return out
}

func ToReceiptResponses(rows []model.ReceiptModel) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToReceiptResponse(r))
	}
	return out
}
