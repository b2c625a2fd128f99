// File: internals/features/finance/debts/dto/debt_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"standbill_backend/internals/features/finance/debts/model"
	"standbill_backend/internals/features/finance/debts/service"
)

////////////////////////////////////////////////////////////////////////////////
// DEBT BATCH
////////////////////////////////////////////////////////////////////////////////

// Amount dikirim sebagai string ("120.00") atau number; disimpan 2 desimal.
type CreateDebtBatchItemRequest struct {
	StandID        uuid.UUID       `json:"stand_id" validate:"required"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Principal      decimal.Decimal `json:"principal"`
	Penalty        decimal.Decimal `json:"penalty"`
	ActiveTenantID *uuid.UUID      `json:"active_tenant_id,omitempty"`
}

type CreateDebtBatchRequest struct {
	DebtBatchDate      *time.Time                   `json:"debt_batch_date,omitempty"`
	DebtBatchConceptID uuid.UUID                    `json:"debt_batch_concept_id" validate:"required"`
	DebtBatchNote      *string                      `json:"debt_batch_note,omitempty" validate:"omitempty,max=500"`
	Items              []CreateDebtBatchItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r CreateDebtBatchRequest) ToInput(now time.Time) service.CreateBatchInput {
	in := service.CreateBatchInput{
		Date:      now,
		ConceptID: r.DebtBatchConceptID,
		Note:      r.DebtBatchNote,
		Items:     make([]service.CreateBatchItem, 0, len(r.Items)),
	}
	if r.DebtBatchDate != nil && !r.DebtBatchDate.IsZero() {
		in.Date = *r.DebtBatchDate
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, service.CreateBatchItem{
			StandID:        it.StandID,
			DueDate:        it.DueDate,
			Principal:      it.Principal,
			Penalty:        it.Penalty,
			ActiveTenantID: it.ActiveTenantID,
		})
	}
	return in
}

type DebtBatchResponse struct {
	DebtBatchID        uuid.UUID  `json:"debt_batch_id"`
	DebtBatchDate      time.Time  `json:"debt_batch_date"`
	DebtBatchConceptID uuid.UUID  `json:"debt_batch_concept_id"`
	DebtBatchTotal     string     `json:"debt_batch_total"`
	DebtBatchNote      *string    `json:"debt_batch_note,omitempty"`
	DebtBatchCreatedBy *uuid.UUID `json:"debt_batch_created_by,omitempty"`
	DebtBatchCreatedAt time.Time  `json:"debt_batch_created_at"`

	Items []DebtLineResponse `json:"items,omitempty"`
}

func ToDebtBatchResponse(m model.DebtBatchModel, items []DebtLineResponse) DebtBatchResponse {
	return DebtBatchResponse{
		DebtBatchID:        m.DebtBatchID,
		DebtBatchDate:      m.DebtBatchDate,
		DebtBatchConceptID: m.DebtBatchConceptID,
		DebtBatchTotal:     m.DebtBatchTotal.StringFixed(2),
		DebtBatchNote:      m.DebtBatchNote,
		DebtBatchCreatedBy: m.DebtBatchCreatedBy,
		DebtBatchCreatedAt: m.DebtBatchCreatedAt,
		Items:              items,
	}
}

func ToDebtBatchResponses(rows []model.DebtBatchModel) []DebtBatchResponse {
	out := make([]DebtBatchResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToDebtBatchResponse(r, nil))
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// DEBT LINE
////////////////////////////////////////////////////////////////////////////////

type DebtLineResponse struct {
	DebtLineItemID             uuid.UUID  `json:"debt_line_item_id"`
	DebtLineItemBatchID        uuid.UUID  `json:"debt_line_item_batch_id"`
	DebtLineItemStandID        uuid.UUID  `json:"debt_line_item_stand_id"`
	DebtLineItemConceptID      uuid.UUID  `json:"debt_line_item_concept_id"`
	DebtLineItemDueDate        time.Time  `json:"debt_line_item_due_date"`
	DebtLineItemPrincipal      string     `json:"debt_line_item_principal"`
	DebtLineItemPenalty        string     `json:"debt_line_item_penalty"`
	DebtLineItemActiveTenantID *uuid.UUID `json:"debt_line_item_active_tenant_id,omitempty"`
	DebtLineItemSettled        bool       `json:"debt_line_item_settled"`
	DebtLineItemSettledAt      *time.Time `json:"debt_line_item_settled_at,omitempty"`

	// dihitung saat dibaca, tidak disimpan
	Due         string `json:"due"`
	Allocated   string `json:"allocated"`
	Outstanding string `json:"outstanding"`
}

func ToDebtLineResponse(v service.DebtLineView) DebtLineResponse {
	it := v.Item
	return DebtLineResponse{
		DebtLineItemID:             it.DebtLineItemID,
		DebtLineItemBatchID:        it.DebtLineItemBatchID,
		DebtLineItemStandID:        it.DebtLineItemStandID,
		DebtLineItemConceptID:      it.DebtLineItemConceptID,
		DebtLineItemDueDate:        it.DebtLineItemDueDate,
		DebtLineItemPrincipal:      it.DebtLineItemPrincipal.StringFixed(2),
		DebtLineItemPenalty:        it.DebtLineItemPenalty.StringFixed(2),
		DebtLineItemActiveTenantID: it.DebtLineItemActiveTenantID,
		DebtLineItemSettled:        it.DebtLineItemSettled,
		DebtLineItemSettledAt:      it.DebtLineItemSettledAt,
		Due:                        it.Due().StringFixed(2),
		Allocated:                  v.Allocated.StringFixed(2),
		Outstanding:                v.Outstanding.StringFixed(2),
	}
}

func ToDebtLineResponses(views []service.DebtLineView) []DebtLineResponse {
	out := make([]DebtLineResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToDebtLineResponse(v))
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
// CORRECTION
////////////////////////////////////////////////////////////////////////////////

type CorrectDebtLineRequest struct {
	Principal      *decimal.Decimal `json:"principal,omitempty"`
	Penalty        *decimal.Decimal `json:"penalty,omitempty"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	ActiveTenantID *uuid.UUID       `json:"active_tenant_id,omitempty"`
	Settled        *bool            `json:"settled,omitempty"`
	Reason         string           `json:"reason" validate:"required,max=500"`
}

func (r CorrectDebtLineRequest) ToInput() service.CorrectionInput {
	return service.CorrectionInput{
		Principal:      r.Principal,
		Penalty:        r.Penalty,
		DueDate:        r.DueDate,
		ActiveTenantID: r.ActiveTenantID,
		Settled:        r.Settled,
		Reason:         r.Reason,
	}
}
