// file: internals/features/finance/concepts/dto/concept_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"standbill_backend/internals/features/finance/concepts/model"
	"standbill_backend/internals/features/finance/concepts/service"
)

/* =========================
   Requests
   ========================= */

type CreateConceptRequest struct {
	ConceptDescription string `json:"concept_description" validate:"required,max=200"`
	ConceptKind        string `json:"concept_kind" validate:"required,oneof=income expense"`
	ConceptIsDebt      bool   `json:"concept_is_debt"`
	// default true kalau tidak dikirim
	ConceptIsActive *bool `json:"concept_is_active,omitempty"`
}

func (r CreateConceptRequest) ToInput() service.CreateInput {
	active := true
	if r.ConceptIsActive != nil {
		active = *r.ConceptIsActive
	}
	return service.CreateInput{
		Description: r.ConceptDescription,
		Kind:        model.ConceptKind(r.ConceptKind),
		IsDebt:      r.ConceptIsDebt,
		IsActive:    active,
	}
}

// PATCH: hanya field yang dikirim yang diubah
type UpdateConceptRequest struct {
	ConceptDescription *string `json:"concept_description,omitempty" validate:"omitempty,max=200"`
	ConceptKind        *string `json:"concept_kind,omitempty" validate:"omitempty,oneof=income expense"`
	ConceptIsDebt      *bool   `json:"concept_is_debt,omitempty"`
	ConceptIsActive    *bool   `json:"concept_is_active,omitempty"`
}

func (r UpdateConceptRequest) ToInput() service.UpdateInput {
	in := service.UpdateInput{
		Description: r.ConceptDescription,
		IsDebt:      r.ConceptIsDebt,
		IsActive:    r.ConceptIsActive,
	}
	if r.ConceptKind != nil {
		k := model.ConceptKind(*r.ConceptKind)
		in.Kind = &k
	}
	return in
}

/* =========================
   Response
   ========================= */

type ConceptResponse struct {
	ConceptID          uuid.UUID `json:"concept_id"`
	ConceptDescription string    `json:"concept_description"`
	ConceptKind        string    `json:"concept_kind"`
	ConceptIsDebt      bool      `json:"concept_is_debt"`
	ConceptIsActive    bool      `json:"concept_is_active"`
	ConceptCreatedAt   time.Time `json:"concept_created_at"`
	ConceptUpdatedAt   time.Time `json:"concept_updated_at"`
}

func FromModel(m model.ConceptModel) ConceptResponse {
	return ConceptResponse{
		ConceptID:          m.ConceptID,
		ConceptDescription: m.ConceptDescription,
		ConceptKind:        string(m.ConceptKind),
		ConceptIsDebt:      m.ConceptIsDebt,
		ConceptIsActive:    m.ConceptIsActive,
		ConceptCreatedAt:   m.ConceptCreatedAt,
		ConceptUpdatedAt:   m.ConceptUpdatedAt,
	}
}

func FromModels(rows []model.ConceptModel) []ConceptResponse {
	out := make([]ConceptResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
