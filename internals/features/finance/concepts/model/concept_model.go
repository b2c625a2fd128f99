// file: internals/features/finance/concepts/model/concept_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Enums
   ========================= */

type ConceptKind string

const (
	ConceptKindIncome  ConceptKind = "income"
	ConceptKindExpense ConceptKind = "expense"
)

func (k ConceptKind) Valid() bool {
	return k == ConceptKindIncome || k == ConceptKindExpense
}

func ParseConceptKind(s string) (ConceptKind, bool) {
	k := ConceptKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

/* =========================
   Model
   ========================= */

type ConceptModel struct {
	ConceptID uuid.UUID `json:"concept_id" gorm:"column:concept_id;type:uuid;primaryKey"`

	ConceptDescription string      `json:"concept_description" gorm:"column:concept_description;type:varchar(200);not null"`
	ConceptKind        ConceptKind `json:"concept_kind" gorm:"column:concept_kind;type:varchar(10);not null;index:idx_concepts_kind_active,priority:1"`

	// concept yang menghasilkan debt line (sewa, listrik, ...)
	ConceptIsDebt   bool `json:"concept_is_debt" gorm:"column:concept_is_debt;not null"`
	ConceptIsActive bool `json:"concept_is_active" gorm:"column:concept_is_active;not null;index:idx_concepts_kind_active,priority:2"`

	ConceptCreatedAt time.Time `json:"concept_created_at" gorm:"column:concept_created_at;autoCreateTime"`
	ConceptUpdatedAt time.Time `json:"concept_updated_at" gorm:"column:concept_updated_at;autoUpdateTime"`
}

func (ConceptModel) TableName() string { return "concepts" }

func (m *ConceptModel) BeforeCreate(tx *gorm.DB) error {
	if m.ConceptID == uuid.Nil {
		m.ConceptID = uuid.New()
	}
	return nil
}
