// file: internals/features/finance/concepts/service/concept_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"standbill_backend/internals/features/finance/concepts/model"
	debtModel "standbill_backend/internals/features/finance/debts/model"
	receiptModel "standbill_backend/internals/features/finance/receipts/model"
	"standbill_backend/internals/helpers/apperr"
)

type ConceptService struct {
	DB *gorm.DB
}

func NewConceptService(db *gorm.DB) *ConceptService {
	return &ConceptService{DB: db}
}

type CreateInput struct {
	Description string
	Kind        model.ConceptKind
	IsDebt      bool
	IsActive    bool
}

type UpdateInput struct {
	Description *string
	IsActive    *bool
	Kind        *model.ConceptKind
	IsDebt      *bool
}

type ListFilter struct {
	Kind       *model.ConceptKind
	OnlyActive bool
	Limit      int
	Offset     int
}

func (s *ConceptService) Create(ctx context.Context, in CreateInput) (model.ConceptModel, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return model.ConceptModel{}, apperr.ValidationField("description", "description is required")
	}
	if !in.Kind.Valid() {
		return model.ConceptModel{}, apperr.ValidationField("kind", "kind must be income or expense")
	}
	if in.IsDebt && in.Kind != model.ConceptKindIncome {
		return model.ConceptModel{}, apperr.ValidationField("is_debt", "only income concepts can carry debt")
	}

	m := model.ConceptModel{
		ConceptDescription: desc,
		ConceptKind:        in.Kind,
		ConceptIsDebt:      in.IsDebt,
		ConceptIsActive:    in.IsActive,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return model.ConceptModel{}, apperr.FromDB("create concept", err)
	}
	return m, nil
}

func (s *ConceptService) Get(ctx context.Context, id uuid.UUID) (model.ConceptModel, error) {
	var m model.ConceptModel
	err := s.DB.WithContext(ctx).Where("concept_id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, apperr.NotFound("concept", id)
	}
	if err != nil {
		return m, apperr.FromDB("get concept", err)
	}
	return m, nil
}

func (s *ConceptService) List(ctx context.Context, f ListFilter) ([]model.ConceptModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.ConceptModel{})
	if f.Kind != nil {
		q = q.Where("concept_kind = ?", *f.Kind)
	}
	if f.OnlyActive {
		q = q.Where("concept_is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB("count concepts", err)
	}

	var rows []model.ConceptModel
	q = q.Order("concept_description ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, apperr.FromDB("list concepts", err)
	}
	return rows, total, nil
}

// Update applies a patch. Kind and is_debt are frozen once any ledger row uses the concept.
func (s *ConceptService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (model.ConceptModel, error) {
	var out model.ConceptModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("concept_id = ?", id).Take(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("concept", id)
			}
			return err
		}

		kindChanged := in.Kind != nil && *in.Kind != out.ConceptKind
		debtChanged := in.IsDebt != nil && *in.IsDebt != out.ConceptIsDebt
		if kindChanged || debtChanged {
			used, err := IsReferenced(tx, id)
			if err != nil {
				return err
			}
			if used {
				return apperr.Validation("concept %s is already used; only description and active flag may change", id)
			}
		}

		if in.Description != nil {
			desc := strings.TrimSpace(*in.Description)
			if desc == "" {
				return apperr.ValidationField("description", "description cannot be empty")
			}
			out.ConceptDescription = desc
		}
		if in.IsActive != nil {
			out.ConceptIsActive = *in.IsActive
		}
		if in.Kind != nil {
			if !in.Kind.Valid() {
				return apperr.ValidationField("kind", "kind must be income or expense")
			}
			out.ConceptKind = *in.Kind
		}
		if in.IsDebt != nil {
			out.ConceptIsDebt = *in.IsDebt
		}
		if out.ConceptIsDebt && out.ConceptKind != model.ConceptKindIncome {
			return apperr.ValidationField("is_debt", "only income concepts can carry debt")
		}

		return tx.Save(&out).Error
	})
	if err != nil {
		return model.ConceptModel{}, apperr.FromDB("update concept", err)
	}
	return out, nil
}

// IsReferenced reports whether a debt or receipt row points at the concept.
func IsReferenced(tx *gorm.DB, id uuid.UUID) (bool, error) {
	checks := []struct {
		model  any
		column string
	}{
		{&debtModel.DebtBatchModel{}, "debt_batch_concept_id"},
		{&debtModel.DebtLineItemModel{}, "debt_line_item_concept_id"},
		{&receiptModel.ReceiptAllocationModel{}, "receipt_allocation_concept_id"},
		{&receiptModel.ReceiptExpenseLineModel{}, "receipt_expense_line_concept_id"},
	}
	for _, c := range checks {
		var n int64
		if err := tx.Model(c.model).Where(c.column+" = ?", id).Limit(1).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// LoadActive loads the referenced concepts and checks they are active and of the given kind.
func LoadActive(tx *gorm.DB, ids []uuid.UUID, kind model.ConceptKind) (map[uuid.UUID]model.ConceptModel, error) {
	out := make(map[uuid.UUID]model.ConceptModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []model.ConceptModel
	if err := tx.Where("concept_id IN ?", uniqueIDs(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ConceptID] = r
	}

	for _, id := range ids {
		c, ok := out[id]
		if !ok {
			return nil, apperr.NotFound("concept", id)
		}
		if !c.ConceptIsActive {
			return nil, apperr.ValidationField("concept_id", "concept %s is inactive", id)
		}
		if c.ConceptKind != kind {
			return nil, apperr.ValidationField("concept_id", "concept %s is not an %s concept", id, kind)
		}
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
