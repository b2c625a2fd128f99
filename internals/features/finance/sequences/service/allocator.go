// file: internals/features/finance/sequences/service/allocator.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"standbill_backend/internals/features/finance/sequences/model"
	"standbill_backend/internals/helpers/apperr"
)

type Allocator struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{DB: db, Now: time.Now}
}

func lockSequence(tx *gorm.DB, name string) (model.NumberSequenceModel, error) {
	var seq model.NumberSequenceModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("number_sequence_name = ?", name).
		Take(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return seq, apperr.SequenceNotFound(name)
	}
	return seq, err
}

// Allocate hands out the next number of the named series. It must run inside the
// caller's transaction so a rollback also rolls the counter back.
func (a *Allocator) Allocate(tx *gorm.DB, name string) (int64, error) {
	seq, err := lockSequence(tx, name)
	if err != nil {
		return 0, err
	}

	next := seq.Next()
	res := tx.Model(&model.NumberSequenceModel{}).
		Where("number_sequence_name = ? AND number_sequence_current_value = ?", name, seq.NumberSequenceCurrentValue).
		Updates(map[string]any{
			"number_sequence_current_value": next,
			"number_sequence_updated_at":    a.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, apperr.Conflict("sequence %q moved past %d", name, seq.NumberSequenceCurrentValue)
	}
	return next, nil
}

/* =========================================================
   Maintenance
========================================================= */

func (a *Allocator) List(ctx context.Context) ([]model.NumberSequenceModel, error) {
	var rows []model.NumberSequenceModel
	if err := a.DB.WithContext(ctx).Order("number_sequence_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *Allocator) Get(ctx context.Context, name string) (model.NumberSequenceModel, error) {
	var seq model.NumberSequenceModel
	err := a.DB.WithContext(ctx).Where("number_sequence_name = ?", name).Take(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return seq, apperr.SequenceNotFound(name)
	}
	return seq, err
}

// Configure creates the series or moves its starting point. A used series may
// only move forward, so no number is ever handed out twice.
func (a *Allocator) Configure(ctx context.Context, name string, startFrom int64) (model.NumberSequenceModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NumberSequenceModel{}, apperr.ValidationField("name", "sequence name is required")
	}
	if startFrom < 1 {
		return model.NumberSequenceModel{}, apperr.ValidationField("start_from", "start_from must be >= 1")
	}

	var out model.NumberSequenceModel
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := lockSequence(tx, name)
		if errors.Is(err, apperr.ErrSequenceNotFound) {
			out = model.NumberSequenceModel{
				NumberSequenceName:      name,
				NumberSequenceStartFrom: startFrom,
				NumberSequenceUpdatedAt: a.Now(),
			}
			return tx.Create(&out).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]any{
			"number_sequence_start_from": startFrom,
			"number_sequence_updated_at": a.Now(),
		}
		switch {
		case seq.NumberSequenceCurrentValue == 0:
		case startFrom > seq.NumberSequenceCurrentValue:
			updates["number_sequence_current_value"] = startFrom - 1
		default:
			return apperr.ValidationField("start_from",
				"start_from %d would reuse numbers already issued (current %d)", startFrom, seq.NumberSequenceCurrentValue)
		}

		if err := tx.Model(&model.NumberSequenceModel{}).
			Where("number_sequence_name = ?", name).
			Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("number_sequence_name = ?", name).Take(&out).Error
	})
	return out, err
}
