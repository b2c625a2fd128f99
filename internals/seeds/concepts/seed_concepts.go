package concepts

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"standbill_backend/internals/features/finance/concepts/model"
	"standbill_backend/internals/helpers/logger"
)

type ConceptSeed struct {
	ConceptDescription string `json:"concept_description"`
	ConceptKind        string `json:"concept_kind"`
	ConceptIsDebt      bool   `json:"concept_is_debt"`
}

// SeedConceptsFromJSON inserts the catalog entries that are not there yet
// (matched by description and kind) and returns how many were created.
func SeedConceptsFromJSON(db *gorm.DB, filePath string) (int, error) {
	log := logger.WithComponent("seed")
	log.Info().Str("file", filePath).Msg("📥 reading concepts")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var seeds []ConceptSeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}

	created := 0
	for i, s := range seeds {
		desc := strings.TrimSpace(s.ConceptDescription)
		kind, ok := model.ParseConceptKind(s.ConceptKind)
		if desc == "" || !ok {
			return created, fmt.Errorf("entry %d: description and a valid kind are required", i+1)
		}
		if s.ConceptIsDebt && kind != model.ConceptKindIncome {
			return created, fmt.Errorf("entry %d: only income concepts can carry debt", i+1)
		}

		var n int64
		if err := db.Model(&model.ConceptModel{}).
			Where("concept_description = ? AND concept_kind = ?", desc, kind).
			Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			log.Debug().Str("concept", desc).Msg("ℹ️ already exists, skipping")
			continue
		}

		row := model.ConceptModel{
			ConceptDescription: desc,
			ConceptKind:        kind,
			ConceptIsDebt:      s.ConceptIsDebt,
			ConceptIsActive:    true,
		}
		if err := db.Create(&row).Error; err != nil {
			return created, err
		}
		created++
	}

	log.Info().Int("created", created).Int("total", len(seeds)).Msg("✅ concepts seeded")
	return created, nil
}
