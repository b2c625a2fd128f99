package seeds

import (
	"path/filepath"

	"gorm.io/gorm"

	database "standbill_backend/internals/databases"
	"standbill_backend/internals/seeds/concepts"
)

// RunAllSeeds seeds the receipt sequences and the concept catalog found under dir.
func RunAllSeeds(db *gorm.DB, dir string) error {
	//* Sequences
	if err := database.SeedSequences(db); err != nil {
		return err
	}

	//* Concepts
	if _, err := concepts.SeedConceptsFromJSON(db, filepath.Join(dir, "concepts", "data_concepts.json")); err != nil {
		return err
	}
	return nil
}
