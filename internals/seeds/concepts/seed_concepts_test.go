package concepts_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standbill_backend/internals/features/finance/concepts/model"
	"standbill_backend/internals/seeds/concepts"
	"standbill_backend/internals/testutil"
)

func TestSeedConceptsFromJSON(t *testing.T) {
	db := testutil.NewTestDB(t)

	n, err := concepts.SeedConceptsFromJSON(db, "data_concepts.json")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	// second run is a no-op
	n, err = concepts.SeedConceptsFromJSON(db, "data_concepts.json")
	require.NoError(t, err)
	assert.Zero(t, n)

	var debt int64
	require.NoError(t, db.Model(&model.ConceptModel{}).Where("concept_is_debt = ?", true).Count(&debt).Error)
	assert.Equal(t, int64(4), debt)
}

func TestSeedConceptsFromJSON_RejectsExpenseDebt(t *testing.T) {
	db := testutil.NewTestDB(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"concept_description":"x","concept_kind":"expense","concept_is_debt":true}]`), 0o600))

	_, err := concepts.SeedConceptsFromJSON(db, path)
	assert.Error(t, err)
}
