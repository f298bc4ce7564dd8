package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

func makeEntities(n int) []model.Entity {
	out := make([]model.Entity, n)
	for i := range out {
		out[i] = model.Entity{
			UniqueID:    string(rune('a'+i%26)) + "-id",
			Name:        "Entity",
			Role:        model.RoleCompany,
			CountryName: "France",
		}
	}
	// Make IDs actually unique.
	for i := range out {
		out[i].UniqueID = out[i].UniqueID + string(rune('0'+i/26))
	}
	return out
}

func TestRunEmptySnapshotIsStructural(t *testing.T) {
	_, err := Run(&model.Snapshot{}, DefaultExpectations())
	require.Error(t, err)
	assert.True(t, model.IsStructural(err))
}

func TestRunCountsDuplicates(t *testing.T) {
	entities := []model.Entity{
		{UniqueID: "c-001", Name: "A", Role: model.RoleCompany},
		{UniqueID: "c-001", Name: "A again", Role: model.RoleCompany},
		{UniqueID: "c-002", Name: "B", Role: model.RoleCompany},
	}

	rep, err := Run(&model.Snapshot{Total: 3, Entities: entities}, Expectations{Tolerance: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.DuplicateIDs)
	assert.False(t, rep.Passed())
}

func TestRunCountsInvalidPatentCounts(t *testing.T) {
	entities := []model.Entity{
		{UniqueID: "c-001", Name: "A", Role: model.RoleCompany, TotalPatents: 3, TotalGrantedPatents: 5},
		{UniqueID: "c-002", Name: "B", Role: model.RoleCompany, TotalPatents: 5, TotalGrantedPatents: 3},
	}

	rep, err := Run(&model.Snapshot{Total: 2, Entities: entities}, Expectations{Tolerance: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.InvalidPatentCounts)
	require.NotEmpty(t, rep.Warnings)
}

func TestRunCoverageWarningIsNonFatal(t *testing.T) {
	// No entity has a tagline; expectation says 83% should.
	entities := makeEntities(10)
	exp := Expectations{
		Coverage:  map[string]float64{"tagline": 0.83, "unique_ID": 1.0},
		Tolerance: 0.05,
	}

	rep, err := Run(&model.Snapshot{Total: 10, Entities: entities}, exp)
	require.NoError(t, err)

	assert.True(t, rep.Complete)
	assert.Zero(t, rep.DuplicateIDs)
	assert.False(t, rep.Passed())

	var taglineWarned bool
	for _, fc := range rep.Fields {
		if fc.Field == "tagline" {
			taglineWarned = fc.Warning
		}
	}
	assert.True(t, taglineWarned)
}

func TestRunWithinToleranceNoWarning(t *testing.T) {
	entities := makeEntities(100)
	for i := 0; i < 80; i++ {
		entities[i].Tagline = "does a thing"
	}
	exp := Expectations{
		Coverage:  map[string]float64{"tagline": 0.83},
		Tolerance: 0.05,
	}

	rep, err := Run(&model.Snapshot{Total: 100, Entities: entities}, exp)
	require.NoError(t, err)
	assert.Empty(t, rep.Warnings)
	assert.True(t, rep.Passed())
}

func TestRunIncompleteSnapshot(t *testing.T) {
	rep, err := Run(&model.Snapshot{Total: 10, Entities: makeEntities(7)}, Expectations{Tolerance: 0.05})
	require.NoError(t, err)
	assert.False(t, rep.Complete)
	assert.False(t, rep.Passed())
}

func TestLoadExpectations(t *testing.T) {
	exp, err := LoadExpectations("")
	require.NoError(t, err)
	assert.InDelta(t, 0.83, exp.Coverage["tagline"], 0.001)
	assert.InDelta(t, 0.05, exp.Tolerance, 0.001)

	path := filepath.Join(t.TempDir(), "expectations.yaml")
	require.NoError(t, os.WriteFile(path, []byte("coverage:\n  tagline: 0.5\n"), 0o644))

	exp, err = LoadExpectations(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, exp.Coverage["tagline"], 0.001)
	// Tolerance falls back when the file omits it.
	assert.InDelta(t, 0.05, exp.Tolerance, 0.001)

	_, err = LoadExpectations(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
