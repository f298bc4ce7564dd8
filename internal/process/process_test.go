package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
)

func testSnapshot() *model.Snapshot {
	students := 30000
	return &model.Snapshot{
		Total: 4,
		Entities: []model.Entity{
			{
				UniqueID:            "c-001",
				Name:                "Quantum GmbH",
				Role:                model.RoleCompany,
				HomepageURL:         "quantum.example",
				TotalPatents:        10,
				TotalGrantedPatents: 4,
			},
			{
				UniqueID:   "u-001",
				Name:       "TU Example",
				Role:       model.RoleSchool,
				SchoolInfo: &model.SchoolInfo{TotalStudents: &students},
			},
			{
				UniqueID: "p-001",
				Name:     "Example Institute",
				Role:     model.RolePRO,
			},
			{
				// Missing name: skipped, counted, never written.
				UniqueID: "c-002",
				Role:     model.RoleCompany,
			},
		},
	}
}

func TestRunSplitsTables(t *testing.T) {
	dir := t.TempDir()
	summary := report.NewSummary()

	res, err := Run(testSnapshot(), dir, summary)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Entities)
	assert.Equal(t, 1, res.Companies)
	assert.Equal(t, 2, res.Universities)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, summary.Count(model.KindSchemaError))

	companies, err := ReadCompanies(filepath.Join(dir, CompaniesFile))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "c-001", companies[0].ID)
	assert.Equal(t, "https://quantum.example", companies[0].HomepageURL)
	require.NotNil(t, companies[0].PatentGrantRate)
	assert.InDelta(t, 0.4, *companies[0].PatentGrantRate, 0.001)
}

func TestRunThreeEntityScenario(t *testing.T) {
	snap := &model.Snapshot{
		Total: 3,
		Entities: []model.Entity{
			{UniqueID: "c-001", Name: "Quantum GmbH", Role: model.RoleCompany},
			{UniqueID: "u-001", Name: "TU Example", Role: model.RoleSchool},
			{Name: "Anonymous", Role: model.RoleCompany}, // no unique_ID
		},
	}

	summary := report.NewSummary()
	res, err := Run(snap, t.TempDir(), summary)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Entities)
	assert.Equal(t, 1, res.Companies)
	assert.Equal(t, 1, res.Universities)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, res.Skipped, summary.Count(model.KindSchemaError))
}

func TestRunIsDeterministic(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	_, err := Run(testSnapshot(), dirA, report.NewSummary())
	require.NoError(t, err)
	_, err = Run(testSnapshot(), dirB, report.NewSummary())
	require.NoError(t, err)

	for _, name := range []string{EntitiesFile, CompaniesFile, UniversitiesFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}

func TestRunEmptyTableStillHasHeader(t *testing.T) {
	dir := t.TempDir()
	snap := &model.Snapshot{
		Total: 1,
		Entities: []model.Entity{
			{UniqueID: "u-001", Name: "TU Example", Role: model.RoleSchool},
		},
	}

	_, err := Run(snap, dir, report.NewSummary())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, CompaniesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id,name,type")

	companies, err := ReadCompanies(filepath.Join(dir, CompaniesFile))
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestRequireIdentity(t *testing.T) {
	cases := []struct {
		name   string
		entity model.Entity
		ok     bool
	}{
		{"valid", model.Entity{UniqueID: "x", Name: "X", Role: model.RoleCompany}, true},
		{"missing id", model.Entity{Name: "X", Role: model.RoleCompany}, false},
		{"missing name", model.Entity{UniqueID: "x", Role: model.RoleCompany}, false},
		{"missing role", model.Entity{UniqueID: "x", Name: "X"}, false},
		{"unknown role", model.Entity{UniqueID: "x", Name: "X", Role: "startup"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := requireIdentity(&tc.entity)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, model.IsSchemaError(err))
			}
		})
	}
}
