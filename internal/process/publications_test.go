package process

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
)

func TestRunPublicationsFlattens(t *testing.T) {
	records := []model.PublicationsRecord{
		{
			OrgID: "c-001", Name: "Quantum GmbH", Role: model.RoleCompany, Total: 2,
			Publications: []model.Publication{
				{PN: "EP1", Title: "First", Labels: []string{"quantum", "sensing"}},
				{PN: "EP2", Title: "Second"},
			},
		},
		{OrgID: "c-002", Name: "Fusion SA", Error: "api page 1: HTTP 403", Publications: []model.Publication{}},
		{Name: "No ID Ltd", Publications: []model.Publication{{PN: "EP9"}}},
		{OrgID: "c-003", Name: "Photon BV", Error: "timeout", Publications: []model.Publication{}},
		// Retry pass re-fetched c-002; the fresh record replaces the errored one.
		{
			OrgID: "c-002", Name: "Fusion SA", Role: model.RoleCompany, Total: 1,
			Publications: []model.Publication{{PN: "EP3", Title: "Third"}},
		},
	}

	outDir := t.TempDir()
	summary := report.NewSummary()
	res, err := RunPublications(records, outDir, summary)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Organizations)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 1, res.Errored)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, summary.Count(model.KindFetchFailure))
	assert.Equal(t, 1, summary.Count(model.KindSchemaError))

	raw, err := os.ReadFile(filepath.Join(outDir, PublicationsFile))
	require.NoError(t, err)
	var rows []model.FlatPublication
	require.NoError(t, csvutil.Unmarshal(raw, &rows))
	require.Len(t, rows, 3)

	// Input org order is preserved.
	assert.Equal(t, "c-001", rows[0].OrgID)
	assert.Equal(t, "quantum|sensing", rows[0].Labels)
	assert.Equal(t, "c-001", rows[1].OrgID)
	assert.Equal(t, "c-002", rows[2].OrgID)
	assert.Equal(t, "EP3", rows[2].PN)
}

func TestRunPublicationsEmptyInput(t *testing.T) {
	outDir := t.TempDir()
	res, err := RunPublications(nil, outDir, report.NewSummary())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)

	raw, err := os.ReadFile(filepath.Join(outDir, PublicationsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "org_id,org_name,org_role,pn,"))
}
