package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	CompanyID string `json:"company_id"`
	Value     int    `json:"value"`
}

func TestJSONLWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.jsonl")

	w, err := OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(testRecord{CompanyID: "c-001", Value: 1}))
	require.NoError(t, w.Write(testRecord{CompanyID: "c-002", Value: 2}))
	require.NoError(t, w.Close())

	records, err := ReadJSONL[testRecord](path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c-001", records[0].CompanyID)
	assert.Equal(t, 2, records[1].Value)
}

func TestJSONLAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	w1, err := OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, w1.Write(testRecord{CompanyID: "c-001"}))
	require.NoError(t, w1.Close())

	w2, err := OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, w2.Write(testRecord{CompanyID: "c-002"}))
	require.NoError(t, w2.Close())

	records, err := ReadJSONL[testRecord](path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDoneIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"company_id": "c-001", "value": 1}
{"company_id": "c-002", "value": 2}
not json at all
{"value": 3}
{"company_id": "c-003", "val`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	done, err := DoneIDs(path)
	require.NoError(t, err)

	// Malformed and truncated lines are skipped, complete ones counted.
	assert.True(t, done["c-001"])
	assert.True(t, done["c-002"])
	assert.False(t, done["c-003"])
	assert.Len(t, done, 2)
}

func TestDoneIDsMissingFile(t *testing.T) {
	done, err := DoneIDs(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestDoneOrgIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.jsonl")
	content := `{"org_id": "c-001", "publications": []}
{"org_id": "c-002", "error": "api page 1: HTTP 403", "publications": []}
{"org_id": "c-003", "publi`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	done, err := DoneOrgIDs(path, false)
	require.NoError(t, err)
	assert.True(t, done["c-001"])
	assert.True(t, done["c-002"])
	assert.Len(t, done, 2)

	// With retry enabled, errored orgs drop out of the done set.
	done, err = DoneOrgIDs(path, true)
	require.NoError(t, err)
	assert.True(t, done["c-001"])
	assert.False(t, done["c-002"])
	assert.Len(t, done, 1)
}

func TestDoneOrgIDsMissingFile(t *testing.T) {
	done, err := DoneOrgIDs(filepath.Join(t.TempDir(), "nope.jsonl"), true)
	require.NoError(t, err)
	assert.Empty(t, done)
}
