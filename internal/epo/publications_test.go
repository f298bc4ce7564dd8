package epo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazakci/deeptech-startup-data/internal/config"
)

func TestPubPageItems(t *testing.T) {
	raw := `{"publications": [{"pn": "EP1234567", "title": "Magnetometer"}], "nextPageToken": "tok-2", "totalNrOfRows": 40}`
	var page pubPage
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.items(), 1)
	assert.Equal(t, "EP1234567", page.items()[0].PN.String())
	assert.Equal(t, "tok-2", page.NextPageToken)

	// Older responses used a "content" key.
	raw = `{"content": [{"pn": 7654321}]}`
	page = pubPage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	require.Len(t, page.items(), 1)
	assert.Equal(t, "7654321", page.items()[0].PN.String())
}

func TestPublicationsScriptFiltersByOrg(t *testing.T) {
	ex := New(config.ExtractConfig{PublicationsAPIURL: "https://example.org/api/publications"})
	script := ex.publicationsScript("c-001", "tok-2")

	assert.Contains(t, script, "https://example.org/api/publications")
	assert.Contains(t, script, `\"filter_id\":\"org_id\"`)
	assert.Contains(t, script, `\"id\":\"c-001\"`)
	assert.Contains(t, script, `\"nextPageToken\":\"tok-2\"`)
}
