package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicationDecode(t *testing.T) {
	raw := `{
		"pn": "EP1234567",
		"docn": 98765,
		"appn_key": "EP20190001",
		"title": "  Quantum magnetometer  ",
		"labels": ["quantum", "sensing"],
		"granted": "EP granted",
		"docdb_filing_date": "2019-03-01",
		"docdb_filing_office": {"filing_office_name": "EPO"},
		"pub_date": "2020-09-15",
		"family": {"fn": 11223344, "fn_earliest_pub_date": "2019-09-15"},
		"intention_to_license": true,
		"ipf": "A61B"
	}`
	var p Publication
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	// Numeric identifiers decode as strings.
	assert.Equal(t, "98765", p.DocN.String())
	assert.Equal(t, "11223344", p.Family.FN.String())
	assert.Equal(t, "EPO", p.DocdbFilingOffice.Name())
	require.NotNil(t, p.IntentionToLicense)
	assert.True(t, *p.IntentionToLicense)
}

func TestFilingOfficeName(t *testing.T) {
	assert.Equal(t, "", (*FilingOffice)(nil).Name())
	assert.Equal(t, "EPO", (&FilingOffice{FilingOffice: "EPO"}).Name())

	// Either key may carry the office; the newer one wins when both are set.
	o := &FilingOffice{FilingOffice: "EPO", FilingOfficeName: "European Patent Office"}
	assert.Equal(t, "EPO", o.Name())
}

func TestFlattenPublication(t *testing.T) {
	rec := &PublicationsRecord{OrgID: "c-001", Name: "Quantum GmbH", Role: RoleCompany}
	p := &Publication{
		PN:                "EP1234567",
		Title:             "  Quantum magnetometer  ",
		Labels:            []string{"quantum", "sensing"},
		Granted:           GrantStatusGranted,
		DocdbFilingOffice: &FilingOffice{FilingOfficeName: "EPO"},
		Family: &PublicationFamily{
			FN:              "11223344",
			EarliestPubDate: "2019-09-15",
		},
	}

	flat := FlattenPublication(rec, p)
	assert.Equal(t, "c-001", flat.OrgID)
	assert.Equal(t, "Quantum GmbH", flat.OrgName)
	assert.Equal(t, "company", flat.OrgRole)
	assert.Equal(t, "Quantum magnetometer", flat.Title)
	assert.Equal(t, "quantum|sensing", flat.Labels)
	assert.Equal(t, "EP granted", flat.Granted)
	assert.Equal(t, "EPO", flat.DocdbFilingOffice)
	assert.Equal(t, "11223344", flat.FamilyFN)
	assert.Equal(t, "2019-09-15", flat.FamilyEarliestPubDate)
}

func TestFlattenPublicationNoFamily(t *testing.T) {
	rec := &PublicationsRecord{OrgID: "c-001"}
	flat := FlattenPublication(rec, &Publication{PN: "EP1"})
	assert.Equal(t, "", flat.FamilyFN)
	assert.Equal(t, "", flat.DocdbFilingOffice)
	assert.Nil(t, flat.IntentionToLicense)
}

func TestPublicationsRecordOK(t *testing.T) {
	ok := &PublicationsRecord{OrgID: "c-001"}
	assert.True(t, ok.OK())
	failed := &PublicationsRecord{OrgID: "c-002", Error: "api page 1: HTTP 403"}
	assert.False(t, failed.OK())
}
