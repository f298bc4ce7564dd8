package model

import "strings"

// FilingOffice is the office a publication's application was filed with. The
// feed uses either key depending on the record's age.
type FilingOffice struct {
	FilingOffice     string `json:"filing_office,omitempty"`
	FilingOfficeName string `json:"filing_office_name,omitempty"`
}

// Name returns whichever office key is populated.
func (o *FilingOffice) Name() string {
	if o == nil {
		return ""
	}
	if o.FilingOffice != "" {
		return o.FilingOffice
	}
	return o.FilingOfficeName
}

// PublicationFamily groups a publication with its patent family metadata.
type PublicationFamily struct {
	FN                 FlexString `json:"fn,omitempty"`
	EarliestPubDate    string     `json:"fn_earliest_pub_date,omitempty"`
	EarliestFilingDate string     `json:"fn_earliest_appn_fil_date,omitempty"`
}

// Publication is one patent application/publication entry as delivered by the
// per-organization publications endpoint.
type Publication struct {
	PN                 FlexString         `json:"pn,omitempty"`
	DocN               FlexString         `json:"docn,omitempty"`
	AppnKey            FlexString         `json:"appn_key,omitempty"`
	Title              string             `json:"title,omitempty"`
	Labels             []string           `json:"labels,omitempty"`
	Label              string             `json:"label,omitempty"`
	Granted            GrantStatus        `json:"granted,omitempty"`
	DocdbFilingDate    string             `json:"docdb_filing_date,omitempty"`
	DocdbFilingOffice  *FilingOffice      `json:"docdb_filing_office,omitempty"`
	PubDate            string             `json:"pub_date,omitempty"`
	Family             *PublicationFamily `json:"family,omitempty"`
	IntentionToLicense *bool              `json:"intention_to_license,omitempty"`
	IPF                FlexString         `json:"ipf,omitempty"`
}

// PublicationsRecord is one organization's full publication list, written as
// one JSONL line per org. Failed fetches carry an error tag and an empty list
// so a retry pass can find them.
type PublicationsRecord struct {
	OrgID        string        `json:"org_id"`
	Name         string        `json:"name,omitempty"`
	Role         Role          `json:"role,omitempty"`
	RunID        string        `json:"run_id,omitempty"`
	Total        int           `json:"total,omitempty"`
	Publications []Publication `json:"publications"`
	Error        string        `json:"error,omitempty"`
}

// OK reports whether the record holds a usable publication list.
func (r *PublicationsRecord) OK() bool {
	return r.Error == ""
}

// FlatPublication is one row of publications.csv: one publication per row,
// keyed by org_id for joining against companies.csv.
type FlatPublication struct {
	OrgID                    string `csv:"org_id"`
	OrgName                  string `csv:"org_name"`
	OrgRole                  string `csv:"org_role"`
	PN                       string `csv:"pn"`
	DocN                     string `csv:"docn"`
	AppnKey                  string `csv:"appn_key"`
	Title                    string `csv:"title"`
	Labels                   string `csv:"labels"`
	Label                    string `csv:"label"`
	Granted                  string `csv:"granted"`
	DocdbFilingDate          string `csv:"docdb_filing_date"`
	DocdbFilingOffice        string `csv:"docdb_filing_office"`
	PubDate                  string `csv:"pub_date"`
	FamilyFN                 string `csv:"family_fn"`
	FamilyEarliestPubDate    string `csv:"family_earliest_pub_date"`
	FamilyEarliestFilingDate string `csv:"family_earliest_filing_date"`
	IntentionToLicense       *bool  `csv:"intention_to_license"`
	IPF                      string `csv:"ipf"`
}

// FlattenPublication hoists one publication into a flat row under its org.
func FlattenPublication(rec *PublicationsRecord, p *Publication) FlatPublication {
	flat := FlatPublication{
		OrgID:              rec.OrgID,
		OrgName:            rec.Name,
		OrgRole:            string(rec.Role),
		PN:                 p.PN.String(),
		DocN:               p.DocN.String(),
		AppnKey:            p.AppnKey.String(),
		Title:              strings.TrimSpace(p.Title),
		Labels:             strings.Join(p.Labels, "|"),
		Label:              p.Label,
		Granted:            string(p.Granted),
		DocdbFilingDate:    p.DocdbFilingDate,
		DocdbFilingOffice:  p.DocdbFilingOffice.Name(),
		PubDate:            p.PubDate,
		IntentionToLicense: p.IntentionToLicense,
		IPF:                p.IPF.String(),
	}
	if fam := p.Family; fam != nil {
		flat.FamilyFN = fam.FN.String()
		flat.FamilyEarliestPubDate = fam.EarliestPubDate
		flat.FamilyEarliestFilingDate = fam.EarliestFilingDate
	}
	return flat
}
