package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FlatEntity is one row of the processed entity tables. Column order is the
// struct field order; csvutil derives the header from the csv tags, so the
// output is deterministic across runs.
type FlatEntity struct {
	ID                     string   `csv:"id"`
	Name                   string   `csv:"name"`
	Type                   string   `csv:"type"`
	Country                string   `csv:"country"`
	City                   string   `csv:"city"`
	HomepageURL            string   `csv:"homepage_url"`
	HomepageURLRaw         string   `csv:"homepage_url_raw"`
	Tagline                string   `csv:"tagline"`
	Latitude               *float64 `csv:"latitude"`
	Longitude              *float64 `csv:"longitude"`
	PatentApplications     int      `csv:"patent_applications"`
	PatentGrants           int      `csv:"patent_grants"`
	PatentGrantRate        *float64 `csv:"patent_grant_rate"`
	CompanyStatus          string   `csv:"company_status"`
	GrowthStage            string   `csv:"growth_stage"`
	EmployeeCount          string   `csv:"employee_count"`
	FoundedDate            string   `csv:"founded_date"`
	TotalStudents          *int     `csv:"total_students"`
	TotalAcademicPersonnel *int     `csv:"total_academic_personnel"`
	TotalPhdStudents       *int     `csv:"total_phd_students"`
	PROTotalPersonnel      *int     `csv:"pro_total_personnel"`
	IndustriesStr          string   `csv:"industries_str"`
	IndustryCount          int      `csv:"industry_count"`
	InvestorsJSON          string   `csv:"investors_json"`
	InvestorIDs            string   `csv:"investor_ids"`
	InvestorNames          string   `csv:"investor_names"`
	InvestorCount          int      `csv:"investor_count"`
	HasInvestors           bool     `csv:"has_investors"`
	SpinoutsUniCount       int      `csv:"spinouts_uni_count"`
	IsUniversity           bool     `csv:"is_university"`
	IsCompany              bool     `csv:"is_company"`
	IsPRO                  bool     `csv:"is_pro"`
	IsSpinout              bool     `csv:"is_spinout"`
}

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL prefixes bare domains with https://. Empty input stays empty.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if schemeRe.MatchString(u) {
		return u
	}
	return "https://" + u
}

// Flatten hoists an entity's nested structures into a single flat row.
// Absent nested structures yield empty values, never errors.
func Flatten(e *Entity) FlatEntity {
	flat := FlatEntity{
		ID:                 e.UniqueID,
		Name:               e.Name,
		Type:               string(e.Role),
		Country:            e.CountryName,
		City:               e.City,
		HomepageURL:        NormalizeURL(e.HomepageURL),
		HomepageURLRaw:     e.HomepageURL,
		Tagline:            e.Tagline,
		Latitude:           e.Latitude,
		Longitude:          e.Longitude,
		PatentApplications: e.TotalPatents,
		PatentGrants:       e.TotalGrantedPatents,
	}

	if e.TotalPatents > 0 {
		rate := float64(e.TotalGrantedPatents) / float64(e.TotalPatents)
		flat.PatentGrantRate = &rate
	}

	if ci := e.CompanyInfo; ci != nil {
		flat.CompanyStatus = ci.CompanyStatus
		flat.GrowthStage = ci.GrowthStage
		flat.EmployeeCount = ci.EmployeeCount.String()
		flat.FoundedDate = ci.FoundedOnDt
		flat.IndustriesStr = strings.Join(ci.Industries, "|")
		flat.IndustryCount = len(ci.Industries)
	}
	if si := e.SchoolInfo; si != nil {
		flat.TotalStudents = si.TotalStudents
		flat.TotalAcademicPersonnel = si.TotalAcademicPersonnel
		flat.TotalPhdStudents = si.TotalPhdStudents
	}
	if pi := e.PROInfo; pi != nil {
		flat.PROTotalPersonnel = pi.TotalPersonnel
	}

	if len(e.Investors) > 0 {
		if raw, err := json.Marshal(e.Investors); err == nil {
			flat.InvestorsJSON = string(raw)
		}
		ids := make([]string, 0, len(e.Investors))
		names := make([]string, 0, len(e.Investors))
		for _, inv := range e.Investors {
			if inv.ID != "" {
				ids = append(ids, inv.ID.String())
			}
			if inv.Name != "" {
				names = append(names, inv.Name)
			}
		}
		flat.InvestorIDs = strings.Join(ids, "|")
		flat.InvestorNames = strings.Join(names, "|")
	}
	flat.InvestorCount = len(e.Investors)
	flat.HasInvestors = len(e.Investors) > 0

	flat.SpinoutsUniCount = len(e.SpinoutsOfUniversity)
	flat.IsUniversity = e.Role == RoleSchool
	flat.IsCompany = e.Role == RoleCompany
	flat.IsPRO = e.Role == RolePRO
	flat.IsSpinout = e.HasSpinoutRelation()

	return flat
}
