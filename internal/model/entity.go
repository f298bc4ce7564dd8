// Package model defines the records flowing through the pipeline: raw EPO
// entities, flattened CSV rows, website captures, and positioning extractions.
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Role identifies the kind of entity in the EPO dataset.
type Role string

const (
	RoleCompany Role = "company"
	RoleSchool  Role = "school"
	RolePRO     Role = "pro" // public research organization
)

// GrantStatus is the lifecycle state of a patent record.
type GrantStatus string

const (
	GrantStatusGranted GrantStatus = "EP granted"
	GrantStatusPending GrantStatus = "Pending"
	GrantStatusRefused GrantStatus = "Refused/Withdrawn"
)

// Snapshot is one dated raw extraction file. The extractor writes either a
// wrapper object with an "entities" key or a bare top-level array; both are
// accepted on read.
type Snapshot struct {
	ExtractionDate   string   `json:"extraction_date,omitempty"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
	Total            int      `json:"total,omitempty"`
	Entities         []Entity `json:"entities"`
}

// Entity is one company, university, or research organization as delivered by
// the EPO deeptech dataset. JSON tags follow the upstream field names.
type Entity struct {
	UniqueID             string            `json:"unique_ID"`
	Name                 string            `json:"name"`
	Role                 Role              `json:"role"`
	CountryName          string            `json:"country_name,omitempty"`
	City                 string            `json:"city,omitempty"`
	Latitude             *float64          `json:"latitude,omitempty"`
	Longitude            *float64          `json:"longitude,omitempty"`
	HomepageURL          string            `json:"homepageUrl,omitempty"`
	Tagline              string            `json:"tagline,omitempty"`
	TotalPatents         int               `json:"totalPatents"`
	TotalGrantedPatents  int               `json:"totalGrantedPatents"`
	Patents              []Patent          `json:"patents,omitempty"`
	CompanyInfo          *CompanyInfo      `json:"company_info,omitempty"`
	SchoolInfo           *SchoolInfo       `json:"school_info,omitempty"`
	PROInfo              *PROInfo          `json:"pro_info,omitempty"`
	Investors            []Investor        `json:"investors,omitempty"`
	SpinoutsOfUniversity []json.RawMessage `json:"spinoutsOfUniversity,omitempty"`
	SpinoutsOfPRO        json.RawMessage   `json:"spinoutsOfPRO,omitempty"`
}

// Patent is one patent record attached to an entity. It has no lifecycle
// independent of its parent.
type Patent struct {
	Title              string      `json:"title"`
	Labels             []string    `json:"labels,omitempty"`
	DocdbFilingDate    string      `json:"docdb_filing_date,omitempty"`
	Granted            GrantStatus `json:"granted,omitempty"`
	PN                 string      `json:"pn,omitempty"`
	IntentionToLicense *bool       `json:"intention_to_license,omitempty"`
	ApplicantOrgs      []string    `json:"applicant_orgs,omitempty"`
}

// CompanyInfo is present for role=company entities with source coverage
// (~85-90% of companies).
type CompanyInfo struct {
	Industries    []string   `json:"industries,omitempty"`
	GrowthStage   string     `json:"growth_stage,omitempty"`
	CompanyStatus string     `json:"company_status,omitempty"`
	EmployeeCount FlexString `json:"employee_count,omitempty"`
	FoundedOnDt   string     `json:"founded_on_dt,omitempty"`
}

// SchoolInfo is present for role=school entities.
type SchoolInfo struct {
	TotalStudents          *int `json:"total_students,omitempty"`
	TotalAcademicPersonnel *int `json:"total_academic_personnel,omitempty"`
	TotalPhdStudents       *int `json:"total_phd_students,omitempty"`
}

// PROInfo is present for role=pro entities.
type PROInfo struct {
	TotalPersonnel *int `json:"total_personnel,omitempty"`
}

// Investor is one investor relation on an entity.
type Investor struct {
	ID   FlexString `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
}

// HasSpinoutRelation reports whether the entity is recorded as a spinout of a
// university or a research organization.
func (e *Entity) HasSpinoutRelation() bool {
	return len(e.SpinoutsOfUniversity) > 0 || !isJSONNull(e.SpinoutsOfPRO)
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// FlexString decodes a JSON string or number into a string. The EPO feed is
// inconsistent about numeric identifiers and employee-count buckets.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
