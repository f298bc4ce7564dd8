// Package verify checks a raw EPO snapshot against structural and coverage
// expectations before downstream processing proceeds.
package verify

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/akazakci/deeptech-startup-data/internal/model"
)

// Expectations holds the documented per-field coverage fractions. Coverage
// below expectation (within tolerance) raises a CoverageWarning, not a
// failure: nulls in optional fields reflect the EPO source, not extraction
// bugs.
type Expectations struct {
	// Coverage maps field name to the expected fraction of records with a
	// non-null value, e.g. tagline: 0.83.
	Coverage map[string]float64 `yaml:"coverage"`
	// Tolerance is how far below expectation coverage may fall before a
	// warning is raised.
	Tolerance float64 `yaml:"tolerance"`
}

// DefaultExpectations reflects the documented coverage of the 2026 extraction.
func DefaultExpectations() Expectations {
	return Expectations{
		Coverage: map[string]float64{
			"unique_ID":           1.00,
			"name":                1.00,
			"role":                1.00,
			"country_name":        0.99,
			"city":                0.97,
			"latitude":            0.95,
			"longitude":           0.95,
			"homepageUrl":         0.90,
			"tagline":             0.83,
			"company_info":        0.85,
			"investors":           0.30,
			"spinoutsOfUniversity": 0.10,
		},
		Tolerance: 0.05,
	}
}

// LoadExpectations reads an expectations YAML file. An empty path returns the
// defaults.
func LoadExpectations(path string) (Expectations, error) {
	if path == "" {
		return DefaultExpectations(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Expectations{}, eris.Wrap(err, "verify: read expectations")
	}
	var exp Expectations
	if err := yaml.Unmarshal(raw, &exp); err != nil {
		return Expectations{}, eris.Wrap(err, "verify: parse expectations")
	}
	if exp.Tolerance == 0 {
		exp.Tolerance = 0.05
	}
	return exp, nil
}

// FieldCoverage is the observed coverage of one field.
type FieldCoverage struct {
	Field    string  `json:"field"`
	Present  int     `json:"present"`
	Coverage float64 `json:"coverage"`
	Expected float64 `json:"expected,omitempty"`
	Warning  bool    `json:"warning,omitempty"`
}

// Report is the verification result for one snapshot.
type Report struct {
	TotalRecords        int             `json:"total_records"`
	ExpectedRecords     int             `json:"expected_records,omitempty"`
	Complete            bool            `json:"complete"`
	Fields              []FieldCoverage `json:"fields"`
	DuplicateIDs        int             `json:"duplicate_ids"`
	InvalidPatentCounts int             `json:"invalid_patent_counts"`
	Warnings            []string        `json:"warnings,omitempty"`
}

// Passed reports whether the snapshot is usable without reservation: complete,
// no duplicates, and no coverage warnings.
func (r *Report) Passed() bool {
	return r.Complete && r.DuplicateIDs == 0 && len(r.Warnings) == 0
}

// Run verifies a snapshot. A malformed top-level shape surfaces earlier as a
// StructuralError from snapshot.Load; Run itself rejects only an empty entity
// list, which makes every coverage fraction undefined.
func Run(snap *model.Snapshot, exp Expectations) (*Report, error) {
	if len(snap.Entities) == 0 {
		return nil, model.NewStructuralError("snapshot contains no entities")
	}

	total := len(snap.Entities)
	rep := &Report{
		TotalRecords:    total,
		ExpectedRecords: snap.Total,
		Complete:        snap.Total == 0 || snap.Total == total,
	}

	counts := map[string]int{}
	seen := make(map[string]int, total)
	for i := range snap.Entities {
		e := &snap.Entities[i]
		if e.UniqueID != "" {
			counts["unique_ID"]++
			seen[e.UniqueID]++
		}
		if e.Name != "" {
			counts["name"]++
		}
		if e.Role != "" {
			counts["role"]++
		}
		if e.CountryName != "" {
			counts["country_name"]++
		}
		if e.City != "" {
			counts["city"]++
		}
		if e.Latitude != nil {
			counts["latitude"]++
		}
		if e.Longitude != nil {
			counts["longitude"]++
		}
		if e.HomepageURL != "" {
			counts["homepageUrl"]++
		}
		if e.Tagline != "" {
			counts["tagline"]++
		}
		if e.CompanyInfo != nil {
			counts["company_info"]++
		}
		if len(e.Investors) > 0 {
			counts["investors"]++
		}
		if len(e.SpinoutsOfUniversity) > 0 {
			counts["spinoutsOfUniversity"]++
		}
		if e.TotalGrantedPatents > e.TotalPatents {
			rep.InvalidPatentCounts++
		}
	}

	for _, n := range seen {
		if n > 1 {
			rep.DuplicateIDs += n - 1
		}
	}

	fields := make([]string, 0, len(counts))
	for f := range counts {
		fields = append(fields, f)
	}
	for f := range exp.Coverage {
		if _, ok := counts[f]; !ok {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	for _, f := range fields {
		fc := FieldCoverage{
			Field:    f,
			Present:  counts[f],
			Coverage: float64(counts[f]) / float64(total),
			Expected: exp.Coverage[f],
		}
		if want, ok := exp.Coverage[f]; ok && fc.Coverage < want-exp.Tolerance {
			fc.Warning = true
			rep.Warnings = append(rep.Warnings,
				eris.Errorf("verify: %s coverage %.1f%% below expected %.1f%%",
					f, fc.Coverage*100, want*100).Error())
		}
		rep.Fields = append(rep.Fields, fc)
	}

	if rep.InvalidPatentCounts > 0 {
		rep.Warnings = append(rep.Warnings,
			eris.Errorf("verify: %d entities report more granted than total patents",
				rep.InvalidPatentCounts).Error())
	}

	return rep, nil
}

// LogReport emits the report with structured fields.
func LogReport(rep *Report) {
	for _, fc := range rep.Fields {
		logFn := zap.L().Debug
		if fc.Warning {
			logFn = zap.L().Warn
		}
		logFn("field coverage",
			zap.String("field", fc.Field),
			zap.Float64("coverage", fc.Coverage),
			zap.Float64("expected", fc.Expected),
		)
	}
	zap.L().Info("verification complete",
		zap.Int("total_records", rep.TotalRecords),
		zap.Bool("complete", rep.Complete),
		zap.Int("duplicate_ids", rep.DuplicateIDs),
		zap.Int("invalid_patent_counts", rep.InvalidPatentCounts),
		zap.Int("coverage_warnings", len(rep.Warnings)),
		zap.Bool("passed", rep.Passed()),
	)
}
