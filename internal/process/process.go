// Package process flattens a raw EPO snapshot into the normalized CSV tables
// used by downstream analysis: entities.csv, companies.csv, universities.csv.
package process

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
)

// Output filenames within the processed directory.
const (
	EntitiesFile     = "entities.csv"
	CompaniesFile    = "companies.csv"
	UniversitiesFile = "universities.csv"
)

// Result summarizes one processing run.
type Result struct {
	Entities     int
	Companies    int
	Universities int
	Skipped      int
}

// Run flattens every entity and writes the three tables into outDir. Records
// missing unique_ID, name, or role are excluded and counted in the skip
// report, never silently dropped. Row order follows input order and column
// order is fixed, so reruns on the same input are byte-identical.
func Run(snap *model.Snapshot, outDir string, summary *report.Summary) (*Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "process: create output dir")
	}

	var (
		all          []model.FlatEntity
		companies    []model.FlatEntity
		universities []model.FlatEntity
		res          Result
	)

	for i := range snap.Entities {
		e := &snap.Entities[i]
		if err := requireIdentity(e); err != nil {
			res.Skipped++
			summary.RecordError(model.KindSchemaError)
			zap.L().Warn("process: skipping record",
				zap.Int("index", i),
				zap.String("unique_id", e.UniqueID),
				zap.Error(err),
			)
			continue
		}
		summary.Record()

		flat := model.Flatten(e)
		all = append(all, flat)
		switch e.Role {
		case model.RoleCompany:
			companies = append(companies, flat)
		case model.RoleSchool, model.RolePRO:
			// Universities and research organizations share one table.
			universities = append(universities, flat)
		}
	}

	res.Entities = len(all)
	res.Companies = len(companies)
	res.Universities = len(universities)

	if err := writeTable(filepath.Join(outDir, EntitiesFile), all); err != nil {
		return nil, err
	}
	if err := writeTable(filepath.Join(outDir, CompaniesFile), companies); err != nil {
		return nil, err
	}
	if err := writeTable(filepath.Join(outDir, UniversitiesFile), universities); err != nil {
		return nil, err
	}

	zap.L().Info("processing complete",
		zap.Int("entities", res.Entities),
		zap.Int("companies", res.Companies),
		zap.Int("universities", res.Universities),
		zap.Int("skipped", res.Skipped),
	)

	return &res, nil
}

// requireIdentity enforces the required identification fields.
func requireIdentity(e *model.Entity) error {
	switch {
	case e.UniqueID == "":
		return &model.SchemaError{Field: "unique_ID"}
	case e.Name == "":
		return &model.SchemaError{UniqueID: e.UniqueID, Field: "name"}
	case e.Role == "":
		return &model.SchemaError{UniqueID: e.UniqueID, Field: "role"}
	case e.Role != model.RoleCompany && e.Role != model.RoleSchool && e.Role != model.RolePRO:
		return &model.SchemaError{UniqueID: e.UniqueID, Field: "role"}
	}
	return nil
}

// writeTable writes one CSV table with a header row. An empty row set still
// produces a header-only file so reruns stay byte-identical.
func writeTable[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "process: create csv")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)

	if len(rows) == 0 {
		// Encode the header from the row type without emitting a row.
		var zero T
		header, err := csvutil.Header(zero, "csv")
		if err != nil {
			return eris.Wrap(err, "process: derive header")
		}
		if err := w.Write(header); err != nil {
			return eris.Wrap(err, "process: write header")
		}
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrap(err, "process: encode row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "process: flush csv")
	}
	return nil
}

// ReadCompanies loads the processed companies table back into flat rows, for
// the stages that consume it (enrichment, dealroom merge).
func ReadCompanies(path string) ([]model.FlatEntity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "process: read companies csv")
	}
	var rows []model.FlatEntity
	if err := csvutil.Unmarshal(raw, &rows); err != nil {
		return nil, eris.Wrap(err, "process: decode companies csv")
	}
	return rows, nil
}
