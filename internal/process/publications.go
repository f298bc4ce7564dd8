package process

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/report"
)

// PublicationsFile is the flattened publications table within the processed
// directory.
const PublicationsFile = "publications.csv"

// PublicationsResult summarizes one publications processing run.
type PublicationsResult struct {
	Organizations int
	Rows          int
	Errored       int
	Skipped       int
}

// RunPublications flattens per-organization publication records into one CSV
// row per publication, keyed by org_id for joining against the entity tables.
// A rerun after a retry pass appends fresh records for previously errored
// orgs, so the last record per org wins. Error-tagged records contribute no
// rows; records without an org_id are excluded and counted.
func RunPublications(records []model.PublicationsRecord, outDir string, summary *report.Summary) (*PublicationsResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "process: create output dir")
	}

	var res PublicationsResult

	// Keep first-seen org order, last record per org.
	latest := make(map[string]int)
	var order []string
	for i := range records {
		rec := &records[i]
		if rec.OrgID == "" {
			res.Skipped++
			summary.RecordError(model.KindSchemaError)
			zap.L().Warn("process: skipping publications record",
				zap.Int("index", i),
				zap.Error(&model.SchemaError{Field: "org_id"}),
			)
			continue
		}
		if _, seen := latest[rec.OrgID]; !seen {
			order = append(order, rec.OrgID)
		}
		latest[rec.OrgID] = i
	}

	var rows []model.FlatPublication
	for _, orgID := range order {
		rec := &records[latest[orgID]]
		if !rec.OK() {
			res.Errored++
			summary.RecordError(model.KindFetchFailure)
			zap.L().Warn("process: org carries fetch error",
				zap.String("org_id", rec.OrgID),
				zap.String("error", rec.Error),
			)
			continue
		}
		summary.Record()
		res.Organizations++
		for j := range rec.Publications {
			rows = append(rows, model.FlattenPublication(rec, &rec.Publications[j]))
		}
	}
	res.Rows = len(rows)

	if err := writeTable(filepath.Join(outDir, PublicationsFile), rows); err != nil {
		return nil, eris.Wrap(err, "process: write publications table")
	}

	zap.L().Info("publications processing complete",
		zap.Int("organizations", res.Organizations),
		zap.Int("rows", res.Rows),
		zap.Int("errored", res.Errored),
		zap.Int("skipped", res.Skipped),
	)

	return &res, nil
}
