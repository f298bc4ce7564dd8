package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/process"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var (
	pubProcessInput  string
	pubProcessOutput string
)

var pubProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Flatten publication records to one CSV row per publication",
	Long: `Reads the per-organization publications JSONL and writes
publications.csv into the processed directory, one row per publication keyed
by org_id. Error-tagged records contribute no rows and are counted in the
run summary.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		input := pubProcessInput
		if input == "" {
			latest, err := snapshot.LatestDated(cfg.Data.RawDir, snapshot.PublicationsPattern)
			if err != nil {
				return err
			}
			input = latest
		}
		records, err := snapshot.ReadJSONL[model.PublicationsRecord](input)
		if err != nil {
			return err
		}

		outDir := pubProcessOutput
		if outDir == "" {
			outDir = cfg.Data.ProcessedDir
		}

		summary := report.NewSummary()
		res, err := process.RunPublications(records, outDir, summary)
		if err != nil {
			return err
		}
		summary.Log("publications_process")

		zap.L().Info("publications table written",
			zap.String("input", input),
			zap.String("path", filepath.Join(outDir, process.PublicationsFile)),
			zap.Int("rows", res.Rows),
		)
		return nil
	},
}

func init() {
	pubProcessCmd.Flags().StringVar(&pubProcessInput, "input", "", "publications JSONL path (default: latest in raw dir)")
	pubProcessCmd.Flags().StringVar(&pubProcessOutput, "output", "", "output directory (default: processed dir)")
	publicationsCmd.AddCommand(pubProcessCmd)
}
