package main

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/enrich"
	"github.com/akazakci/deeptech-startup-data/internal/process"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var (
	enrichInput  string
	enrichOutput string
	enrichLimit  int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Capture website text for every company with a homepage",
	Long: `Fetches each company homepage plus a few internal pages (about,
product, technology) and appends one JSONL record per company to
data/enriched/websites_raw_<date>.jsonl.

Output is append-only and flushed per record: rerunning the command resumes
after the companies already captured in the output file. Dead sites yield a
tagged record with empty pages; the batch always continues.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input := enrichInput
		if input == "" {
			input = filepath.Join(cfg.Data.ProcessedDir, process.CompaniesFile)
		}
		companies, err := process.ReadCompanies(input)
		if err != nil {
			return err
		}

		output := enrichOutput
		if output == "" {
			output = snapshot.DatedPath(cfg.Data.EnrichedDir, "websites_raw", ".jsonl", time.Now())
		}
		done, err := snapshot.DoneIDs(output)
		if err != nil {
			return err
		}

		w, err := snapshot.OpenJSONL(output)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		runID := uuid.NewString()
		zap.L().Info("starting enrichment",
			zap.String("run_id", runID),
			zap.Int("companies", len(companies)),
			zap.Int("already_done", len(done)),
			zap.String("output", output),
		)

		summary := report.NewSummary()
		if err := enrich.New(cfg.Enrich, runID).Run(ctx, companies, w, done, enrichLimit, summary); err != nil {
			return err
		}
		summary.Log("enrich")
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "companies CSV path (default: processed dir)")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "output JSONL path (default: dated file in enriched dir)")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "cap on new records this run (0 = no cap)")
	rootCmd.AddCommand(enrichCmd)
}
