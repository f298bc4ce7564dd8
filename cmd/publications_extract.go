package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/epo"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var (
	pubExtractInput       string
	pubExtractOutput      string
	pubExtractLimit       int
	pubExtractRetryErrors bool
)

var pubExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch the full publication list for every organization",
	Long: `Pages through the EPO publications API once per organization in the raw
snapshot and appends one JSONL record per org to
data/raw/epo_publications_<date>.jsonl.

Output is append-only: rerunning the command resumes after the orgs already
written. A failed org yields a tagged error record and the batch continues;
pass --retry-errors to re-fetch those orgs on the next run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input := pubExtractInput
		if input == "" {
			latest, err := snapshot.LatestDated(cfg.Data.RawDir, snapshot.RawPattern)
			if err != nil {
				return err
			}
			input = latest
		}
		snap, err := snapshot.Load(input)
		if err != nil {
			return err
		}

		output := pubExtractOutput
		if output == "" {
			output = snapshot.DatedPath(cfg.Data.RawDir, "epo_publications", ".jsonl", time.Now())
		}
		done, err := snapshot.DoneOrgIDs(output, pubExtractRetryErrors)
		if err != nil {
			return err
		}

		w, err := snapshot.OpenJSONL(output)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		runID := uuid.NewString()
		zap.L().Info("starting publications extraction",
			zap.String("run_id", runID),
			zap.String("input", input),
			zap.Int("organizations", len(snap.Entities)),
			zap.Int("already_done", len(done)),
			zap.String("output", output),
		)

		summary := report.NewSummary()
		if err := epo.New(cfg.Extract).RunPublications(ctx, snap.Entities, runID, w, done, pubExtractLimit, summary); err != nil {
			return err
		}
		summary.Log("publications_extract")
		return nil
	},
}

func init() {
	pubExtractCmd.Flags().StringVar(&pubExtractInput, "input", "", "raw snapshot path (default: latest in raw dir)")
	pubExtractCmd.Flags().StringVar(&pubExtractOutput, "output", "", "output JSONL path (default: dated file in raw dir)")
	pubExtractCmd.Flags().IntVar(&pubExtractLimit, "limit", 0, "cap on orgs fetched this run (0 = no cap)")
	pubExtractCmd.Flags().BoolVar(&pubExtractRetryErrors, "retry-errors", false, "re-fetch orgs whose last record carries an error tag")
	publicationsCmd.AddCommand(pubExtractCmd)
}
