package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/model"
	"github.com/akazakci/deeptech-startup-data/internal/positioning"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
	"github.com/akazakci/deeptech-startup-data/pkg/anthropic"
)

var (
	positioningInput  string
	positioningOutput string
	positioningLimit  int
	positioningDryRun bool
)

var positioningCmd = &cobra.Command{
	Use:   "positioning",
	Short: "Extract structured positioning signals from captured website text",
	Long: `Runs the schema-v1 positioning extraction over captured website
records and appends one JSONL record per company to
data/enriched/positioning_v1_<date>.jsonl.

Extraction is deterministic (temperature 0) and every record carries full
provenance: model, prompt version and hash, input hash. Failed extractions
are written as tagged records, never dropped. Rerunning resumes after the
companies already present in the output file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input := positioningInput
		if input == "" {
			latest, err := snapshot.LatestDated(cfg.Data.EnrichedDir, "websites_raw_*.jsonl")
			if err != nil {
				return err
			}
			input = latest
		}
		records, err := snapshot.ReadJSONL[model.WebsiteRecord](input)
		if err != nil {
			return err
		}

		if positioningDryRun {
			return printFirstPrompt(records)
		}

		if cfg.Anthropic.Key == "" {
			return eris.New("positioning: DEEPTECH_ANTHROPIC_KEY is not set")
		}

		output := positioningOutput
		if output == "" {
			output = snapshot.DatedPath(cfg.Data.EnrichedDir, "positioning_v1", ".jsonl", time.Now())
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
		zap.L().Info("starting positioning extraction",
			zap.String("run_id", runID),
			zap.String("model", cfg.Anthropic.Model),
			zap.Int("records", len(records)),
			zap.Int("already_done", len(done)),
			zap.String("output", output),
		)

		client := anthropic.NewClient(cfg.Anthropic.Key)
		ex := positioning.New(client, cfg.Positioning, cfg.Anthropic.Model, runID)

		summary := report.NewSummary()
		if err := ex.Run(ctx, records, input, w, done, positioningLimit, summary); err != nil {
			return err
		}
		summary.Log("positioning")
		return nil
	},
}

// printFirstPrompt renders the prompt for the first usable record, for
// inspection without an API call.
func printFirstPrompt(records []model.WebsiteRecord) error {
	for i := range records {
		if records[i].CombinedText == "" {
			continue
		}
		text := positioning.NormalizeInputText(records[i].CombinedText, cfg.Positioning.MaxInputChars)
		fmt.Printf("prompt_version: %s\nprompt_sha256: %s\ncompany: %s\n\n%s\n",
			positioning.PromptVersion,
			positioning.PromptSHA256(),
			records[i].Name,
			positioning.BuildPrompt(records[i].Name, text),
		)
		return nil
	}
	return eris.New("positioning: no record with combined text to preview")
}

func init() {
	positioningCmd.Flags().StringVar(&positioningInput, "input", "", "websites JSONL path (default: latest in enriched dir)")
	positioningCmd.Flags().StringVar(&positioningOutput, "output", "", "output JSONL path (default: dated file in enriched dir)")
	positioningCmd.Flags().IntVar(&positioningLimit, "limit", 0, "cap on new records this run (0 = no cap)")
	positioningCmd.Flags().BoolVar(&positioningDryRun, "dry-run", false, "print the first prompt instead of calling the API")
	rootCmd.AddCommand(positioningCmd)
}
