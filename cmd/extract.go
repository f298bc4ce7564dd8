package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/epo"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the full EPO deeptech dataset to a dated raw snapshot",
	Long: `Pages through the EPO data visualisation applicants API and writes the
complete entity list to data/raw/epo_deeptech_complete_<date>.json.

The endpoint sits behind an anti-bot proxy, so extraction drives a real
browser session by default and falls back to direct HTTP.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := epo.New(cfg.Extract).Run(ctx)
		if err != nil {
			return err
		}

		path, err := snapshot.Write(cfg.Data.RawDir, snap, time.Now())
		if err != nil {
			return eris.Wrap(err, "extract: save snapshot")
		}

		zap.L().Info("extraction complete",
			zap.Int("entities", snap.Total),
			zap.String("method", snap.ExtractionMethod),
			zap.String("path", path),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
