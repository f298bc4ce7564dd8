package main

import (
	"github.com/spf13/cobra"

	"github.com/akazakci/deeptech-startup-data/internal/process"
	"github.com/akazakci/deeptech-startup-data/internal/report"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var processInput string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Flatten a raw snapshot into the processed CSV tables",
	Long: `Flattens the nested entity records of a raw snapshot into
entities.csv, companies.csv, and universities.csv under the processed
directory. Records missing identification fields are skipped and counted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := processInput
		if path == "" {
			latest, err := snapshot.LatestDated(cfg.Data.RawDir, snapshot.RawPattern)
			if err != nil {
				return err
			}
			path = latest
		}

		snap, err := snapshot.Load(path)
		if err != nil {
			return err
		}

		summary := report.NewSummary()
		if _, err := process.Run(snap, cfg.Data.ProcessedDir, summary); err != nil {
			return err
		}
		summary.Log("process")
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processInput, "input", "", "raw snapshot path (default: latest in raw dir)")
	rootCmd.AddCommand(processCmd)
}
