package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
	"github.com/akazakci/deeptech-startup-data/internal/verify"
)

var (
	verifyInput  string
	verifyStrict bool
	verifyJSON   bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of a raw EPO snapshot",
	Long: `Checks a raw snapshot for structural validity, duplicate IDs, impossible
patent counts, and field coverage against documented expectations.

Coverage below expectation is a warning, not a failure: nulls in optional
fields reflect the source data. Pass --strict to fail on any warning.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := verifyInput
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

		exp, err := verify.LoadExpectations(cfg.Verify.ExpectationsPath)
		if err != nil {
			return err
		}

		rep, err := verify.Run(snap, exp)
		if err != nil {
			return err
		}
		verify.LogReport(rep)

		if verifyJSON {
			raw, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return eris.Wrap(err, "verify: marshal report")
			}
			fmt.Println(string(raw))
		}

		if verifyStrict && !rep.Passed() {
			return eris.Errorf("verify: snapshot %s failed strict verification", path)
		}
		if rep.DuplicateIDs > 0 {
			return eris.Errorf("verify: snapshot %s contains %d duplicate IDs", path, rep.DuplicateIDs)
		}
		// Identity fields below the critical floor fail even without --strict.
		for _, fc := range rep.Fields {
			switch fc.Field {
			case "unique_ID", "name", "role":
				if fc.Coverage < cfg.Verify.CriticalCoverage {
					return eris.Errorf("verify: %s coverage %.1f%% below critical %.1f%%",
						fc.Field, fc.Coverage*100, cfg.Verify.CriticalCoverage*100)
				}
			}
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInput, "input", "", "raw snapshot path (default: latest in raw dir)")
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "fail on coverage warnings, not just structural problems")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the full report as JSON to stdout")
	rootCmd.AddCommand(verifyCmd)
}
