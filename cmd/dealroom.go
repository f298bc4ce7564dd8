package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akazakci/deeptech-startup-data/internal/dealroom"
	"github.com/akazakci/deeptech-startup-data/internal/process"
	"github.com/akazakci/deeptech-startup-data/internal/snapshot"
)

var (
	dealroomExport    string
	dealroomCompanies string
	dealroomOutput    string
	dealroomJSON      bool
)

var dealroomCmd = &cobra.Command{
	Use:   "dealroom",
	Short: "Merge a Dealroom export onto the processed companies table",
	Long: `Joins an externally exported Dealroom table (CSV or XLSX) onto
companies.csv by website domain, falling back to normalized company name,
and writes companies_with_dealroom_<date>.csv.

Ambiguous join keys (the same domain or name on multiple rows, on either
side) are excluded from matching and listed in the merge report.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		companiesPath := dealroomCompanies
		if companiesPath == "" {
			companiesPath = filepath.Join(cfg.Data.ProcessedDir, process.CompaniesFile)
		}
		companies, err := process.ReadCompanies(companiesPath)
		if err != nil {
			return err
		}

		table, err := dealroom.Load(dealroomExport)
		if err != nil {
			return err
		}
		zap.L().Info("loaded dealroom export",
			zap.String("path", dealroomExport),
			zap.Int("rows", len(table.Rows)),
			zap.Int("columns", len(table.Header)),
		)

		output := dealroomOutput
		if output == "" {
			output = snapshot.DatedPath(cfg.Data.ProcessedDir, "companies_with_dealroom", ".csv", time.Now())
		}

		rep, err := dealroom.Merge(companies, table, output)
		if err != nil {
			return err
		}

		if dealroomJSON {
			raw, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return eris.Wrap(err, "dealroom: marshal report")
			}
			fmt.Println(string(raw))
		}
		return nil
	},
}

func init() {
	dealroomCmd.Flags().StringVar(&dealroomExport, "export", "", "Dealroom export path, .csv or .xlsx (required)")
	dealroomCmd.Flags().StringVar(&dealroomCompanies, "companies", "", "companies CSV path (default: processed dir)")
	dealroomCmd.Flags().StringVar(&dealroomOutput, "output", "", "merged CSV path (default: dated file in processed dir)")
	dealroomCmd.Flags().BoolVar(&dealroomJSON, "json", false, "print the merge report as JSON to stdout")
	_ = dealroomCmd.MarkFlagRequired("export")
	rootCmd.AddCommand(dealroomCmd)
}
