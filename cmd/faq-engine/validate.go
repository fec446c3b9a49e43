// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/faq-engine/internal/export"
	"github.com/pdiddy/faq-engine/internal/quality"
	"github.com/pdiddy/faq-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Re-validate an exported FAQ file",
	Long: `Validate reads an export file (the JSON envelope or a bare array of
records), runs the same checks as generate and prints the report. Fields are
taken as found; no defaults are applied.

The command exits non-zero when any record fails validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	records, report, err := readAndValidate(args[0])
	if err != nil {
		return err
	}

	export.PrintReport(cmd.OutOrStdout(), report)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := export.WriteReport(reportPath, report, quality.Summarize(records)); err != nil {
			return err
		}
		printf(cmd, "wrote %s\n", reportPath)
	}

	if !report.Passed() {
		return fmt.Errorf("%d of %d FAQs failed validation", report.Invalid, report.Total)
	}
	return nil
}

// readAndValidate loads an export file and validates it with the
// configured thresholds.
func readAndValidate(path string) ([]types.FAQRecord, types.ValidationReport, error) {
	records, err := export.ReadRecords(path)
	if err != nil {
		return nil, types.ValidationReport{}, err
	}
	report := quality.New(quality.ThresholdsFromConfig(cfg.Quality)).Validate(records)
	return records, report, nil
}

func init() {
	validateCmd.Flags().String("report", "", "also write the report to this path (.json, .yaml)")

	rootCmd.AddCommand(validateCmd)
}
