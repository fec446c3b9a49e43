// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/faq-engine/pkg/types"
)

// QualityReport is the persisted form of a validation run.
type QualityReport struct {
	Summary  ReportSummary      `json:"summary" yaml:"summary"`
	Stats    types.QualityStats `json:"stats" yaml:"stats"`
	Errors   []string           `json:"errors" yaml:"errors"`
	Warnings []string           `json:"warnings" yaml:"warnings"`
}

// ReportSummary holds the counts of a validation run.
type ReportSummary struct {
	Total    int  `json:"total" yaml:"total"`
	Valid    int  `json:"valid" yaml:"valid"`
	Invalid  int  `json:"invalid" yaml:"invalid"`
	Warnings int  `json:"warnings" yaml:"warnings"`
	Passed   bool `json:"passed" yaml:"passed"`
}

// NewQualityReport renders report entries into self-describing strings.
func NewQualityReport(report types.ValidationReport, stats types.QualityStats) QualityReport {
	q := QualityReport{
		Summary: ReportSummary{
			Total:    report.Total,
			Valid:    report.Valid,
			Invalid:  report.Invalid,
			Warnings: len(report.Warnings),
			Passed:   report.Passed(),
		},
		Stats:    stats,
		Errors:   make([]string, len(report.Errors)),
		Warnings: make([]string, len(report.Warnings)),
	}
	for i, e := range report.Errors {
		q.Errors[i] = e.String()
	}
	for i, w := range report.Warnings {
		q.Warnings[i] = w.String()
	}
	return q
}

// WriteReport persists the report as YAML when path ends in .yaml or .yml,
// JSON otherwise.
func WriteReport(path string, report types.ValidationReport, stats types.QualityStats) error {
	q := NewQualityReport(report, stats)

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(q)
	default:
		data, err = marshalJSON(q, true)
	}
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return writeFile(path, data)
}

// PrintReport writes the human-readable report: counts, then every error
// and warning on its own line.
func PrintReport(w io.Writer, report types.ValidationReport) {
	fmt.Fprintf(w, "Total FAQs: %d\n", report.Total)
	fmt.Fprintf(w, "Valid: %d\n", report.Valid)
	fmt.Fprintf(w, "Invalid: %d\n", report.Invalid)
	fmt.Fprintf(w, "Warnings: %d\n", len(report.Warnings))

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(report.Warnings))
		for _, e := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	switch {
	case !report.Passed():
		fmt.Fprintln(w, "\nFAILED: some FAQs have errors")
	case len(report.Warnings) == 0:
		fmt.Fprintln(w, "\nPASSED: all FAQs are valid with no warnings")
	default:
		fmt.Fprintln(w, "\nPASSED: all FAQs are valid (with warnings)")
	}
}
