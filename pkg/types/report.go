// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ReportEntry is a single error or warning tied to a record position.
type ReportEntry struct {
	// Position is the 1-based index of the record in the validated sequence.
	Position int    `json:"position" yaml:"position"`
	Message  string `json:"message" yaml:"message"`
}

// String renders the entry in the form "FAQ #3: Question too short (4 chars)".
func (e ReportEntry) String() string {
	return fmt.Sprintf("FAQ #%d: %s", e.Position, e.Message)
}

// ValidationReport is the outcome of one validation run over a record set.
type ValidationReport struct {
	Total    int           `json:"total" yaml:"total"`
	Valid    int           `json:"valid" yaml:"valid"`
	Invalid  int           `json:"invalid" yaml:"invalid"`
	Errors   []ReportEntry `json:"errors" yaml:"errors"`
	Warnings []ReportEntry `json:"warnings" yaml:"warnings"`
}

// Passed reports whether every record passed the structural checks.
func (r ValidationReport) Passed() bool {
	return r.Invalid == 0
}

// InvalidPositions returns the set of 1-based positions that carry at
// least one structural error.
func (r ValidationReport) InvalidPositions() map[int]bool {
	out := make(map[int]bool, r.Invalid)
	for _, e := range r.Errors {
		out[e.Position] = true
	}
	return out
}

// ValidRecords returns the records of the validated sequence that carry
// no structural errors, preserving order.
func (r ValidationReport) ValidRecords(records []FAQRecord) []FAQRecord {
	bad := r.InvalidPositions()
	out := make([]FAQRecord, 0, len(records))
	for i, rec := range records {
		if bad[i+1] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// QualityStats summarizes the shape of a record set.
type QualityStats struct {
	Total                 int            `json:"total" yaml:"total"`
	ByCategory            map[string]int `json:"category_distribution" yaml:"category_distribution"`
	ByDifficulty          map[string]int `json:"difficulty_distribution" yaml:"difficulty_distribution"`
	BySegment             map[string]int `json:"segment_distribution" yaml:"segment_distribution"`
	AverageQuestionLength float64        `json:"avg_question_length" yaml:"avg_question_length"`
	AverageAnswerLength   float64        `json:"avg_answer_length" yaml:"avg_answer_length"`
	AverageKeywords       float64        `json:"avg_keywords" yaml:"avg_keywords"`
}
