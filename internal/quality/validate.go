// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality certifies FAQ records against the structural contract
// and a set of heuristic quality checks.
//
// Structural violations make a record invalid. Heuristic findings are
// warnings only and never change the valid/invalid counts.
package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/faq-engine/pkg/types"
)

// sentenceBreak splits text into sentence-like segments.
var sentenceBreak = regexp.MustCompile(`[.!?]+`)

// minSegmentsForRepetition is the number of sentence segments below which
// the repetition check is skipped.
const minSegmentsForRepetition = 3

// Thresholds holds the heuristic bounds. Length bounds are inclusive.
type Thresholds struct {
	MinQuestionLength   int
	MaxQuestionLength   int
	MinAnswerLength     int
	MaxAnswerLength     int
	MinKeywords         int
	MaxKeywords         int
	RepetitionThreshold float64
}

// DefaultThresholds returns the standard quality bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinQuestionLength:   10,
		MaxQuestionLength:   500,
		MinAnswerLength:     100,
		MaxAnswerLength:     2000,
		MinKeywords:         1,
		MaxKeywords:         10,
		RepetitionThreshold: 0.3,
	}
}

// ThresholdsFromConfig overlays configured bounds on the defaults. Zero
// values keep the default.
func ThresholdsFromConfig(cfg types.QualityConfig) Thresholds {
	t := DefaultThresholds()
	setIfPositive(&t.MinQuestionLength, cfg.MinQuestionLength)
	setIfPositive(&t.MaxQuestionLength, cfg.MaxQuestionLength)
	setIfPositive(&t.MinAnswerLength, cfg.MinAnswerLength)
	setIfPositive(&t.MaxAnswerLength, cfg.MaxAnswerLength)
	setIfPositive(&t.MinKeywords, cfg.MinKeywords)
	setIfPositive(&t.MaxKeywords, cfg.MaxKeywords)
	if cfg.RepetitionThreshold > 0 {
		t.RepetitionThreshold = cfg.RepetitionThreshold
	}
	return t
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Validator applies the quality contract. It holds no state between runs.
type Validator struct {
	thresholds Thresholds
}

// New returns a Validator using t.
func New(t Thresholds) *Validator {
	return &Validator{thresholds: t}
}

// Validate checks records with the default thresholds.
func Validate(records []types.FAQRecord) types.ValidationReport {
	return New(DefaultThresholds()).Validate(records)
}

// Validate checks every record and returns the aggregate report. Records
// are only read. The result depends on nothing but the input, so
// validating the same sequence twice yields identical reports.
func (v *Validator) Validate(records []types.FAQRecord) types.ValidationReport {
	report := types.ValidationReport{
		Total:    len(records),
		Errors:   []types.ReportEntry{},
		Warnings: []types.ReportEntry{},
	}

	for i, rec := range records {
		pos := i + 1
		errs, warns := v.check(rec)
		for _, msg := range errs {
			report.Errors = append(report.Errors, types.ReportEntry{Position: pos, Message: msg})
		}
		for _, msg := range warns {
			report.Warnings = append(report.Warnings, types.ReportEntry{Position: pos, Message: msg})
		}
		if len(errs) == 0 {
			report.Valid++
		} else {
			report.Invalid++
		}
	}
	return report
}

// check runs all structural and heuristic checks on one record. Every
// check runs even after an earlier one failed.
func (v *Validator) check(rec types.FAQRecord) (errs, warns []string) {
	t := v.thresholds

	question := strings.TrimSpace(rec.Question)
	answer := strings.TrimSpace(rec.Answer)

	// Structural.
	for _, f := range []struct{ name, value string }{
		{"question", question},
		{"answer", answer},
		{"category", strings.TrimSpace(rec.Category)},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Sprintf("Missing required field '%s'", f.name))
		}
	}
	if rec.KeywordsMalformed {
		errs = append(errs, "Keywords must be a list")
	}
	if (rec.Difficulty != "" || rec.DifficultyBlank) && !rec.Difficulty.Valid() {
		errs = append(errs, fmt.Sprintf("Invalid difficulty '%s'", rec.Difficulty))
	}
	if (rec.Segment != "" || rec.SegmentBlank) && !rec.Segment.Valid() {
		errs = append(errs, fmt.Sprintf("Invalid segment '%s'", rec.Segment))
	}

	// Heuristic.
	if question != "" {
		n := utf8.RuneCountInString(question)
		switch {
		case n < t.MinQuestionLength:
			warns = append(warns, fmt.Sprintf("Question too short (%d chars)", n))
		case n > t.MaxQuestionLength:
			warns = append(warns, fmt.Sprintf("Question too long (%d chars)", n))
		}
		if !strings.HasSuffix(question, "?") {
			warns = append(warns, "Question doesn't end with '?'")
		}
	}

	if answer != "" {
		n := utf8.RuneCountInString(answer)
		switch {
		case n < t.MinAnswerLength:
			warns = append(warns, fmt.Sprintf("Answer too short (%d chars)", n))
		case n > t.MaxAnswerLength:
			warns = append(warns, fmt.Sprintf("Answer too long (%d chars)", n))
		}
	}

	if rec.Keywords != nil && !rec.KeywordsMalformed {
		n := len(rec.Keywords)
		switch {
		case n < t.MinKeywords:
			warns = append(warns, fmt.Sprintf("Too few keywords (%d)", n))
		case n > t.MaxKeywords:
			warns = append(warns, fmt.Sprintf("Too many keywords (%d)", n))
		}
	}

	if HasRepetitiveContent(answer, t.RepetitionThreshold) {
		warns = append(warns, "Answer may have repetitive content")
	}

	return errs, warns
}

// HasRepetitiveContent reports whether one sentence dominates text. The
// text is split on sentence-terminal punctuation; the pieces, including
// the empty piece after a final period, form the denominator and gate the
// check (fewer than three are never flagged). Only non-empty pieces are
// counted, trimmed and case-folded.
func HasRepetitiveContent(text string, threshold float64) bool {
	pieces := sentenceBreak.Split(text, -1)
	if len(pieces) < minSegmentsForRepetition {
		return false
	}

	counts := make(map[string]int, len(pieces))
	most := 0
	for _, s := range pieces {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		counts[s]++
		if counts[s] > most {
			most = counts[s]
		}
	}
	return float64(most)/float64(len(pieces)) > threshold
}
