// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the category plan end to end: every category in
// declared order through the batch scheduler, then one validation pass over
// the aggregate. It reports what happened and leaves the pass/fail decision
// to the caller.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/faq-engine/internal/batch"
	"github.com/pdiddy/faq-engine/internal/quality"
	"github.com/pdiddy/faq-engine/pkg/types"
)

// Settings is the resolved plan handed to the driver at construction.
type Settings struct {
	Categories         []types.CategoryTarget
	BatchSize          int
	InterBatchDelay    time.Duration
	InterCategoryDelay time.Duration
}

// SettingsFromConfig extracts the driver settings from cfg.
func SettingsFromConfig(cfg *types.Config) Settings {
	return Settings{
		Categories:         cfg.Categories,
		BatchSize:          cfg.Generation.BatchSize,
		InterBatchDelay:    cfg.Generation.InterBatchDelay,
		InterCategoryDelay: cfg.Generation.InterCategoryDelay,
	}
}

// CategorySummary is the per-category yield of a run.
type CategorySummary struct {
	Name      string
	Requested int
	Generated int
	Batches   int
	Failed    int
}

// Result is the outcome of RunAll.
type Result struct {
	// Records is the raw aggregate in category then batch order, including
	// records that failed validation.
	Records    []types.FAQRecord
	Report     types.ValidationReport
	Categories []CategorySummary
}

// Requested returns the sum of requested counts across categories.
func (r Result) Requested() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Requested
	}
	return n
}

// FailedBatches returns the number of batches that yielded nothing because
// of an error.
func (r Result) FailedBatches() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Failed
	}
	return n
}

// Driver owns the aggregate record sequence for one run.
type Driver struct {
	settings  Settings
	scheduler *batch.Scheduler
	validator *quality.Validator
	w         io.Writer
}

// New returns a Driver. Progress lines are written to w.
func New(settings Settings, scheduler *batch.Scheduler, validator *quality.Validator, w io.Writer) *Driver {
	if validator == nil {
		validator = quality.New(quality.DefaultThresholds())
	}
	if w == nil {
		w = io.Discard
	}
	return &Driver{settings: settings, scheduler: scheduler, validator: validator, w: w}
}

// RunAll generates every category in order and validates the aggregate once.
func (d *Driver) RunAll(ctx context.Context) Result {
	sleep := d.scheduler.Sleep
	if sleep == nil {
		sleep = batch.Sleep
	}

	result := Result{Records: []types.FAQRecord{}}
	for i, cat := range d.settings.Categories {
		batches := batch.BatchCount(cat.Count, d.settings.BatchSize)
		fmt.Fprintf(d.w, "%s: %d FAQs in %d batches\n", cat.Name, cat.Count, batches)

		cr := d.scheduler.Run(ctx, cat.Name, cat.Count, d.settings.BatchSize, d.settings.InterBatchDelay)
		for _, b := range cr.Batches {
			if b.Err != nil {
				fmt.Fprintf(d.w, "  batch %d/%d: failed (%s)\n", b.Request.BatchIndex, b.Request.BatchCount, b.Outcome)
				continue
			}
			fmt.Fprintf(d.w, "  batch %d/%d: %d FAQs\n", b.Request.BatchIndex, b.Request.BatchCount, len(b.Records))
		}
		fmt.Fprintf(d.w, "  total for %s: %d FAQs\n", cat.Name, len(cr.Records))

		result.Records = append(result.Records, cr.Records...)
		result.Categories = append(result.Categories, CategorySummary{
			Name:      cat.Name,
			Requested: cat.Count,
			Generated: len(cr.Records),
			Batches:   len(cr.Batches),
			Failed:    cr.Failed(),
		})

		if i < len(d.settings.Categories)-1 {
			sleep(ctx, d.settings.InterCategoryDelay)
		}
	}

	result.Report = d.validator.Validate(result.Records)
	fmt.Fprintf(d.w, "generated %d FAQs (%d valid, %d invalid)\n",
		result.Report.Total, result.Report.Valid, result.Report.Invalid)
	return result
}
