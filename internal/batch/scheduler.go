// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch splits a category's requested count into fixed-size
// generation calls and runs them strictly in order with a fixed pause
// between calls. A failed call yields zero records; it is logged, never
// retried, and never stops the remaining batches.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/faq-engine/internal/generate"
	"github.com/pdiddy/faq-engine/internal/httputil"
	"github.com/pdiddy/faq-engine/internal/parse"
	"github.com/pdiddy/faq-engine/pkg/types"
)

// Batch outcomes reported to the Observer.
const (
	OutcomeOK             = "ok"
	OutcomeEmpty          = "empty"
	OutcomeTransportError = "transport_error"
	OutcomeRateLimited    = "rate_limited"
	OutcomeDecodeError    = "decode_error"
	OutcomePromptError    = "prompt_error"
)

// PromptBuilder renders the prompt for one batch.
type PromptBuilder interface {
	Build(req types.BatchRequest) (string, error)
}

// Observer receives one notification per executed batch.
type Observer interface {
	ObserveBatch(category, outcome string, records int, elapsed time.Duration)
}

// SleepFunc pauses between batches. Tests substitute a recorder.
type SleepFunc func(ctx context.Context, d time.Duration)

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// BatchOutcome is the result of one generation call: either records or an
// empty set with the cause recorded in Err.
type BatchOutcome struct {
	Request types.BatchRequest
	Records []types.FAQRecord
	Outcome string
	Err     error
}

// CategoryResult aggregates the batches of one category.
type CategoryResult struct {
	Category  string
	Requested int
	Records   []types.FAQRecord
	Batches   []BatchOutcome
}

// Failed returns the number of batches that yielded nothing because of an error.
func (r CategoryResult) Failed() int {
	n := 0
	for _, b := range r.Batches {
		if b.Err != nil {
			n++
		}
	}
	return n
}

// Scheduler sequences the generation calls for a category.
type Scheduler struct {
	Generator generate.Generator
	Prompts   PromptBuilder
	Logger    *zap.Logger
	Observer  Observer
	Sleep     SleepFunc
}

// BatchCount returns ceil(total/size), or 0 when total is not positive.
func BatchCount(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}

// Run issues ceil(totalCount/batchSize) generation calls for category in
// increasing batch order, pausing interBatchDelay between consecutive
// calls. One call is in flight at a time.
func (s *Scheduler) Run(ctx context.Context, category string, totalCount, batchSize int, interBatchDelay time.Duration) CategoryResult {
	logger := s.logger().With(zap.String("category", category))
	sleep := s.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	result := CategoryResult{
		Category:  category,
		Requested: totalCount,
		Records:   []types.FAQRecord{},
	}

	batchCount := BatchCount(totalCount, batchSize)
	for batchIndex := 1; batchIndex <= batchCount; batchIndex++ {
		req := types.BatchRequest{
			Category:   category,
			BatchIndex: batchIndex,
			BatchCount: batchCount,
			Size:       batchSize,
		}

		start := time.Now()
		outcome := s.runBatch(ctx, req)
		elapsed := time.Since(start)

		if outcome.Err != nil {
			logger.Warn("batch yielded no records",
				zap.Int("batch", batchIndex),
				zap.Int("batches", batchCount),
				zap.String("outcome", outcome.Outcome),
				zap.Error(outcome.Err),
			)
		} else {
			logger.Debug("batch complete",
				zap.Int("batch", batchIndex),
				zap.Int("batches", batchCount),
				zap.Int("records", len(outcome.Records)),
			)
		}
		if s.Observer != nil {
			s.Observer.ObserveBatch(category, outcome.Outcome, len(outcome.Records), elapsed)
		}

		result.Batches = append(result.Batches, outcome)
		result.Records = append(result.Records, outcome.Records...)

		if batchIndex < batchCount {
			sleep(ctx, interBatchDelay)
		}
	}

	return result
}

// runBatch performs one generation call and parses its response. Every
// failure is folded into the returned outcome.
func (s *Scheduler) runBatch(ctx context.Context, req types.BatchRequest) BatchOutcome {
	out := BatchOutcome{Request: req, Records: []types.FAQRecord{}}

	prompt, err := s.Prompts.Build(req)
	if err != nil {
		out.Outcome, out.Err = OutcomePromptError, err
		return out
	}

	raw, err := s.Generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = generate.ErrEmptyResponse
	}
	if err != nil {
		out.Outcome = OutcomeTransportError
		switch {
		case errors.Is(err, generate.ErrEmptyResponse):
			out.Outcome = OutcomeEmpty
		case errors.Is(err, httputil.ErrRateLimited):
			out.Outcome = OutcomeRateLimited
		}
		out.Err = fmt.Errorf("batch %d/%d: %w", req.BatchIndex, req.BatchCount, err)
		return out
	}

	records, err := parse.Extract(raw, req.Category)
	if err != nil {
		out.Outcome = OutcomeDecodeError
		out.Err = fmt.Errorf("batch %d/%d: %w", req.BatchIndex, req.BatchCount, err)
		return out
	}

	out.Outcome = OutcomeOK
	out.Records = records
	return out
}

func (s *Scheduler) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
