// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/faq-engine/internal/batch"
	"github.com/pdiddy/faq-engine/internal/generate"
	"github.com/pdiddy/faq-engine/internal/prompt"
	"github.com/pdiddy/faq-engine/internal/quality"
	"github.com/pdiddy/faq-engine/pkg/types"
)

var longAnswer = "A complete and helpful answer about the product. " +
	"It explains fees, eligibility and how to apply through online banking."

// fakeService returns two records per call: one valid, one with an
// out-of-range difficulty. Prompts mentioning a category in fail get an error.
func fakeService(fail map[string]bool, prompts *[]string) generate.Generator {
	call := 0
	return generate.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		*prompts = append(*prompts, p)
		call++
		for cat := range fail {
			if strings.Contains(p, `"`+cat+`"`) {
				return "", errors.New("service unavailable")
			}
		}
		return fmt.Sprintf("```json\n"+`[
  {"question": "What is question %d?", "answer": %q, "keywords": ["a"]},
  {"question": "What is odd %d?", "answer": %q, "keywords": ["b"], "difficulty": "extreme"}
]`+"\n```", call, longAnswer, call, longAnswer), nil
	})
}

type sleepRecorder struct{ calls []time.Duration }

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) { r.calls = append(r.calls, d) }

func newDriver(t *testing.T, gen generate.Generator, sleeps *sleepRecorder, settings Settings, w *bytes.Buffer) *Driver {
	t.Helper()
	pb, err := prompt.New(prompt.DefaultTemplate)
	require.NoError(t, err)
	s := &batch.Scheduler{Generator: gen, Prompts: pb, Logger: zap.NewNop(), Sleep: sleeps.sleep}
	return New(settings, s, quality.New(quality.DefaultThresholds()), w)
}

func TestRunAll_OrderAndDelays(t *testing.T) {
	var prompts []string
	sleeps := &sleepRecorder{}
	var out bytes.Buffer
	settings := Settings{
		Categories:         []types.CategoryTarget{{Name: "Loans", Count: 25}, {Name: "Cards", Count: 5}},
		BatchSize:          10,
		InterBatchDelay:    2 * time.Second,
		InterCategoryDelay: time.Second,
	}

	result := newDriver(t, fakeService(nil, &prompts), sleeps, settings, &out).RunAll(context.Background())

	require.Len(t, prompts, 4)
	assert.Contains(t, prompts[0], `"Loans"`)
	assert.Contains(t, prompts[2], `"Loans"`)
	assert.Contains(t, prompts[3], `"Cards"`)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, time.Second}, sleeps.calls,
		"inter-category pause between categories only")

	require.Len(t, result.Records, 8)
	for _, r := range result.Records[:6] {
		assert.Equal(t, "Loans", r.Category)
	}
	for _, r := range result.Records[6:] {
		assert.Equal(t, "Cards", r.Category)
	}

	assert.Equal(t, 8, result.Report.Total)
	assert.Equal(t, 4, result.Report.Valid)
	assert.Equal(t, 4, result.Report.Invalid)
	assert.Equal(t, "FAQ #2: Invalid difficulty 'extreme'", result.Report.Errors[0].String())
	assert.Len(t, result.Records, result.Report.Total, "invalid records stay in the aggregate")

	assert.Equal(t, []CategorySummary{
		{Name: "Loans", Requested: 25, Generated: 6, Batches: 3},
		{Name: "Cards", Requested: 5, Generated: 2, Batches: 1},
	}, result.Categories)
	assert.Equal(t, 30, result.Requested())

	progress := out.String()
	assert.Contains(t, progress, "Loans: 25 FAQs in 3 batches\n")
	assert.Contains(t, progress, "  batch 3/3: 2 FAQs\n")
	assert.Contains(t, progress, "Cards: 5 FAQs in 1 batches\n")
	assert.Contains(t, progress, "generated 8 FAQs (4 valid, 4 invalid)\n")
}

func TestRunAll_FailedCategoryDoesNotStopRun(t *testing.T) {
	var prompts []string
	sleeps := &sleepRecorder{}
	var out bytes.Buffer
	settings := Settings{
		Categories: []types.CategoryTarget{{Name: "Loans", Count: 20}, {Name: "Cards", Count: 10}},
		BatchSize:  10,
	}

	result := newDriver(t, fakeService(map[string]bool{"Loans": true}, &prompts), sleeps, settings, &out).RunAll(context.Background())

	assert.Len(t, prompts, 3)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Cards", result.Records[0].Category)
	assert.Equal(t, 2, result.FailedBatches())
	assert.Equal(t, 0, result.Categories[0].Generated)
	assert.Contains(t, out.String(), "  batch 1/2: failed (transport_error)\n")
}

func TestRunAll_ZeroCountCategory(t *testing.T) {
	var prompts []string
	sleeps := &sleepRecorder{}
	settings := Settings{
		Categories:         []types.CategoryTarget{{Name: "Empty", Count: 0}, {Name: "Cards", Count: 3}},
		BatchSize:          10,
		InterCategoryDelay: time.Second,
	}

	result := newDriver(t, fakeService(nil, &prompts), sleeps, settings, &bytes.Buffer{}).RunAll(context.Background())

	assert.Len(t, prompts, 1)
	assert.Equal(t, []time.Duration{time.Second}, sleeps.calls)
	assert.Equal(t, 0, result.Categories[0].Batches)
	assert.Len(t, result.Records, 2)
}

func TestRunAll_NoCategories(t *testing.T) {
	var prompts []string
	result := newDriver(t, fakeService(nil, &prompts), &sleepRecorder{}, Settings{BatchSize: 10}, &bytes.Buffer{}).RunAll(context.Background())

	assert.Empty(t, prompts)
	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.Report.Total)
	assert.True(t, result.Report.Passed())
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &types.Config{
		Generation: types.GenerationConfig{BatchSize: 7, InterBatchDelay: time.Second, InterCategoryDelay: time.Millisecond},
		Categories: []types.CategoryTarget{{Name: "A", Count: 3}},
	}
	assert.Equal(t, Settings{
		Categories:         cfg.Categories,
		BatchSize:          7,
		InterBatchDelay:    time.Second,
		InterCategoryDelay: time.Millisecond,
	}, SettingsFromConfig(cfg))
}
