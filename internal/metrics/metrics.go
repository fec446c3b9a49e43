// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts generation batches and their yield. The CLI runs
// once and exits, so the registry is written to a node-exporter textfile
// instead of being served.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the run's collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	Batches  *prometheus.CounterVec
	Records  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Invalid  prometheus.Gauge
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faq_batches_total",
				Help: "Generation batches executed, by outcome",
			},
			[]string{"category", "outcome"},
		),
		Records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faq_records_yielded_total",
				Help: "FAQ records parsed from generation responses",
			},
			[]string{"category"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faq_generation_seconds",
				Help:    "Latency of one generation batch in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"category"},
		),
		Invalid: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "faq_invalid_records",
				Help: "Records that failed structural validation in the last run",
			},
		),
	}
}

// ObserveBatch records one executed batch.
func (r *Recorder) ObserveBatch(category, outcome string, records int, elapsed time.Duration) {
	r.Batches.WithLabelValues(category, outcome).Inc()
	r.Records.WithLabelValues(category).Add(float64(records))
	r.Duration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// SetInvalid records the invalid count of the final report.
func (r *Recorder) SetInvalid(n int) {
	r.Invalid.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry in text exposition format to path,
// creating the parent directory. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
