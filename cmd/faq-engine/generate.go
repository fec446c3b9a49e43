// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/faq-engine/internal/batch"
	"github.com/pdiddy/faq-engine/internal/config"
	"github.com/pdiddy/faq-engine/internal/export"
	"github.com/pdiddy/faq-engine/internal/generate"
	"github.com/pdiddy/faq-engine/internal/knowledge"
	"github.com/pdiddy/faq-engine/internal/metrics"
	"github.com/pdiddy/faq-engine/internal/pipeline"
	"github.com/pdiddy/faq-engine/internal/prompt"
	"github.com/pdiddy/faq-engine/internal/quality"
	"github.com/pdiddy/faq-engine/internal/searchindex"
	"github.com/pdiddy/faq-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate, validate and export an FAQ dataset",
	Long: `Generate walks the configured categories in order, requesting each
category's records in fixed-size batches with a pause between calls. Failed
batches are logged and skipped. The aggregate is validated once and written
to the output directory in every configured format, together with
quality_report.json.

The command exits non-zero when any record fails validation.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd)
	if err := config.RequireGeneration(cfg); err != nil {
		return err
	}

	gen, err := generate.New(cfg.Model, nil)
	if err != nil {
		return err
	}
	prompts, err := prompt.New(cfg.Generation.PromptTemplate)
	if err != nil {
		return &config.Error{Key: "generation.prompt_template", Msg: "parsing template", Err: err}
	}

	recorder := metrics.New()
	scheduler := &batch.Scheduler{
		Generator: gen,
		Prompts:   prompts,
		Logger:    logger,
		Observer:  recorder,
	}
	validator := quality.New(quality.ThresholdsFromConfig(cfg.Quality))
	driver := pipeline.New(pipeline.SettingsFromConfig(cfg), scheduler, validator, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("generation started",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.Model),
		zap.Int("categories", len(cfg.Categories)),
		zap.Int("batch_size", cfg.Generation.BatchSize),
	)
	result := driver.RunAll(ctx)
	report := result.Report
	recorder.SetInvalid(report.Invalid)

	now := time.Now()
	env := export.NewEnvelope(result.Records, cfg.Generation.BatchSize, now)
	paths, err := export.WriteAll(cfg.Export.OutputDir, cfg.Export.Formats, env, now)
	if err != nil {
		return err
	}
	reportPath := filepath.Join(cfg.Export.OutputDir, export.ReportFile)
	if err := export.WriteReport(reportPath, report, quality.Summarize(result.Records)); err != nil {
		return err
	}
	for _, p := range append(paths, reportPath) {
		printf(cmd, "wrote %s\n", p)
	}

	printf(cmd, "\nrequested %d, generated %d, failed batches %d\n",
		result.Requested(), len(result.Records), result.FailedBatches())
	export.PrintReport(cmd.OutOrStdout(), report)

	doImport, _ := cmd.Flags().GetBool("import")
	doIndex, _ := cmd.Flags().GetBool("index")
	if err := handOff(ctx, cmd.OutOrStdout(), doImport, doIndex, result.Records, report, env.Metadata.RunID); err != nil {
		return err
	}

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	logger.Info("generation finished",
		zap.String("run_id", env.Metadata.RunID),
		zap.Int("records", report.Total),
		zap.Int("invalid", report.Invalid),
	)
	if !report.Passed() {
		return fmt.Errorf("%d of %d FAQs failed validation", report.Invalid, report.Total)
	}
	return nil
}

// handOff stores and indexes the valid records of a finished run. An
// interrupted run still delivers what it generated, so ctx cancellation is
// not passed on.
func handOff(ctx context.Context, w io.Writer, doImport, doIndex bool, records []types.FAQRecord, report types.ValidationReport, runID string) error {
	ctx = context.WithoutCancel(ctx)

	if doImport {
		store, err := knowledge.NewStore(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Import(ctx, records, report, runID, w); err != nil {
			return err
		}
	}

	if doIndex {
		ix, err := searchindex.New(cfg.Search)
		if err != nil {
			return err
		}
		if _, err := ix.Index(ctx, records, report, w); err != nil {
			return err
		}
	}
	return nil
}

// applyGenerateFlags lets explicit flags win over the resolved configuration.
func applyGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Export.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("formats") {
		cfg.Export.Formats, _ = flags.GetStringSlice("formats")
	}
	if flags.Changed("batch-size") {
		cfg.Generation.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile, _ = flags.GetString("metrics-textfile")
	}
}

func init() {
	generateCmd.Flags().String("output-dir", "output", "directory for exported files and the quality report")
	generateCmd.Flags().StringSlice("formats", []string{export.FormatJSON}, "export formats: json, jsonl, csv")
	generateCmd.Flags().Int("batch-size", 10, "records requested per generation call")
	generateCmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this .prom file")
	generateCmd.Flags().Bool("import", false, "store valid records in the knowledge base")
	generateCmd.Flags().Bool("index", false, "push valid records to the Elasticsearch index")

	rootCmd.AddCommand(generateCmd)
}
