// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the faq-engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/faq-engine/internal/config"
	"github.com/pdiddy/faq-engine/internal/logging"
	"github.com/pdiddy/faq-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Resolved once per invocation by the root pre-run hook.
var (
	cfg    *types.Config
	logger = zap.NewNop()
)

// rootCmd is the base command for the faq-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "faq-engine",
	Short: "Batch generation and validation of banking FAQ datasets",
	Long: `faq-engine asks a generative text service for banking FAQ records in
fixed-size batches per category, parses the free-text replies, validates the
aggregate and writes the result as JSON, JSONL and CSV with a quality report.

Validated records can be kept in a local knowledge base (import, retrieve,
export) or pushed to an Elasticsearch index.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./faq-engine.yaml or ~/.config/faq-engine/faq-engine.yaml)")
	rootCmd.PersistentFlags().String("env", "", "environment overlay to merge from config/config.<env>.yaml")
	rootCmd.PersistentFlags().String("secrets-dir", "", "directory holding credential files (default .secrets/)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	env, _ := cmd.Flags().GetString("env")
	secretsDir, _ := cmd.Flags().GetString("secrets-dir")

	loaded, err := config.Load(config.Options{
		ConfigFile: cfgFile,
		Env:        env,
		SecretsDir: secretsDir,
	})
	if err != nil {
		return err
	}
	cfg = loaded

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return &config.Error{Key: "log.level", Msg: "building logger", Err: err}
	}
	logger = l
	logger.Debug("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("provider", cfg.Model.Provider),
		zap.Int("categories", len(cfg.Categories)),
	)
	return nil
}

// Exit codes. A configuration failure is told apart from a failed run.
const (
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if config.IsConfigError(err) {
		return exitConfig
	}
	return exitFailure
}

// printf writes a command output line to cmd's stdout.
func printf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
