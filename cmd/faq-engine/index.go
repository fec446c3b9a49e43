// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/faq-engine/internal/searchindex"
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Push the valid records of an export file to Elasticsearch",
	Long: `Index validates an export file and bulk-indexes the records without
structural errors into the configured Elasticsearch index. Document IDs are
derived from category and question, so re-indexing replaces documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	records, report, err := readAndValidate(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("index") {
		cfg.Search.Index, _ = cmd.Flags().GetString("index")
	}
	ix, err := searchindex.New(cfg.Search)
	if err != nil {
		return err
	}

	summary, err := ix.Index(cmd.Context(), records, report, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d FAQ(s) failed indexing", summary.Failed)
	}
	return nil
}

func init() {
	indexCmd.Flags().String("index", "faqs", "target Elasticsearch index")

	rootCmd.AddCommand(indexCmd)
}
