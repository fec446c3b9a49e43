// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/faq-engine/internal/knowledge"
	"github.com/pdiddy/faq-engine/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the FAQ knowledge base (import, retrieve, export)",
	Long: `Knowledge manages a local SQLite knowledge base of validated FAQ records
with FTS5 full-text indexing. Use subcommands to import export files, query
stored records, or export them again.`,
}

// --- import subcommand ---

var knowledgeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store the valid records of an export file",
	Long: `Import validates an export file and stores every record without
structural errors. A record whose category and question are already stored
replaces the stored copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeImport,
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	records, report, err := readAndValidate(args[0])
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Import(cmd.Context(), records, report, uuid.NewString(), cmd.OutOrStdout())
	return err
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the knowledge base with full-text search and filters",
	Long: `Retrieve searches stored FAQs using FTS5 full-text search over
question, answer and keywords, structured filters (category, difficulty,
segment, keyword), or a combination of both.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --category, --difficulty, --segment, or --keyword")
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatRetrieveOutput(w io.Writer, results []knowledge.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-50s  %-20s  %s\n",
		"Rank", "ID", "Question", "Category", "Difficulty")
	fmt.Fprintln(w, strings.Repeat("-", 102))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-12s  %-50s  %-20s  %s\n",
			i+1, r.ID, truncate(r.Question, 50), truncate(r.Category, 20), r.Difficulty)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base to YAML or JSON",
	Long: `Export writes the full knowledge base (or a filtered subset) to
<knowledge dir>/export.yaml or export.json. Supports the same filter flags
as retrieve for partial exports.`,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "json":
	case "":
		format = "yaml"
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = filepath.Join(cfg.Knowledge.Dir, "export."+format)
	}

	n, err := store.Export(cmd.Context(), queryOptsFromFlags(cmd, args), path)
	if err != nil {
		return err
	}
	printf(cmd, "Exported %d FAQs to %s\n", n, path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*knowledge.Store, error) {
	flags := cmd.Flags()
	if flags.Changed("knowledge-dir") {
		cfg.Knowledge.Dir, _ = flags.GetString("knowledge-dir")
	}
	if flags.Changed("max-results") {
		cfg.Knowledge.MaxResults, _ = flags.GetInt("max-results")
	}
	return knowledge.NewStore(cfg.Knowledge)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	category, _ := cmd.Flags().GetString("category")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	segment, _ := cmd.Flags().GetString("segment")
	keywords, _ := cmd.Flags().GetStringArray("keyword")
	limit, _ := cmd.Flags().GetInt("limit")

	return knowledge.QueryOptions{
		Query:      queryText,
		Category:   category,
		Difficulty: types.Difficulty(difficulty),
		Segment:    types.Segment(segment),
		Keywords:   keywords,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command, purpose string) {
	cmd.Flags().String("query", "", "full-text search query"+purpose)
	cmd.Flags().String("category", "", "filter by category"+purpose)
	cmd.Flags().String("difficulty", "", "filter by difficulty: basic, intermediate, advanced"+purpose)
	cmd.Flags().String("segment", "", "filter by segment: retail, business, wealth_management"+purpose)
	cmd.Flags().StringArray("keyword", nil, "filter by keyword, repeatable (all must match)"+purpose)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	knowledgeCmd.PersistentFlags().String("knowledge-dir", "knowledge", "directory holding faqs.db")
	knowledgeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	// Retrieve flags.
	addFilterFlags(knowledgeRetrieveCmd, "")
	knowledgeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	addFilterFlags(knowledgeExportCmd, " for partial export")
	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	knowledgeExportCmd.Flags().String("output", "", "export path (default <knowledge dir>/export.<format>)")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeImportCmd)
	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
