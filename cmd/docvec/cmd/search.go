package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docstackhq/docvec/internal/index"
	"github.com/docstackhq/docvec/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed documents",
		Long: `Search embeds the query with the configured provider and returns the
most similar indexed pages. The index is recovered the same way ingest
recovers it: local work-dir copy first, then the remote checkpoint.

Examples:
  docvec search "termination clauses"
  docvec search "quarterly revenue" --limit 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, embedder, cleanup, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	coordinator, err := index.New(cfg, client, embedder)
	if err != nil {
		return err
	}

	artifact, err := coordinator.Recover(ctx)
	if err != nil {
		return err
	}
	if artifact.Count() == 0 {
		return fmt.Errorf("index is empty, run 'docvec ingest' first")
	}

	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := artifact.Search(vector, opts.limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	switch opts.format {
	case "json":
		return formatJSON(cmd, results)
	default:
		return formatText(cmd, query, results)
	}
}

// formatText outputs results in human-readable form.
func formatText(cmd *cobra.Command, query string, results []store.Result) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No results found for %q\n", query)
		return nil
	}

	fmt.Fprintf(out, "Found %d results for %q:\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s, page %d (score: %.2f)\n", i+1, r.Unit.Title, r.Unit.Page, r.Score)
		for _, line := range snippet(r.Unit.Content, 3) {
			fmt.Fprintf(out, "   %s\n", line)
		}
		fmt.Fprintln(out)
	}
	return nil
}

// formatJSON outputs results as a JSON array.
func formatJSON(cmd *cobra.Command, results []store.Result) error {
	type jsonResult struct {
		Title   string  `json:"title"`
		Page    int     `json:"page"`
		Source  string  `json:"source"`
		Score   float32 `json:"score"`
		Content string  `json:"content"`
	}

	output := make([]jsonResult, 0, len(results))
	for _, r := range results {
		output = append(output, jsonResult{
			Title:   r.Unit.Title,
			Page:    r.Unit.Page,
			Source:  r.Unit.Source,
			Score:   r.Score,
			Content: r.Unit.Content,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// snippet returns the first n non-trailing-blank lines of content.
func snippet(content string, n int) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
