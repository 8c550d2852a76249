package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/filesearch/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchMode   string
	searchWeight float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed files",
	Long: `Searches the index by keyword (BM25), meaning (vector similarity),
or both fused with weighted reciprocal rank fusion. --mode selects the
backend: keyword, semantic, hybrid (default), or image.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: keyword, semantic, hybrid, image")
	searchCmd.Flags().Float64VarP(&searchWeight, "weight", "w", 0, "keyword weight in [0,1] for hybrid mode (default: config keyword_weight)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searcher == nil {
		return errors.New("search service not configured")
	}
	query := args[0]
	ctx := context.Background()

	var (
		results []domain.SearchResult
		err     error
	)

	switch searchMode {
	case "keyword":
		results, err = searcher.KeywordSearch(ctx, query, searchLimit)
	case "semantic":
		results, err = searcher.SemanticSearch(ctx, query, searchLimit)
	case "image":
		results, err = searcher.ImageSearch(ctx, query, searchLimit)
	case "hybrid", "":
		weight := searchWeight
		if !cmd.Flags().Changed("weight") {
			weight = defaultWeight
		}
		results, err = searcher.HybridSearch(ctx, query, searchLimit, weight)
	default:
		return fmt.Errorf("unknown search mode %q: %w", searchMode, domain.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Path, r.Score)
		if r.Preview != "" {
			cmd.Printf("      %s\n", r.Preview)
		}
	}
	return nil
}
