package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localsearch/filesearch/internal/core/domain"
)

var (
	indexSemantic bool
	indexPrune    bool
	indexMaxBytes int64
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index files under a directory",
	Long: `Walks the given directory, extracting text and building the
keyword index. Pass --semantic to also embed text and images for
meaning-based search.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexSemantic, "semantic", false, "embed text/images for semantic search")
	indexCmd.Flags().BoolVar(&indexPrune, "prune", false, "remove index entries for files no longer present")
	indexCmd.Flags().Int64Var(&indexMaxBytes, "max-bytes", 0, "skip files larger than this many bytes (default: config max_file_bytes; 0 = no limit)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("index service not configured")
	}

	maxBytes := indexMaxBytes
	if !cmd.Flags().Changed("max-bytes") {
		maxBytes = defaultMaxBytes
	}
	semantic := indexSemantic
	if !cmd.Flags().Changed("semantic") {
		semantic = defaultSemantic
	}

	opts := domain.IndexOptions{
		Semantic: semantic,
		Prune:    indexPrune,
		MaxBytes: maxBytes,
	}

	report, err := ingestor.Index(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d files", report.Indexed)
	if report.Skipped > 0 {
		cmd.Printf(", skipped %d", report.Skipped)
	}
	if report.Failed > 0 {
		cmd.Printf(", failed %d", report.Failed)
	}
	if report.Pruned > 0 {
		cmd.Printf(", pruned %d", report.Pruned)
	}
	cmd.Printf(" (run %s).\n", report.RunID)
	return nil
}
