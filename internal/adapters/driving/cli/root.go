// Package cli wires the core services into a cobra command tree: index,
// search, stats, clear, version.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/localsearch/filesearch/internal/core/domain"
	"github.com/localsearch/filesearch/internal/core/ports/driving"
	"github.com/localsearch/filesearch/internal/logger"
)

var version = "0.1.0"

var (
	ingestor driving.Ingestor
	searcher driving.HybridSearcher
	statsFn  func(ctx context.Context) (domain.Stats, error)

	verbose bool

	defaultMaxBytes int64
	defaultWeight   float64
	defaultSemantic bool
)

var rootCmd = &cobra.Command{
	Use:           "filesearch",
	Short:         "Local, offline hybrid file search",
	Long:          `Indexes files on disk and searches them by keyword, meaning, or both, entirely offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(versionCmd)
}

// Init wires the concrete services the command tree dispatches to, plus
// config-derived flag defaults. Must be called once before Execute.
func Init(
	ing driving.Ingestor,
	search driving.HybridSearcher,
	stats func(ctx context.Context) (domain.Stats, error),
	maxBytes int64,
	keywordWeight float64,
	semantic bool,
) {
	ingestor = ing
	searcher = search
	statsFn = stats
	defaultMaxBytes = maxBytes
	defaultWeight = keywordWeight
	defaultSemantic = semantic
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return rootCmd.Execute()
}
