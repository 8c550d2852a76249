package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsFn == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsFn(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Printf("Indexed files: %d\n", stats.TotalFiles)
	cmd.Printf("With extracted content: %d\n", stats.IndexedFiles)
	cmd.Printf("Total size: %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
	if len(stats.ByFileType) > 0 {
		cmd.Println("By type:")
		for ft, n := range stats.ByFileType {
			cmd.Printf("  %-10s %d\n", ft, n)
		}
	}
	return nil
}
