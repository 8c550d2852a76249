package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed files",
	Long:  `Drops every indexed file, its extracted content, and its vectors. Does not touch files on disk.`,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("index service not configured")
	}

	if !clearYes && !confirmClear(cmd) {
		cmd.Println("Aborted.")
		return nil
	}

	if err := ingestor.Clear(context.Background()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

// confirmClear prompts on an interactive terminal; on a non-terminal
// stdin (piped input, CI) it refuses by default, requiring --yes.
func confirmClear(cmd *cobra.Command) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false
	}
	cmd.Print("This will remove all indexed files. Continue? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
