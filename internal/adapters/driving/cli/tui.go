package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui"
	"github.com/custodia-labs/docmind/internal/core/domain"
)

var (
	tuiTopK        int
	tuiTemperature float64
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for DocMind.

The TUI lets you ask questions, browse the sources behind each answer,
and list or delete indexed documents with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Ask / Select
  n        - New question
  d        - Delete document
  Esc      - Back / Cancel
  ?        - Toggle help
  q        - Quit`,
	Args:        cobra.NoArgs,
	Annotations: engineAnnotation(),
	RunE:        runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to retrieve")
	tuiCmd.Flags().Float64VarP(&tuiTemperature, "temperature", "t", domain.DefaultTemperature, "sampling temperature (0-2)")
	rootCmd.AddCommand(tuiCmd)
}

func newTUIApp(cmd *cobra.Command) (*tui.App, error) {
	app, err := tui.NewApp(&tui.Ports{
		Query:    queryService,
		Document: documentService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.WithContext(ctx).
		WithSearchOptions(domain.SearchOptions{TopK: tuiTopK, Temperature: tuiTemperature}), nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp(cmd)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
