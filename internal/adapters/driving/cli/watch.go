package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/adapters/driving/watcher"
)

var (
	watchScan     bool
	watchDebounce int
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index files as they appear in a directory",
	Long: `Watch a directory and index .txt, .md, and .pdf files when they are
created or written. Rewriting a file replaces the document indexed for it
during this run; removing it deletes the document. Stop with Ctrl+C.`,
	Args:        cobra.ExactArgs(1),
	Annotations: engineAnnotation(),
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchScan, "scan", false, "index supported files already in the directory")
	watchCmd.Flags().IntVar(&watchDebounce, "debounce-ms", int(watcher.DefaultDebounce.Milliseconds()),
		"quiet period before a changed file is indexed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	w, err := watcher.New(documentService, watcher.Config{
		Dir:      args[0],
		Debounce: time.Duration(watchDebounce) * time.Millisecond,
		Scan:     watchScan,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for documents (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
