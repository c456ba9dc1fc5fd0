package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the REST API for indexing, uploading, listing, deleting and
querying documents. The listen address defaults to server.addr.

Examples:
  docmind serve
  docmind serve --addr 127.0.0.1:9000`,
	Args:        cobra.NoArgs,
	Annotations: engineAnnotation(),
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr setting)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := serverSettings.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := httpapi.NewServer(documentService, queryService, httpapi.Config{
		Addr:           addr,
		AllowedOrigins: serverSettings.AllowedOrigins,
		Version:        version,
	})
	if err != nil {
		return err
	}

	cmd.Printf("DocMind API listening on %s\n", server.Addr())
	return server.Run(cmd.Context())
}
