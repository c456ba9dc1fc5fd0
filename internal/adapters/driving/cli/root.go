// Package cli provides the docmind command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// version is set at build time.
var version = "dev"

// annotationEngine marks commands that need the document and query services.
const annotationEngine = "docmind/engine"

// Services groups the driving ports used by commands.
type Services struct {
	Document driving.DocumentService
	Query    driving.QueryService
	Settings driving.SettingsService
	Server   domain.ServerSettings

	// Close releases the resources behind the services. Optional.
	Close func() error
}

// Bootstrap builds the services for a command. withEngine is false for
// commands that only need settings, so they work before an embedding
// provider is configured.
type Bootstrap func(ctx context.Context, configPath string, withEngine bool) (*Services, error)

var (
	documentService driving.DocumentService
	queryService    driving.QueryService
	settingsService driving.SettingsService
	serverSettings  = domain.ServerSettings{Addr: domain.DefaultServerAddr, AllowedOrigins: []string{"*"}}

	bootstrap     Bootstrap
	closeServices func() error
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "docmind",
	Short: "Ask questions about your documents",
	Long: `DocMind indexes text and PDF documents into a local vector index and
answers questions about them with retrieval-augmented generation.

Embeddings run offline by default. Configure an LLM with
'docmind settings llm' to enable answers.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docmind/config.toml)")
}

// SetVersion sets the version reported by the version command and the API.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	documentService = s.Document
	queryService = s.Query
	settingsService = s.Settings
	if s.Server.Addr != "" {
		serverSettings = s.Server
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("shutdown: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), configPath, needsEngine(cmd))
	if err != nil {
		return err
	}
	SetServices(s)
	closeServices = s.Close
	return nil
}

func needsEngine(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationEngine] == "true" {
			return true
		}
	}
	return false
}

func engineAnnotation() map[string]string {
	return map[string]string{annotationEngine: "true"}
}
