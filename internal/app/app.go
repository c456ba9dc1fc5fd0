// Package app assembles the DocMind services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docmind/internal/adapters/driven/ai"
	"github.com/custodia-labs/docmind/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/bolt"
	filestore "github.com/custodia-labs/docmind/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docmind/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docmind/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/services"
	"github.com/custodia-labs/docmind/internal/logger"
	"github.com/custodia-labs/docmind/internal/normalisers/pdf"
	"github.com/custodia-labs/docmind/internal/normalisers/plaintext"
	"github.com/custodia-labs/docmind/internal/postprocessors"
	"github.com/custodia-labs/docmind/internal/postprocessors/chunker"
)

// EnvAPIKey fills empty embedding and LLM API keys for providers that need one.
const EnvAPIKey = "OPENAI_API_KEY"

// Options control how the container finds its configuration.
type Options struct {
	// ConfigPath is the config file. Defaults to ~/.docmind/config.toml.
	ConfigPath string

	// HomeDir is the DocMind home directory used for defaults.
	// Defaults to ~/.docmind.
	HomeDir string
}

// Container holds the wired services.
//
// Settings are available as soon as New returns. The document and query
// services exist only after Open, because they need a working embedder.
type Container struct {
	home     string
	settings *services.SettingsService

	ai     *ai.InitResult
	store  driven.SnapshotStore
	engine *services.Engine

	Document *services.DocumentService
	Query    *services.QueryService
	Warnings []string
}

// New loads .env files and the config file and returns a container with
// the settings service ready.
func New(opts Options) (*Container, error) {
	home := opts.HomeDir
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		home = filepath.Join(userHome, ".docmind")
	}

	if err := file.LoadDotEnv(".env", filepath.Join(home, ".env")); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(home, file.ConfigFile)
	}
	configStore, err := file.NewConfigStoreAt(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open config %s: %w", domain.ErrConfiguration, configPath, err)
	}
	logger.Debug("Using config %s", configPath)

	return &Container{
		home:     home,
		settings: services.NewSettingsService(configStore, ai.NewConfigValidator()),
	}, nil
}

// Settings returns the settings service.
func (c *Container) Settings() *services.SettingsService {
	return c.settings
}

// AppSettings returns the effective settings: stored values with defaults
// applied, then environment fallbacks for API keys and the data directory.
func (c *Container) AppSettings() (*domain.AppSettings, error) {
	settings, err := c.settings.Get()
	if err != nil {
		return nil, err
	}
	applyEnv(settings)
	if settings.Storage.DataDir == "" {
		settings.Storage.DataDir = filepath.Join(c.home, "data")
	}
	return settings, nil
}

func applyEnv(settings *domain.AppSettings) {
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return
	}
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider.RequiresAPIKey() {
		settings.Embedding.APIKey = key
	}
	if settings.LLM.APIKey == "" && settings.LLM.Provider.RequiresAPIKey() {
		settings.LLM.APIKey = key
	}
}

// Open creates the AI services, the snapshot store and the engine, restores
// the persisted snapshot and builds the document and query services.
// An unavailable LLM is recorded in Warnings; answering is then disabled.
func (c *Container) Open(ctx context.Context) error {
	if c.engine != nil {
		return nil
	}

	settings, err := c.AppSettings()
	if err != nil {
		return err
	}
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}

	chunk, err := postprocessors.NewDefaultRegistry().Build(chunker.Name, postprocessors.ChunkerConfig(settings.Chunking))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	aiResult, err := ai.Init(settings)
	if err != nil {
		return err
	}
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	store, err := OpenSnapshotStore(settings.Storage)
	if err != nil {
		aiResult.Close()
		return err
	}

	engine, err := services.NewEngine(services.EngineConfig{
		Chunker:  chunk,
		Embedder: aiResult.EmbeddingService,
		Store:    store,
		NewIndex: flat.Factory,
		Strict:   settings.Storage.Strict,
	})
	if err == nil {
		err = engine.Load(ctx)
	}
	if err != nil {
		store.Close()
		aiResult.Close()
		return err
	}

	prompts, err := file.NewPromptStore(filepath.Join(c.home, "prompts"))
	if err != nil {
		store.Close()
		aiResult.Close()
		return err
	}

	c.ai = aiResult
	c.store = store
	c.engine = engine
	c.Warnings = aiResult.Warnings
	c.Document = services.NewDocumentService(engine, plaintext.New(), pdf.New())
	c.Query = services.NewQueryService(engine, aiResult.LLMService, settings.LLM.MaxTokens)
	c.Query.SetPromptStore(prompts)

	stats := engine.Stats()
	logger.Debug("Engine ready: %d documents, %d chunks, %s store", stats.Documents, stats.Chunks, settings.Storage.Backend)
	return nil
}

// Close releases the snapshot store and AI services.
func (c *Container) Close() error {
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close snapshot store: %w", err))
		}
		c.store = nil
	}
	if c.ai != nil {
		c.ai.Close()
		c.ai = nil
	}
	c.engine = nil
	return errors.Join(errs...)
}

// OpenSnapshotStore returns the snapshot store selected by the storage settings.
func OpenSnapshotStore(settings domain.StorageSettings) (driven.SnapshotStore, error) {
	var (
		store driven.SnapshotStore
		err   error
	)
	switch settings.Backend {
	case domain.StorageSQLite, "":
		store, err = sqlite.NewStore(settings.DataDir)
	case domain.StorageFile:
		store, err = filestore.NewStore(settings.DataDir)
	case domain.StorageBolt:
		store, err = bolt.NewStore(settings.DataDir)
	case domain.StorageMemory:
		store = memory.NewSnapshotStore()
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrConfiguration, settings.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", settings.Backend, err)
	}
	return store, nil
}
