package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	result  *domain.IndexResult
	docs    []domain.Document
	found   bool
	stats   domain.IndexStats
	err     error
	indexed []domain.DocumentInput
	uploads []domain.Upload
	deleted string
}

func (m *mockDocumentService) Index(_ context.Context, docs []domain.DocumentInput) (*domain.IndexResult, error) {
	m.indexed = append(m.indexed, docs...)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockDocumentService) Upload(_ context.Context, uploads []domain.Upload) (*domain.IndexResult, error) {
	m.uploads = append(m.uploads, uploads...)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (bool, error) {
	m.deleted = id
	if m.err != nil {
		return false, m.err
	}
	return m.found, nil
}

func (m *mockDocumentService) Stats(_ context.Context) domain.IndexStats {
	return m.stats
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	results  []domain.RankedChunk
	answer   *domain.Answer
	events   []domain.StreamEvent
	err      error
	llm      bool
	question string
	opts     domain.SearchOptions
}

func (m *mockQueryService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.RankedChunk, error) {
	m.question, m.opts = query, opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockQueryService) Ask(_ context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	m.question, m.opts = question, opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockQueryService) AskStream(
	_ context.Context, question string, opts domain.SearchOptions, emit func(domain.StreamEvent) error,
) error {
	m.question, m.opts = question, opts
	for _, ev := range m.events {
		if err := emit(ev); err != nil {
			return err
		}
	}
	return m.err
}

func (m *mockQueryService) LLMAvailable() bool {
	return m.llm
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    *domain.AppSettings
	values      map[string]string
	validateErr error
	setErr      error
	provider    domain.AIProvider
	model       string
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	defaults := domain.DefaultAppSettings()
	return &mockSettingsService{settings: &defaults, values: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) SetChunking(size, overlap int) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.settings.Chunking = domain.ChunkingSettings{Size: size, Overlap: overlap}
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"chunking.size", "chunking.overlap", "embedding.provider"}
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.validateErr
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.validateErr
}

// testServices holds the mocks injected by setupTestServices.
type testServices struct {
	docs     *mockDocumentService
	query    *mockQueryService
	settings *mockSettingsService
}

// setupTestServices injects fresh mocks and clears them when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		docs:     &mockDocumentService{result: &domain.IndexResult{}},
		query:    &mockQueryService{},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{Document: ts.docs, Query: ts.query, Settings: ts.settings})
	t.Cleanup(clearServices)
	return ts
}

func clearServices() {
	documentService = nil
	queryService = nil
	settingsService = nil
	serverSettings = domain.ServerSettings{Addr: domain.DefaultServerAddr, AllowedOrigins: []string{"*"}}
	bootstrap = nil
	closeServices = nil
}

// executeCommand runs the root command with args and returns its output.
// Flags are reset first so values do not leak between tests.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := Execute(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
