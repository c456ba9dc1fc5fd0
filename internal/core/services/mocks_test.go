package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// mockEmbedder produces deterministic vectors from word hashes.
// Texts containing failOn are rejected.
type mockEmbedder struct {
	mu     sync.Mutex
	dim    int
	failOn string
	calls  int
}

func newMockEmbedder(dim int) *mockEmbedder {
	return &mockEmbedder{dim: dim}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, fmt.Errorf("%w: rejected %q", domain.ErrEmbeddingFailed, m.failOn)
	}
	vec := make([]float32, m.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(m.dim)]++
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbedder) Dimensions() int            { return m.dim }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// wrongDimEmbedder returns vectors one element too long.
type wrongDimEmbedder struct{ *mockEmbedder }

func (w wrongDimEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := w.mockEmbedder.EmbedBatch(ctx, texts)
	for i := range out {
		out[i] = append(out[i], 0)
	}
	return out, err
}

// mockSnapshotStore is a configurable driven.SnapshotStore.
type mockSnapshotStore struct {
	snap    *domain.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *mockSnapshotStore) Load(context.Context) (*domain.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return nil, domain.ErrNotFound
	}
	return m.snap, nil
}

func (m *mockSnapshotStore) Save(_ context.Context, s *domain.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = s
	return nil
}

func (m *mockSnapshotStore) Close() error { return nil }

// mockLLM records the messages it receives.
type mockLLM struct {
	reply     string
	fragments []string
	failAt    int
	err       error
	messages  []driven.ChatMessage
	opts      driven.ChatOptions
	stream    *mockStream
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages = messages
	m.opts = opts
	return m.reply, m.err
}

func (m *mockLLM) ChatStream(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (driven.TextStream, error) {
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	m.stream = &mockStream{fragments: m.fragments, failAt: m.failAt}
	return m.stream, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

type mockStream struct {
	fragments []string
	pos       int
	failAt    int
	closed    bool
}

func (s *mockStream) Recv() (string, error) {
	if s.failAt > 0 && s.pos == s.failAt {
		return "", errors.New("connection reset")
	}
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *mockStream) Close() error {
	s.closed = true
	return nil
}

// mockExtractor returns the upload bytes as text.
type mockExtractor struct {
	formats []domain.Format
	err     error
}

func (m *mockExtractor) SupportedFormats() []domain.Format { return m.formats }

func (m *mockExtractor) Extract(_ context.Context, u domain.Upload) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return string(u.Data), nil
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}
