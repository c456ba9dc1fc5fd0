package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Ensure QueryService accepts custom prompts.
var _ driven.PromptStoreAware = (*QueryService)(nil)

// QueryService answers questions from chunks retrieved by the Engine.
type QueryService struct {
	engine    *Engine
	llm       driven.LLMService
	prompts   driven.PromptStore
	maxTokens int
}

// NewQueryService creates a new query service.
// The llm parameter is optional; without it only Search works.
func NewQueryService(engine *Engine, llm driven.LLMService, maxTokens int) *QueryService {
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxTokens
	}
	return &QueryService{
		engine:    engine,
		llm:       llm,
		maxTokens: maxTokens,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// LLMAvailable reports whether answers can be generated.
func (s *QueryService) LLMAvailable() bool {
	return s.llm != nil
}

// Search returns the chunks nearest to the query, nearest first.
func (s *QueryService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RankedChunk, error) {
	opts, err := opts.Normalise()
	if err != nil {
		return nil, err
	}
	return s.engine.Search(ctx, query, opts.TopK)
}

// Ask retrieves context and generates a complete answer.
// When nothing is retrieved the answer is domain.NoResultsAnswer and the
// LLM is not called.
func (s *QueryService) Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	logger.Section("Question")

	question, opts, err := validateQuestion(question, opts)
	if err != nil {
		return nil, err
	}

	sources, err := s.engine.Search(ctx, question, opts.TopK)
	if err != nil {
		return nil, err
	}
	answer := &domain.Answer{Question: question, Sources: sources}
	if len(sources) == 0 {
		answer.Text = domain.NoResultsAnswer
		return answer, nil
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	messages, err := s.messages(question, sources)
	if err != nil {
		return nil, err
	}
	logger.Debug("Generating answer with %s from %d chunks", s.llm.ModelName(), len(sources))

	text, err := s.llm.Chat(ctx, messages, s.chatOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

// AskStream retrieves context and emits the sources followed by answer
// fragments as the LLM produces them.
func (s *QueryService) AskStream(
	ctx context.Context, question string, opts domain.SearchOptions, emit func(domain.StreamEvent) error,
) error {
	logger.Section("Streaming Question")

	question, opts, err := validateQuestion(question, opts)
	if err != nil {
		return err
	}

	sources, err := s.engine.Search(ctx, question, opts.TopK)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return emit(domain.StreamEvent{Type: domain.StreamEventAnswer, Content: domain.NoResultsAnswer})
	}
	if s.llm == nil {
		return domain.ErrLLMUnavailable
	}

	messages, err := s.messages(question, sources)
	if err != nil {
		return err
	}

	stream, err := s.llm.ChatStream(ctx, messages, s.chatOptions(opts))
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}
	defer stream.Close() //nolint:errcheck // best-effort cleanup

	if err := emit(domain.StreamEvent{Type: domain.StreamEventSources, Sources: sources}); err != nil {
		return err
	}

	fragments := 0
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			logger.Debug("Stream finished after %d fragments", fragments)
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream answer: %w", err)
		}
		if fragment == "" {
			continue
		}
		fragments++
		if err := emit(domain.StreamEvent{Type: domain.StreamEventAnswer, Content: fragment}); err != nil {
			return err
		}
	}
}

func validateQuestion(question string, opts domain.SearchOptions) (string, domain.SearchOptions, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", opts, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	opts, err := opts.Normalise()
	return question, opts, err
}

func (s *QueryService) chatOptions(opts domain.SearchOptions) driven.ChatOptions {
	return driven.ChatOptions{MaxTokens: s.maxTokens, Temperature: opts.Temperature}
}

// messages builds the system and user messages for a question.
func (s *QueryService) messages(question string, sources []domain.RankedChunk) ([]driven.ChatMessage, error) {
	system, err := s.prompt(driven.PromptSystem)
	if err != nil {
		return nil, err
	}
	template, err := s.prompt(driven.PromptAnswer)
	if err != nil {
		return nil, err
	}

	blocks := make([]string, len(sources))
	for i, c := range sources {
		blocks[i] = fmt.Sprintf("Document: %s\n%s", c.Title, c.Content)
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(template, strings.Join(blocks, "\n\n"), question)},
	}, nil
}

// prompt loads a template from the store, falling back to the built-in default.
func (s *QueryService) prompt(name string) (string, error) {
	if s.prompts != nil {
		if p, err := s.prompts.Load(name); err == nil {
			return p, nil
		}
		logger.Warn("Prompt %q unavailable, using built-in default", name)
	}
	p, ok := driven.DefaultPrompts()[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}
