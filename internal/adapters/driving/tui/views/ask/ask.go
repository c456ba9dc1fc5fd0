// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// ErrNoQueryService indicates that no query service was provided.
var ErrNoQueryService = errors.New("query service is required")

// View holds a question input, the latest answer and its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar

	queryService driving.QueryService
	opts         domain.SearchOptions
	ctx          context.Context

	answer     *domain.Answer
	err        error
	width      int
	height     int
	ready      bool
	focusInput bool // typing a question; false while browsing sources
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		sources:      list.NewSourceList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		opts:         domain.DefaultSearchOptions(),
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithOptions sets the retrieval options used for questions.
func (v *View) WithOptions(opts domain.SearchOptions) *View {
	v.opts = opts
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateAsking)
			v.focusInput = false
			v.input.Blur()
			return v, v.ask(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuestion) {
		v.Reset()
		return v, v.input.Focus()
	}

	v.sources, _ = v.sources.Update(msg)
	return v, nil
}

// ask returns a command that answers question through the query service.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		answer, err := v.queryService.Ask(v.ctx, question, v.opts)
		return messages.AnswerCompleted{Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	if msg.Answer != nil {
		v.sources.SetSources(msg.Answer.Sources)
		v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	}
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateAnswered)
}

func (v *View) setError(err error) {
	v.err = err
	if errors.Is(err, domain.ErrLLMUnavailable) {
		v.statusbar.SetMessage("no LLM configured; run 'docmind settings llm'")
	} else {
		v.statusbar.SetMessage(err.Error())
	}
	v.statusbar.SetState(status.StateError)
	// Let the user edit and retry.
	v.focusInput = true
	v.input.Focus()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("DocMind"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		text := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text)
		sections = append(sections, text, "", v.sources.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// Leave room for the header, input, answer and status bar.
	v.sources.SetDimensions(width, max(height-14, 4))
	v.statusbar.SetWidth(width)
}

// Question returns the typed question.
func (v *View) Question() string {
	return v.input.Value()
}

// Answer returns the latest answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Ready returns whether the view has dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// Reset clears the question and answer and focuses the input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.sources.SetSources(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
}
