package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Equal(t, "", in.Value())
	assert.Equal(t, 60, in.Width())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	in := NewQuestionInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}

func TestQuestionInput_TypesRunes(t *testing.T) {
	in := NewQuestionInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("why?")})

	assert.Equal(t, "why?", in.Value())
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("what is a fox")
	assert.Equal(t, "what is a fox", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantInput int
	}{
		{name: "wide", width: 100, wantInput: 90},
		{name: "narrow clamps", width: 15, wantInput: minInputWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewQuestionInput(nil)

			in.SetWidth(tt.width)

			assert.Equal(t, tt.width, in.Width())
			assert.Equal(t, tt.wantInput, in.textinput.Width)
		})
	}
}

func TestQuestionInput_View(t *testing.T) {
	view := NewQuestionInput(nil).View()

	assert.Contains(t, view, "Ask:")
}
