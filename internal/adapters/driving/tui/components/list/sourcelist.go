// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmind/internal/core/domain"
)

// linesPerSource is the height of one rendered source entry.
const linesPerSource = 2

// SourceList displays the retrieved chunks behind an answer.
type SourceList struct {
	sources  []domain.RankedChunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of sources.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)*linesPerSource+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))), "")

	visible := max((l.height-2)/linesPerSource, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.sources))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int, src *domain.RankedChunk) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := truncate(src.Title, max(l.width-20, 10))
	if title == "" {
		title = domain.UntitledDocument
	}
	score := fmt.Sprintf("%.3f", src.Score)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(indicator+title) + "  " + l.styles.Score.Render(score)
	} else {
		titleLine = l.styles.Normal.Render(indicator+title) + "  " + l.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(src.Content), " ")
	preview = truncate(preview, max(l.width-6, 20))

	return titleLine + "\n" + l.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetSources replaces the list and resets the selection.
func (l *SourceList) SetSources(sources []domain.RankedChunk) {
	l.sources = sources
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.RankedChunk {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the selected source, or nil when empty.
func (l *SourceList) SelectedSource() *domain.RankedChunk {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves the selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
