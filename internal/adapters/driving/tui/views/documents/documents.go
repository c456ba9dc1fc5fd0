// Package documents provides the document list view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

const timeLayout = "2006-01-02 15:04"

// View lists indexed documents and deletes them on request.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	documents     []domain.Document
	stats         domain.IndexStats
	selected      int
	scrollOffset  int
	width         int
	height        int
	ready         bool
	loading       bool
	confirmDelete bool
	notice        string
	err           error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirmDelete = false
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := v.documentService.List(v.ctx)
		return messages.DocumentsLoaded{
			Documents: docs,
			Stats:     v.documentService.Stats(v.ctx),
			Err:       err,
		}
	}
}

func (v *View) deleteDocument(id string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoDocumentService}
		}
		found, err := v.documentService.Delete(v.ctx, id)
		return messages.DocumentDeleted{DocumentID: id, Found: found, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirmDelete {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			v.stats = msg.Stats
			v.clampSelection()
		}
		return v, nil

	case messages.DocumentDeleted:
		switch {
		case msg.Err != nil:
			v.err = msg.Err
			return v, nil
		case msg.Found:
			v.notice = "Deleted document " + msg.DocumentID
		default:
			v.notice = "Document not found: " + msg.DocumentID
		}
		v.loading = true
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Delete):
		if len(v.documents) > 0 {
			v.confirmDelete = true
		}
	case keymap.Matches(key, v.keymap.Refresh):
		v.notice = ""
		v.loading = true
		return v, v.loadDocuments()
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirmDelete = false
	if !keymap.Matches(msg.String(), v.keymap.Confirm) {
		return v, nil
	}
	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}
	return v, v.deleteDocument(doc.ID)
}

func (v *View) clampSelection() {
	if v.selected >= len(v.documents) {
		v.selected = max(len(v.documents)-1, 0)
	}
	v.adjustScroll()
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleItemCount leaves room for the title, notice and help lines.
func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d documents, %d chunks)", len(v.documents), v.stats.Chunks)
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents indexed. Add some with 'docmind document add'."))
	default:
		end := min(v.scrollOffset+v.visibleItemCount(), len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > v.visibleItemCount() {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if v.confirmDelete {
		if doc := v.SelectedDocument(); doc != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %q and its %d chunks? [y/N]", doc.Title, doc.ChunkCount)))
			b.WriteString("\n")
		}
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	maxTitle := max(v.width/2-4, 10)
	title := doc.Title
	if r := []rune(title); len(r) > maxTitle {
		title = string(r[:maxTitle-3]) + "..."
	}
	meta := fmt.Sprintf("%3d chunks  %s", doc.ChunkCount, doc.CreatedAt.Local().Format(timeLayout))

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s", indicator, maxTitle, title)) + "  " + v.styles.Muted.Render(meta)
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s", indicator, maxTitle, title)) + "  " + v.styles.Muted.Render(meta)
}

func (v *View) renderHelp() string {
	hints := make([]string, 0, 5)
	for _, b := range v.keymap.DocumentsHelp() {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(hints, "  "))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// Stats returns the index counts from the last load.
func (v *View) Stats() domain.IndexStats {
	return v.stats
}

// SelectedIndex returns the selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the selected document, or nil when empty.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < 0 || v.selected >= len(v.documents) {
		return nil
	}
	return &v.documents[v.selected]
}

// ConfirmingDelete reports whether a delete prompt is showing.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}

// Notice returns the last status notice.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
