package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabsurf/internal/export"
	"github.com/lotas/tabsurf/internal/session"
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHistory
	overlayBookmarks
	overlayHomepage
	overlayProfiles
)

var (
	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	overlayTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	overlayHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
)

// listOverlay shows a frozen history or bookmark snapshot.
type listOverlay struct {
	view     session.HistoryView
	viewport viewport.Model
}

func newListOverlay(v session.HistoryView, width, height int) listOverlay {
	w, h := overlaySize(width, height)
	vp := viewport.New(w, h)
	vp.SetContent(renderRecords(v))
	return listOverlay{view: v, viewport: vp}
}

func renderRecords(v session.HistoryView) string {
	if len(v.Records) == 0 {
		return "Nothing here yet."
	}
	lines := v.Lines()
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

// Markdown renders the snapshot for the clipboard.
func (o listOverlay) Markdown() string {
	return export.Markdown(o.view.Title, o.view.Records)
}

// JSON renders the snapshot for the clipboard.
func (o listOverlay) JSON() (string, error) {
	return export.JSON(o.view.Title, o.view.Records)
}

func (o listOverlay) View() string {
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render(o.view.Title) + "\n\n")
	b.WriteString(o.viewport.View() + "\n\n")
	b.WriteString(overlayHintStyle.Render("↑↓ scroll · m copy markdown · J copy json · esc close"))
	return overlayBoxStyle.Render(b.String())
}

// homepagePrompt asks for a new homepage URL.
type homepagePrompt struct {
	input textinput.Model
}

func newHomepagePrompt(current string, width int) homepagePrompt {
	in := textinput.New()
	in.Prompt = "homepage> "
	in.Placeholder = "https://example.com"
	in.SetValue(current)
	in.CursorEnd()
	w, _ := overlaySize(width, 0)
	in.Width = w - lipgloss.Width(in.Prompt) - 1
	in.Focus()
	return homepagePrompt{input: in}
}

func (p homepagePrompt) View() string {
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Set Homepage") + "\n\n")
	b.WriteString(p.input.View() + "\n\n")
	b.WriteString(overlayHintStyle.Render("enter save · esc cancel"))
	return overlayBoxStyle.Render(b.String())
}

// overlaySize returns the inner size of an overlay box for the terminal.
func overlaySize(width, height int) (int, int) {
	w := width*3/4 - 6
	if w < 20 {
		w = 20
	}
	h := height*2/3 - 6
	if h < 3 {
		h = 3
	}
	return w, h
}
