package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabsurf/internal/types"
)

// ProfilePicker is an overlay for choosing the Firefox profile whose
// session should be reopened as tabs.
type ProfilePicker struct {
	Profiles []types.Profile
	Cursor   int
}

func NewProfilePicker(profiles []types.Profile) ProfilePicker {
	cursor := 0
	for i, p := range profiles {
		if p.IsDefault {
			cursor = i
			break
		}
	}
	return ProfilePicker{Profiles: profiles, Cursor: cursor}
}

func (m *ProfilePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ProfilePicker) MoveDown() {
	if m.Cursor < len(m.Profiles)-1 {
		m.Cursor++
	}
}

// SelectByNumber moves the cursor to the 1-based entry n.
func (m *ProfilePicker) SelectByNumber(n int) bool {
	if n < 1 || n > len(m.Profiles) {
		return false
	}
	m.Cursor = n - 1
	return true
}

func (m ProfilePicker) Selected() (types.Profile, bool) {
	if len(m.Profiles) == 0 {
		return types.Profile{}, false
	}
	return m.Profiles[m.Cursor], true
}

func (m ProfilePicker) View() string {
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)

	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("Restore tabs from a Firefox profile:") + "\n\n")
	for i, p := range m.Profiles {
		label := fmt.Sprintf("%d. %s", i+1, p.Name)
		if p.IsDefault {
			label += " (default)"
		}
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(normalStyle.Render("  "+label) + "\n")
		}
	}
	b.WriteString("\n" + overlayHintStyle.Render("↑↓ navigate · 1-9 pick · enter restore · esc cancel"))
	return overlayBoxStyle.Render(b.String())
}
