package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabsurf/internal/tabhost"
)

const (
	tabSeparator  = " │ "
	tabBarIndent  = 1
	minCaptionLen = 6
	maxCaptionLen = 24
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	countStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// tabCaptions returns one "n:name" caption per tab, shortened so the bar
// fits width where possible.
func tabCaptions(tabs []*tabhost.TabSession, width int) []string {
	if len(tabs) == 0 {
		return nil
	}
	limit := maxCaptionLen
	if width > 0 {
		per := (width-tabBarIndent)/len(tabs) - lipgloss.Width(tabSeparator)
		if per < limit {
			limit = per
		}
	}
	if limit < minCaptionLen {
		limit = minCaptionLen
	}

	out := make([]string, len(tabs))
	for i, s := range tabs {
		name := strings.TrimSpace(s.DisplayName())
		if name == "" {
			name = "New Tab"
		}
		caption := fmt.Sprintf("%d:%s", i+1, name)
		out[i] = truncate(caption, limit)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func renderTabBar(tabs []*tabhost.TabSession, active int, width int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", tabBarIndent))
	for i, caption := range tabCaptions(tabs, width) {
		if i > 0 {
			b.WriteString(inactiveTabStyle.Render(tabSeparator))
		}
		if i == active {
			b.WriteString(activeTabStyle.Render(caption))
		} else {
			b.WriteString(inactiveTabStyle.Render(caption))
		}
	}

	left := b.String()
	right := countStyle.Render(fmt.Sprintf("%d tabs", len(tabs)))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + " "
}

// tabAt maps a column on the tab bar to a tab index. A separator belongs to
// the tab on its left. Columns past the last tab return -1.
func tabAt(tabs []*tabhost.TabSession, width, x int) int {
	pos := tabBarIndent
	if x < pos {
		return -1
	}
	sep := lipgloss.Width(tabSeparator)
	for i, caption := range tabCaptions(tabs, width) {
		end := pos + lipgloss.Width(caption)
		if i < len(tabs)-1 {
			end += sep
		}
		if x < end {
			return i
		}
		pos = end
	}
	return -1
}
