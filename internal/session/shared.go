package session

import (
	"strings"

	"github.com/lotas/tabsurf/internal/tabhost"
	"github.com/lotas/tabsurf/internal/types"
)

// SharedState is the window-wide state every tab shares.
type SharedState struct {
	URLText string
	Title   string
}

// DeriveSharedState projects the URL-bar text and window title from the
// active tab. It has no side effects.
func DeriveSharedState(host *tabhost.Host, appName string) SharedState {
	cur := host.Current()
	if cur == nil {
		return SharedState{Title: appName}
	}
	return SharedState{
		URLText: cur.CurrentURL,
		Title:   WindowTitle(cur.CurrentTitle, appName),
	}
}

// WindowTitle formats "<title> - <app name>", falling back to the app name
// while a page has no title.
func WindowTitle(pageTitle, appName string) string {
	if pageTitle == "" {
		return appName
	}
	return pageTitle + " - " + appName
}

// NormalizeURL prepares URL-bar input for the engine: surrounding space is
// trimmed and input without a scheme gets "http://". ok is false for empty
// input. The rest of the input is passed through unvalidated.
func NormalizeURL(raw string) (target string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if hasScheme(raw) {
		return raw, true
	}
	return "http://" + raw, true
}

// hasScheme reports whether s starts with an RFC 3986 scheme followed by
// ':'. Only the prefix is inspected, so malformed remainders still count.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}

// HistoryView is a frozen, ordered copy of a navigation log.
type HistoryView struct {
	Title   string
	Records []types.NavigationRecord
}

// Lines renders one "title - url" line per record.
func (v HistoryView) Lines() []string {
	lines := make([]string, 0, len(v.Records))
	for _, r := range v.Records {
		lines = append(lines, r.String())
	}
	return lines
}
