package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/engine/enginetest"
	"github.com/lotas/tabsurf/internal/session"
	"github.com/lotas/tabsurf/internal/types"
)

func newModel(t *testing.T) (Model, *session.Coordinator, *enginetest.Engine) {
	t.Helper()
	eng := enginetest.New()
	coord := session.New(eng, session.Options{AppName: "Tabsurf", Homepage: "https://home.example"})
	m := New(coord, eng, Options{EngineName: "test"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), coord, eng
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		case "ctrl+w":
			msg = tea.KeyMsg{Type: tea.KeyCtrlW}
		case "ctrl+l":
			msg = tea.KeyMsg{Type: tea.KeyCtrlL}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestInitialState(t *testing.T) {
	m, _, _ := newModel(t)
	if m.urlInput.Value() != "https://home.example" {
		t.Errorf("url bar = %q", m.urlInput.Value())
	}
	if m.urlInput.Position() != 0 {
		t.Errorf("cursor = %d, want 0", m.urlInput.Position())
	}
	view := m.View()
	if !strings.Contains(view, "1:Homepage") {
		t.Errorf("tab bar missing homepage tab:\n%s", view)
	}
}

func TestEditURLAndNavigate(t *testing.T) {
	m, _, eng := newModel(t)

	m = press(t, m, "ctrl+l")
	if !m.editing {
		t.Fatal("ctrl+l did not focus the url bar")
	}
	m.urlInput.SetValue("")
	m = typeText(t, m, "example.com")
	m = press(t, m, "enter")

	if m.editing {
		t.Error("still editing after enter")
	}
	call, _ := eng.LastCall()
	if call.Op != "navigate" || call.URL != "http://example.com" {
		t.Errorf("last call = %+v", call)
	}
}

func TestEscRestoresURLBar(t *testing.T) {
	m, _, eng := newModel(t)
	before := len(eng.Calls())

	m = press(t, m, "o")
	m = typeText(t, m, "garbage")
	m = press(t, m, "esc")

	if m.urlInput.Value() != "https://home.example" {
		t.Errorf("url bar = %q", m.urlInput.Value())
	}
	if len(eng.Calls()) != before {
		t.Error("esc dispatched a command")
	}
}

func TestNewTabCloseTabAndSwitching(t *testing.T) {
	m, coord, _ := newModel(t)

	m = press(t, m, "ctrl+t")
	if coord.Host().Len() != 2 || coord.Host().ActiveIndex() != 1 {
		t.Fatalf("len=%d active=%d", coord.Host().Len(), coord.Host().ActiveIndex())
	}
	if !m.editing || m.urlInput.Value() != "" {
		t.Errorf("new tab should focus an empty url bar, editing=%v value=%q", m.editing, m.urlInput.Value())
	}
	m = press(t, m, "esc")

	m = press(t, m, "[")
	if coord.Host().ActiveIndex() != 0 || m.urlInput.Value() != "https://home.example" {
		t.Errorf("after [: active=%d url=%q", coord.Host().ActiveIndex(), m.urlInput.Value())
	}
	m = press(t, m, "2")
	if coord.Host().ActiveIndex() != 1 {
		t.Errorf("after 2: active=%d", coord.Host().ActiveIndex())
	}
	m = press(t, m, "9")
	if coord.Host().ActiveIndex() != 1 {
		t.Errorf("out-of-range switch changed tab: %d", coord.Host().ActiveIndex())
	}

	m = press(t, m, "ctrl+w")
	if coord.Host().Len() != 1 {
		t.Errorf("len = %d after close", coord.Host().Len())
	}
	m = press(t, m, "ctrl+w")
	if coord.Host().Len() != 1 {
		t.Error("closed the last tab")
	}
}

func TestNavigationKeys(t *testing.T) {
	m, _, eng := newModel(t)
	for _, tt := range []struct {
		key string
		op  string
		url string
	}{
		{"H", "back", ""},
		{"L", "forward", ""},
		{"r", "reload", ""},
		{"s", "stop", ""},
		{"g", "navigate", "https://home.example"},
	} {
		m = press(t, m, tt.key)
		call, _ := eng.LastCall()
		if call.Op != tt.op || call.URL != tt.url {
			t.Errorf("%s: last call = %+v, want %s", tt.key, call, tt.op)
		}
	}
}

func TestEngineEventsUpdateURLBarAndTitle(t *testing.T) {
	m, coord, eng := newModel(t)
	view := coord.Host().Current().View

	eng.SetPage(view, "https://home.example/landing", "Landing")
	next, _ := m.Update(engineEventMsg{ev: engine.Event{Kind: engine.URLChanged, View: view, URL: "https://home.example/landing"}})
	m = next.(Model)
	next, cmd := m.Update(engineEventMsg{ev: engine.Event{Kind: engine.LoadFinished, View: view}})
	m = next.(Model)

	if m.urlInput.Value() != "https://home.example/landing" {
		t.Errorf("url bar = %q", m.urlInput.Value())
	}
	if m.title != "Landing - Tabsurf" {
		t.Errorf("title = %q", m.title)
	}
	if cmd == nil {
		t.Error("expected follow-up commands (title and listener)")
	}
	if _, n := coord.Counts(); n != 1 {
		t.Errorf("history = %d", n)
	}
}

func TestBookmarkAndOverlays(t *testing.T) {
	m, coord, _ := newModel(t)

	m = press(t, m, "b", "ctrl+d")
	if b, _ := coord.Counts(); b != 2 {
		t.Fatalf("bookmarks = %d, want 2", b)
	}
	if !strings.Contains(m.notice, "Bookmarked") {
		t.Errorf("notice = %q", m.notice)
	}

	m = press(t, m, "B")
	if m.overlay != overlayBookmarks {
		t.Fatalf("overlay = %v", m.overlay)
	}
	if got := strings.Count(m.View(), "https://home.example"); got < 2 {
		t.Errorf("bookmark overlay shows %d entries:\n%s", got, m.View())
	}
	m = press(t, m, "esc")
	if m.overlay != overlayNone {
		t.Error("esc did not close overlay")
	}

	m = press(t, m, "y")
	if m.overlay != overlayHistory || !strings.Contains(m.View(), "Browsing History") {
		t.Errorf("history overlay not shown:\n%s", m.View())
	}
}

func TestSetHomepagePrompt(t *testing.T) {
	m, coord, eng := newModel(t)

	m = press(t, m, "P")
	if m.overlay != overlayHomepage {
		t.Fatal("homepage prompt not open")
	}
	m.homepage.input.SetValue("")
	m = press(t, m, "enter")
	if coord.Homepage() != "https://home.example" || m.notice != "Homepage unchanged" {
		t.Errorf("empty homepage accepted: %q %q", coord.Homepage(), m.notice)
	}

	m = press(t, m, "P")
	m.homepage.input.SetValue("")
	m = typeText(t, m, "https://y")
	m = press(t, m, "enter", "g")

	call, _ := eng.LastCall()
	if call.Op != "navigate" || call.URL != "https://y" {
		t.Errorf("navigate home = %+v", call)
	}
}

func TestTabBarDoubleClickOpensTab(t *testing.T) {
	m, coord, _ := newModel(t)

	click := tea.MouseMsg{X: 100, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	next, _ := m.Update(click)
	m = next.(Model)
	if coord.Host().Len() != 1 {
		t.Fatal("single click opened a tab")
	}
	next, _ = m.Update(click)
	m = next.(Model)
	if coord.Host().Len() != 2 {
		t.Fatalf("double click did not open a tab: %d", coord.Host().Len())
	}

	// Single click on the first caption activates it.
	next, _ = m.Update(tea.MouseMsg{X: 2, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if coord.Host().ActiveIndex() != 0 {
		t.Errorf("active = %d, want 0", coord.Host().ActiveIndex())
	}
}

func TestClipboardResult(t *testing.T) {
	m, _, _ := newModel(t)
	next, _ := m.Update(clipboardMsg{what: "URL"})
	if got := next.(Model).notice; got != "Copied URL" {
		t.Errorf("notice = %q", got)
	}
}

func TestRestoreFromProfile(t *testing.T) {
	eng := enginetest.New()
	coord := session.New(eng, session.Options{Homepage: "https://home.example"})
	profiles := []types.Profile{
		{Name: "work", Path: "/p/work"},
		{Name: "main", Path: "/p/main", IsDefault: true},
	}
	var readDir string
	m := New(coord, eng, Options{
		EngineName:       "test",
		DiscoverProfiles: func() ([]types.Profile, error) { return profiles, nil },
		ReadSession: func(dir string) (*types.SessionData, error) {
			readDir = dir
			return &types.SessionData{AllTabs: []*types.Tab{
				{URL: "https://a.example", Title: "A"},
				{URL: "about:newtab"},
				{URL: "https://b.example", Title: "B"},
			}}, nil
		},
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if cmd == nil {
		t.Fatal("R did not start profile discovery")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if m.overlay != overlayProfiles {
		t.Fatalf("overlay = %v, want profiles", m.overlay)
	}
	if p, _ := m.profiles.Selected(); p.Name != "main" {
		t.Errorf("default selection = %q, want main", p.Name)
	}

	m = press(t, m, "1")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("enter did not start restore")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)

	if readDir != "/p/work" {
		t.Errorf("read session from %q, want /p/work", readDir)
	}
	if coord.Host().Len() != 3 {
		t.Fatalf("tabs = %d, want 3", coord.Host().Len())
	}
	if got := coord.Host().Current().CurrentURL; got != "https://b.example" {
		t.Errorf("active url = %q", got)
	}
	if !strings.Contains(m.notice, "Restored 2 tabs from work") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestRestoreWithoutProfiles(t *testing.T) {
	eng := enginetest.New()
	coord := session.New(eng, session.Options{})
	m := New(coord, eng, Options{
		DiscoverProfiles: func() ([]types.Profile, error) { return nil, nil },
	})
	next, _ := m.Update(profilesLoadedMsg{})
	m = next.(Model)
	if m.overlay != overlayNone {
		t.Error("opened picker with no profiles")
	}
	if m.notice == "" {
		t.Error("expected a notice")
	}
}
