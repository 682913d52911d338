// Package tui is the terminal shell: a tab bar, a shared URL bar, the page
// body and overlays for history, bookmarks and the homepage.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/firefox"
	"github.com/lotas/tabsurf/internal/session"
	"github.com/lotas/tabsurf/internal/types"
)

const doubleClickWindow = 400 * time.Millisecond

// --- Messages ---

type engineEventMsg struct{ ev engine.Event }

type engineClosedMsg struct{}

type clipboardMsg struct {
	what string
	err  error
}

type profilesLoadedMsg struct {
	profiles []types.Profile
	err      error
}

type restoreLoadedMsg struct {
	profile types.Profile
	records []types.NavigationRecord
	err     error
}

// --- Command helpers ---

func listenEngine(eng engine.Engine) tea.Cmd {
	ch := eng.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{ev: ev}
	}
}

func loadProfiles(discover func() ([]types.Profile, error)) tea.Cmd {
	return func() tea.Msg {
		profiles, err := discover()
		return profilesLoadedMsg{profiles: profiles, err: err}
	}
}

func loadRestore(profile types.Profile, read func(dir string) (*types.SessionData, error)) tea.Cmd {
	return func() tea.Msg {
		data, err := read(profile.Path)
		if err != nil {
			return restoreLoadedMsg{profile: profile, err: err}
		}
		return restoreLoadedMsg{profile: profile, records: firefox.Restorable(data)}
	}
}

func copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: clipboard.WriteAll(text)}
	}
}

// --- Model ---

// Options carries shell settings that do not belong to the coordinator.
type Options struct {
	EngineName string
	// Notice is shown in the status line until the first action.
	Notice string

	// DiscoverProfiles and ReadSession default to the firefox package.
	DiscoverProfiles func() ([]types.Profile, error)
	ReadSession      func(profileDir string) (*types.SessionData, error)
}

type Model struct {
	coord   *session.Coordinator
	eng     engine.Engine
	content engine.ContentProvider
	opts    Options

	urlInput textinput.Model
	editing  bool
	urlRev   int

	body    viewport.Model
	bodyFor string

	overlay  overlayKind
	list     listOverlay
	homepage homepagePrompt
	profiles ProfilePicker

	title  string
	notice string
	width  int
	height int

	lastClick    time.Time
	lastClickTab int
}

// New builds the shell around a coordinator and its engine.
func New(coord *session.Coordinator, eng engine.Engine, opts Options) Model {
	in := textinput.New()
	in.Prompt = "URL "
	in.Placeholder = "type an address"
	content, _ := eng.(engine.ContentProvider)
	if opts.DiscoverProfiles == nil {
		opts.DiscoverProfiles = firefox.DiscoverProfiles
	}
	if opts.ReadSession == nil {
		opts.ReadSession = firefox.ReadSessionFile
	}

	m := Model{
		coord:        coord,
		eng:          eng,
		content:      content,
		opts:         opts,
		urlInput:     in,
		urlRev:       -1,
		body:         viewport.New(80, 20),
		notice:       opts.Notice,
		lastClickTab: -2,
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenEngine(m.eng), tea.SetWindowTitle(m.coord.WindowTitle()))
}

// sync pulls shared state from the coordinator into the widgets. It returns
// a command when the window title changed.
func (m *Model) sync() tea.Cmd {
	if text, rev := m.coord.URLBar(); rev != m.urlRev {
		m.urlRev = rev
		m.urlInput.SetValue(text)
		m.urlInput.CursorStart()
	}

	cur := m.coord.Host().Current()
	var key, body string
	if cur != nil {
		key = fmt.Sprintf("%d|%s", cur.View, cur.CurrentURL)
		body = m.pageText(cur.View, cur.CurrentURL, cur.CurrentTitle)
	}
	m.body.SetContent(body)
	if key != m.bodyFor {
		m.bodyFor = key
		m.body.GotoTop()
	}

	if t := m.coord.WindowTitle(); t != m.title {
		m.title = t
		return tea.SetWindowTitle(t)
	}
	return nil
}

func (m Model) pageText(view engine.ViewID, url, title string) string {
	if m.content != nil {
		if text := m.content.Content(view); text != "" {
			return text
		}
	}
	if url == "" {
		return "Blank tab. Press ctrl+l to enter an address."
	}
	if m.content != nil {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n\nShown in the %s browser window.", title, url, m.opts.EngineName)
}

func (m *Model) resize() {
	m.urlInput.Width = m.width - lipgloss.Width(m.urlInput.Prompt) - 2
	m.body.Width = m.width
	h := m.height - 4 // tab bar, url bar, rule, status line
	if h < 1 {
		h = 1
	}
	m.body.Height = h
	if m.overlay == overlayHistory || m.overlay == overlayBookmarks {
		m.list.viewport.Width, m.list.viewport.Height = overlaySize(m.width, m.height)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case engineEventMsg:
		m.coord.HandleEvent(msg.ev)
		return m, tea.Batch(m.sync(), listenEngine(m.eng))

	case engineClosedMsg:
		applog.Info("engine.closed")
		m.notice = "Engine stopped"
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			applog.Error("clipboard", msg.err)
			m.notice = "Clipboard unavailable: " + msg.err.Error()
		} else {
			m.notice = "Copied " + msg.what
		}
		return m, nil

	case profilesLoadedMsg:
		switch {
		case msg.err != nil:
			m.notice = "Firefox profiles: " + msg.err.Error()
		case len(msg.profiles) == 0:
			m.notice = "No Firefox profiles with a saved session"
		default:
			m.profiles = NewProfilePicker(msg.profiles)
			m.overlay = overlayProfiles
		}
		return m, nil

	case restoreLoadedMsg:
		if msg.err != nil {
			applog.Error("tui.restore", msg.err, "profile", msg.profile.Name)
			m.notice = "Restore failed: " + msg.err.Error()
			return m, nil
		}
		for _, r := range msg.records {
			m.coord.OpenTab(r.URL, r.Title)
		}
		m.notice = fmt.Sprintf("Restored %d tabs from %s", len(msg.records), msg.profile.Name)
		return m, m.sync()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case m.overlay == overlayHomepage:
			return m.updateHomepage(msg)
		case m.overlay == overlayProfiles:
			return m.updateProfiles(msg)
		case m.overlay != overlayNone:
			return m.updateList(msg)
		case m.editing:
			return m.updateURLBar(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Y != 0 {
		if m.overlay == overlayNone {
			var cmd tea.Cmd
			m.body, cmd = m.body.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	idx := tabAt(m.coord.Host().Sessions(), m.width, msg.X)
	now := time.Now()
	double := idx == m.lastClickTab && now.Sub(m.lastClick) <= doubleClickWindow
	m.lastClick, m.lastClickTab = now, idx

	if double {
		m.lastClickTab = -2
		m.coord.TabBarDoubleClicked(idx)
		if idx == -1 {
			m.startEditing()
		}
	} else if idx >= 0 {
		m.coord.Activate(idx)
	}
	return m, m.sync()
}

func (m *Model) startEditing() {
	m.editing = true
	m.urlInput.Focus()
	m.urlInput.CursorEnd()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.urlInput.Blur()
}

func (m Model) updateURLBar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		target := m.urlInput.Value()
		m.stopEditing()
		m.coord.NavigateTo(target)
		return m, m.sync()
	case "esc":
		m.stopEditing()
		text, _ := m.coord.URLBar()
		m.urlInput.SetValue(text)
		m.urlInput.CursorStart()
		return m, nil
	}
	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "y", "B":
		m.overlay = overlayNone
		return m, nil
	case "m":
		return m, copyToClipboard(m.list.view.Title+" as markdown", m.list.Markdown())
	case "J":
		out, err := m.list.JSON()
		if err != nil {
			m.notice = "Export failed: " + err.Error()
			return m, nil
		}
		return m, copyToClipboard(m.list.view.Title+" as JSON", out)
	}
	var cmd tea.Cmd
	m.list.viewport, cmd = m.list.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateHomepage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "enter":
		m.overlay = overlayNone
		if m.coord.SetHomepage(m.homepage.input.Value()) {
			m.notice = "Homepage set to " + m.coord.Homepage()
		} else {
			m.notice = "Homepage unchanged"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.homepage.input, cmd = m.homepage.input.Update(msg)
	return m, cmd
}

func (m Model) updateProfiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.overlay = overlayNone
	case "up", "k":
		m.profiles.MoveUp()
	case "down", "j":
		m.profiles.MoveDown()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.profiles.SelectByNumber(int(key[0] - '0'))
	case "enter":
		m.overlay = overlayNone
		if p, ok := m.profiles.Selected(); ok {
			m.notice = "Restoring " + p.Name + "..."
			return m, loadRestore(p, m.opts.ReadSession)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	host := m.coord.Host()
	m.notice = ""

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		m.coord.TabBarDoubleClicked(-1)
		m.startEditing()
	case "ctrl+w":
		m.coord.CloseTab(host.ActiveIndex())
	case "ctrl+l", "o":
		m.startEditing()
		return m, nil
	case "[":
		m.coord.Activate(host.ActiveIndex() - 1)
	case "]":
		m.coord.Activate(host.ActiveIndex() + 1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.coord.Activate(int(key[0] - '1'))
	case "H", "alt+left":
		m.coord.Back()
	case "L", "alt+right":
		m.coord.Forward()
	case "r", "f5":
		m.coord.Reload()
	case "s", "esc":
		m.coord.Stop()
	case "g":
		m.coord.NavigateHome()
	case "ctrl+d", "b":
		rec := m.coord.AddBookmark()
		if rec.URL == "" && rec.Title == "" {
			m.notice = "Nothing to bookmark"
		} else {
			m.notice = "Bookmarked " + rec.String()
		}
	case "y":
		m.openList(overlayHistory, m.coord.ShowHistory())
		return m, nil
	case "B":
		m.openList(overlayBookmarks, m.coord.ShowBookmarks())
		return m, nil
	case "P":
		m.homepage = newHomepagePrompt(m.coord.Homepage(), m.width)
		m.overlay = overlayHomepage
		return m, nil
	case "R":
		return m, loadProfiles(m.opts.DiscoverProfiles)
	case "c":
		if cur := host.Current(); cur != nil && cur.CurrentURL != "" {
			return m, copyToClipboard("URL", cur.CurrentURL)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
	return m, m.sync()
}

func (m *Model) openList(kind overlayKind, v session.HistoryView) {
	m.list = newListOverlay(v, m.width, m.height)
	m.overlay = kind
}

func (m Model) View() string {
	host := m.coord.Host()
	tabBar := renderTabBar(host.Sessions(), host.ActiveIndex(), m.width)

	urlStyle := lipgloss.NewStyle().Padding(0, 1)
	if m.editing {
		urlStyle = urlStyle.Foreground(lipgloss.Color("62"))
	}
	urlBar := urlStyle.Render(m.urlInput.View())
	rule := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(strings.Repeat("─", max(m.width, 0)))

	var main string
	switch m.overlay {
	case overlayHistory, overlayBookmarks:
		main = lipgloss.Place(m.width, m.body.Height, lipgloss.Center, lipgloss.Center, m.list.View())
	case overlayHomepage:
		main = lipgloss.Place(m.width, m.body.Height, lipgloss.Center, lipgloss.Center, m.homepage.View())
	case overlayProfiles:
		main = lipgloss.Place(m.width, m.body.Height, lipgloss.Center, lipgloss.Center, m.profiles.View())
	default:
		main = m.body.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, urlBar, rule, main, m.statusLine())
}

func (m Model) statusLine() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	if m.notice != "" {
		return style.Render(m.notice)
	}
	bookmarks, history := m.coord.Counts()
	var hints string
	switch {
	case m.editing:
		hints = "enter go · esc cancel"
	default:
		hints = "ctrl+l url · ctrl+t new · ctrl+w close · [ ] tabs · H/L back/fwd · r reload · s stop · g home · b bookmark · y history · B bookmarks · P homepage · R restore · c copy · q quit"
	}
	return style.Render(fmt.Sprintf("%d bookmarks · %d visited · %s", bookmarks, history, hints))
}
