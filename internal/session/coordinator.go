// Package session coordinates tabs, the shared URL bar and window title,
// and the bookmark and history logs.
package session

import (
	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/navlog"
	"github.com/lotas/tabsurf/internal/tabhost"
	"github.com/lotas/tabsurf/internal/types"
)

const (
	// DefaultHomepage is used until the user sets another one.
	DefaultHomepage = "https://start.duckduckgo.com"
	// DefaultAppName is the window-title suffix.
	DefaultAppName = "Tabsurf"

	homepageLabel = "Homepage"
	blankLabel    = "Blank"
)

// Options configures a Coordinator.
type Options struct {
	AppName  string
	Homepage string
	// SkipInitialTab leaves the host empty; the caller must open a tab
	// before handing the coordinator to the shell.
	SkipInitialTab bool
}

// Coordinator is the top-level controller. It reacts to user commands and
// engine events and keeps the shared URL bar and title in step with the
// active tab. It is not safe for concurrent use: all calls must come from
// one event loop.
type Coordinator struct {
	eng       engine.Engine
	host      *tabhost.Host
	bookmarks navlog.BookmarkStore
	history   navlog.HistoryStore
	appName   string
	homepage  string

	shared SharedState
	urlRev int
}

// New builds a coordinator over eng and opens the homepage tab.
func New(eng engine.Engine, opts Options) *Coordinator {
	if opts.AppName == "" {
		opts.AppName = DefaultAppName
	}
	if opts.Homepage == "" {
		opts.Homepage = DefaultHomepage
	}
	c := &Coordinator{
		eng:      eng,
		host:     tabhost.New(eng),
		appName:  opts.AppName,
		homepage: opts.Homepage,
		shared:   SharedState{Title: opts.AppName},
	}
	if !opts.SkipInitialTab {
		c.OpenTab(c.homepage, homepageLabel)
	}
	return c
}

// Host exposes the tab host for read access by the shell.
func (c *Coordinator) Host() *tabhost.Host {
	return c.host
}

// AppName returns the window-title suffix.
func (c *Coordinator) AppName() string {
	return c.appName
}

// Homepage returns the current homepage URL.
func (c *Coordinator) Homepage() string {
	return c.homepage
}

// URLBar returns the URL-bar text and its revision. The revision changes
// every time the bar is replaced, so an editor can reset its cursor.
func (c *Coordinator) URLBar() (string, int) {
	return c.shared.URLText, c.urlRev
}

// WindowTitle returns the current window title.
func (c *Coordinator) WindowTitle() string {
	return c.shared.Title
}

// refresh recomputes shared state from the host. The URL bar is only
// replaced when resetURLBar is set, so background activity never clobbers
// what the user is typing.
func (c *Coordinator) refresh(resetURLBar bool) {
	next := DeriveSharedState(c.host, c.appName)
	if resetURLBar {
		c.shared.URLText = next.URLText
		c.urlRev++
	}
	c.shared.Title = next.Title
}

// --- Engine and tab-bar reactions ---

// TabSwitched re-reads URL bar and title from the newly active tab.
func (c *Coordinator) TabSwitched() {
	c.refresh(true)
	if cur := c.host.Current(); cur != nil {
		applog.Debug("tab.switched", "tab", cur.ID, "index", c.host.ActiveIndex())
	}
}

// URLChanged records a new URL for view. Only the active tab updates the
// URL bar.
func (c *Coordinator) URLChanged(view engine.ViewID, url string) {
	s, _, ok := c.host.Lookup(view)
	if !ok {
		applog.Debug("engine.url.stale", "view", view)
		return
	}
	s.CurrentURL = url
	c.refresh(c.host.IsActive(s))
}

// LoadFinished refreshes view's title, retitles the window when it is the
// active tab, and appends a history entry for it. Events for closed views
// are dropped.
func (c *Coordinator) LoadFinished(view engine.ViewID) {
	s, _, ok := c.host.Lookup(view)
	if !ok {
		applog.Debug("engine.load.stale", "view", view)
		return
	}
	s.CurrentTitle = c.eng.CurrentTitle(view)
	if s.CurrentURL == "" {
		s.CurrentURL = c.eng.CurrentURL(view)
	}
	c.history.Add(s.CurrentURL, s.CurrentTitle)
	c.refresh(false)
	applog.Info("page.loaded", "tab", s.ID, "url", s.CurrentURL, "title", s.CurrentTitle, "active", c.host.IsActive(s))
}

// HandleEvent routes an engine event to its reaction.
func (c *Coordinator) HandleEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.URLChanged:
		c.URLChanged(ev.View, ev.URL)
	case engine.LoadFinished:
		c.LoadFinished(ev.View)
	}
}

// TabBarDoubleClicked opens a blank tab when the empty part of the tab bar
// (index -1) is double-clicked.
func (c *Coordinator) TabBarDoubleClicked(index int) {
	if index == -1 {
		c.OpenTab("", blankLabel)
	}
}

// --- Tab lifecycle ---

// OpenTab opens and activates a new tab.
func (c *Coordinator) OpenTab(initialURL, label string) int {
	i := c.host.OpenTab(initialURL, label)
	c.TabSwitched()
	return i
}

// CloseTab closes the tab at index unless it is the last one.
func (c *Coordinator) CloseTab(index int) {
	before := c.host.Current()
	if !c.host.CloseTab(index) {
		return
	}
	if !c.host.IsActive(before) {
		c.TabSwitched()
	}
}

// Activate switches to the tab at index; invalid indices are ignored.
func (c *Coordinator) Activate(index int) {
	if c.host.Activate(index) {
		c.TabSwitched()
	}
}

// Close destroys every view.
func (c *Coordinator) Close() {
	c.host.CloseAll()
}

// --- User commands ---

// NavigateTo sends the active tab to raw, adding an http scheme when none
// is given. Nothing else is validated.
func (c *Coordinator) NavigateTo(raw string) {
	target, ok := NormalizeURL(raw)
	if !ok {
		return
	}
	c.host.Dispatch(tabhost.Command{Kind: tabhost.Navigate, URL: target})
}

// NavigateHome sends the active tab to the homepage.
func (c *Coordinator) NavigateHome() {
	target, ok := NormalizeURL(c.homepage)
	if !ok {
		return
	}
	c.host.Dispatch(tabhost.Command{Kind: tabhost.Home, URL: target})
}

// Back, Forward, Reload and Stop forward to the active tab.
func (c *Coordinator) Back()    { c.host.Dispatch(tabhost.Command{Kind: tabhost.Back}) }
func (c *Coordinator) Forward() { c.host.Dispatch(tabhost.Command{Kind: tabhost.Forward}) }
func (c *Coordinator) Reload()  { c.host.Dispatch(tabhost.Command{Kind: tabhost.Reload}) }
func (c *Coordinator) Stop()    { c.host.Dispatch(tabhost.Command{Kind: tabhost.Stop}) }

// SetHomepage replaces the homepage. Empty input keeps the old one.
func (c *Coordinator) SetHomepage(v string) bool {
	if v == "" {
		return false
	}
	c.homepage = v
	applog.Info("homepage.set", "url", v)
	return true
}

// AddBookmark bookmarks the active tab's current page.
func (c *Coordinator) AddBookmark() types.NavigationRecord {
	cur := c.host.Current()
	if cur == nil {
		return types.NavigationRecord{}
	}
	rec := c.bookmarks.Add(cur.CurrentURL, cur.CurrentTitle)
	applog.Info("bookmark.added", "url", rec.URL, "title", rec.Title)
	return rec
}

// ShowHistory returns a snapshot of the history log.
func (c *Coordinator) ShowHistory() HistoryView {
	return HistoryView{Title: "Browsing History", Records: c.history.List()}
}

// ShowBookmarks returns a snapshot of the bookmark log.
func (c *Coordinator) ShowBookmarks() HistoryView {
	return HistoryView{Title: "Bookmarks", Records: c.bookmarks.List()}
}

// Counts returns the number of bookmarks and history entries.
func (c *Coordinator) Counts() (bookmarks, history int) {
	return c.bookmarks.Len(), c.history.Len()
}
