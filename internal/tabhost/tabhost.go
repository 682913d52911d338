// Package tabhost owns the ordered set of open tabs and routes navigation
// commands to the active one.
package tabhost

import (
	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/types"
)

// TabSession is one browsing context backed by exactly one engine view.
// CurrentURL and CurrentTitle cache what the engine last reported.
type TabSession struct {
	ID           types.TabID
	View         engine.ViewID
	CurrentURL   string
	CurrentTitle string
	Label        string
}

// DisplayName is the tab-bar caption: the page title once known, else the label.
func (s *TabSession) DisplayName() string {
	if s.CurrentTitle != "" {
		return s.CurrentTitle
	}
	return s.Label
}

// CommandKind selects what Dispatch asks the engine to do.
type CommandKind int

const (
	Back CommandKind = iota + 1
	Forward
	Reload
	Stop
	Home
	Navigate
)

func (k CommandKind) String() string {
	switch k {
	case Back:
		return "back"
	case Forward:
		return "forward"
	case Reload:
		return "reload"
	case Stop:
		return "stop"
	case Home:
		return "home"
	case Navigate:
		return "navigate"
	default:
		return "unknown"
	}
}

// Command is a navigation command. URL is used by Home and Navigate.
type Command struct {
	Kind CommandKind
	URL  string
}

// Host is the ordered tab collection plus the active index. Once the first
// tab is opened it never drops below one tab. Host is not safe for
// concurrent use; it is driven from the shell's single event loop.
type Host struct {
	eng    engine.Engine
	tabs   []*TabSession
	active int
}

// New returns an empty host bound to eng.
func New(eng engine.Engine) *Host {
	return &Host{eng: eng, active: -1}
}

// OpenTab creates a view for initialURL, appends it and makes it active.
// An empty URL opens a blank tab.
func (h *Host) OpenTab(initialURL, label string) int {
	view := h.eng.CreateView(initialURL)
	s := &TabSession{
		ID:           types.NewTabID(),
		View:         view,
		CurrentURL:   h.eng.CurrentURL(view),
		CurrentTitle: h.eng.CurrentTitle(view),
		Label:        label,
	}
	h.tabs = append(h.tabs, s)
	h.active = len(h.tabs) - 1
	applog.Info("tab.opened", "tab", s.ID, "view", view, "index", h.active, "url", initialURL)
	return h.active
}

// CloseTab removes the tab at index and destroys its view. It refuses to
// close the last remaining tab and ignores out-of-range indices. The return
// value reports whether a tab was closed.
//
// When the active tab is closed, the tab that slides into its slot becomes
// active (or the new last tab when the closed one was last).
func (h *Host) CloseTab(index int) bool {
	if len(h.tabs) < 2 {
		applog.Debug("tab.close.ignored", "reason", "last-tab", "index", index)
		return false
	}
	if index < 0 || index >= len(h.tabs) {
		applog.Debug("tab.close.ignored", "reason", "out-of-range", "index", index)
		return false
	}
	s := h.tabs[index]
	h.tabs = append(h.tabs[:index], h.tabs[index+1:]...)
	switch {
	case index < h.active:
		h.active--
	case h.active >= len(h.tabs):
		h.active = len(h.tabs) - 1
	}
	h.eng.DestroyView(s.View)
	applog.Info("tab.closed", "tab", s.ID, "view", s.View, "index", index, "active", h.active)
	return true
}

// Activate makes the tab at index active. Out-of-range indices are ignored.
// It reports whether the active tab changed.
func (h *Host) Activate(index int) bool {
	if index < 0 || index >= len(h.tabs) {
		applog.Debug("tab.activate.ignored", "index", index, "count", len(h.tabs))
		return false
	}
	if index == h.active {
		return false
	}
	h.active = index
	return true
}

// Current returns the active tab, or nil before the first tab is opened.
func (h *Host) Current() *TabSession {
	if h.active < 0 || h.active >= len(h.tabs) {
		return nil
	}
	return h.tabs[h.active]
}

// ActiveIndex returns the active tab's position, or -1 when empty.
func (h *Host) ActiveIndex() int {
	return h.active
}

// Len returns the number of open tabs.
func (h *Host) Len() int {
	return len(h.tabs)
}

// Sessions returns the open tabs in on-screen order. The slice is a copy;
// the sessions themselves are shared.
func (h *Host) Sessions() []*TabSession {
	return append([]*TabSession(nil), h.tabs...)
}

// Lookup finds the live tab owning view.
func (h *Host) Lookup(view engine.ViewID) (*TabSession, int, bool) {
	for i, s := range h.tabs {
		if s.View == view {
			return s, i, true
		}
	}
	return nil, -1, false
}

// IsActive reports whether s is the currently active tab.
func (h *Host) IsActive(s *TabSession) bool {
	cur := h.Current()
	return cur != nil && s != nil && cur.ID == s.ID
}

// Dispatch forwards cmd to the active tab's view without waiting for the
// engine. Completion is observed later through engine events.
func (h *Host) Dispatch(cmd Command) {
	s := h.Current()
	if s == nil {
		return
	}
	applog.Debug("tab.dispatch", "tab", s.ID, "cmd", cmd.Kind, "url", cmd.URL)
	switch cmd.Kind {
	case Back:
		h.eng.Back(s.View)
	case Forward:
		h.eng.Forward(s.View)
	case Reload:
		h.eng.Reload(s.View)
	case Stop:
		h.eng.Stop(s.View)
	case Home, Navigate:
		h.eng.Navigate(s.View, cmd.URL)
	}
}

// CloseAll destroys every view. The host is unusable afterwards.
func (h *Host) CloseAll() {
	for _, s := range h.tabs {
		h.eng.DestroyView(s.View)
	}
	h.tabs = nil
	h.active = -1
}
