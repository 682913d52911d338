// Package engine defines the contract between the tab shell and a rendering
// engine. Engines own their views and report progress asynchronously through
// Events; every command is fire-and-forget.
package engine

import "sync/atomic"

// ViewID identifies one engine view. IDs are never reused by an engine.
type ViewID uint64

// EventKind distinguishes engine notifications.
type EventKind int

const (
	// URLChanged reports that a view started loading or was redirected to URL.
	URLChanged EventKind = iota + 1
	// LoadFinished reports that a view finished loading, successfully or not.
	LoadFinished
)

func (k EventKind) String() string {
	switch k {
	case URLChanged:
		return "url-changed"
	case LoadFinished:
		return "load-finished"
	default:
		return "unknown"
	}
}

// Event is an asynchronous notification about one view.
type Event struct {
	Kind EventKind
	View ViewID
	URL  string // set for URLChanged
}

// Engine is a rendering engine hosting any number of views.
type Engine interface {
	CreateView(url string) ViewID
	DestroyView(view ViewID)
	Navigate(view ViewID, url string)
	Back(view ViewID)
	Forward(view ViewID)
	Reload(view ViewID)
	Stop(view ViewID)
	CurrentURL(view ViewID) string
	CurrentTitle(view ViewID) string
	Events() <-chan Event
	Close() error
}

// ContentProvider is implemented by engines that can show page text in the
// terminal.
type ContentProvider interface {
	Content(view ViewID) string
}

// IDs hands out view IDs, starting at 1 so the zero value means "no view".
type IDs struct {
	last atomic.Uint64
}

// Next returns a fresh view ID.
func (g *IDs) Next() ViewID {
	return ViewID(g.last.Add(1))
}
