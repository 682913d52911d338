// Package enginetest provides an in-memory engine for tests.
package enginetest

import (
	"sync"

	"github.com/lotas/tabsurf/internal/engine"
)

// Call records one command received by the fake engine.
type Call struct {
	Op   string // create, destroy, navigate, back, forward, reload, stop
	View engine.ViewID
	URL  string
}

type view struct {
	url   string
	title string
}

// Engine is a scriptable engine.Engine. It never emits events on its own;
// tests drive callbacks explicitly.
type Engine struct {
	ids    engine.IDs
	mu     sync.Mutex
	views  map[engine.ViewID]*view
	calls  []Call
	events chan engine.Event
}

// New returns an empty fake engine.
func New() *Engine {
	return &Engine{
		views:  make(map[engine.ViewID]*view),
		events: make(chan engine.Event, 64),
	}
}

func (e *Engine) record(c Call) {
	e.calls = append(e.calls, c)
}

func (e *Engine) CreateView(url string) engine.ViewID {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.ids.Next()
	e.views[id] = &view{url: url}
	e.record(Call{Op: "create", View: id, URL: url})
	return id
}

func (e *Engine) DestroyView(id engine.ViewID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.views, id)
	e.record(Call{Op: "destroy", View: id})
}

func (e *Engine) Navigate(id engine.ViewID, url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Call{Op: "navigate", View: id, URL: url})
}

func (e *Engine) Back(id engine.ViewID)    { e.simple("back", id) }
func (e *Engine) Forward(id engine.ViewID) { e.simple("forward", id) }
func (e *Engine) Reload(id engine.ViewID)  { e.simple("reload", id) }
func (e *Engine) Stop(id engine.ViewID)    { e.simple("stop", id) }

func (e *Engine) simple(op string, id engine.ViewID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Call{Op: op, View: id})
}

func (e *Engine) CurrentURL(id engine.ViewID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v := e.views[id]; v != nil {
		return v.url
	}
	return ""
}

func (e *Engine) CurrentTitle(id engine.ViewID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v := e.views[id]; v != nil {
		return v.title
	}
	return ""
}

func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

func (e *Engine) Close() error {
	return nil
}

// SetPage sets what the engine reports for a view's URL and title.
func (e *Engine) SetPage(id engine.ViewID, url, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v := e.views[id]; v != nil {
		v.url = url
		v.title = title
	}
}

// Emit queues an event on the Events channel.
func (e *Engine) Emit(ev engine.Event) {
	e.events <- ev
}

// Calls returns every recorded command in order.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// LastCall returns the most recent command, if any.
func (e *Engine) LastCall() (Call, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return Call{}, false
	}
	return e.calls[len(e.calls)-1], true
}

// Alive reports whether the view has been created and not destroyed.
func (e *Engine) Alive(id engine.ViewID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.views[id]
	return ok
}
