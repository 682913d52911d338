// Package extension drives real browser tabs through the companion browser
// extension, which connects back over a WebSocket.
package extension

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
	"github.com/lotas/tabsurf/internal/server"
)

// Transport carries commands to the extension and its replies back.
// *server.Server implements it.
type Transport interface {
	Send(msg server.OutgoingMsg) error
	Messages() <-chan server.IncomingMsg
}

type view struct {
	browserID int // 0 until the open command is acknowledged
	url       string
	title     string
	queued    []server.OutgoingMsg
}

// Engine implements engine.Engine on top of browser tabs.
type Engine struct {
	ids    engine.IDs
	tr     Transport
	events chan engine.Event
	done   chan struct{}

	mu        sync.Mutex
	views     map[engine.ViewID]*view
	byBrowser map[int]engine.ViewID
	opening   map[string]engine.ViewID
	closeOnce sync.Once
}

// New starts an engine reading from tr.
func New(tr Transport) *Engine {
	e := &Engine{
		tr:        tr,
		events:    make(chan engine.Event, 64),
		done:      make(chan struct{}),
		views:     make(map[engine.ViewID]*view),
		byBrowser: make(map[int]engine.ViewID),
		opening:   make(map[string]engine.ViewID),
	}
	go e.run()
	return e
}

func newCommandID() string {
	return "cmd-" + uuid.NewString()
}

func (e *Engine) CreateView(url string) engine.ViewID {
	id := e.ids.Next()
	msg := server.OutgoingMsg{ID: newCommandID(), Action: "open", URL: url}

	e.mu.Lock()
	e.views[id] = &view{url: url}
	e.opening[msg.ID] = id
	e.mu.Unlock()

	if err := e.tr.Send(msg); err != nil {
		applog.Error("extension.open", err, "view", id, "url", url)
	}
	return id
}

func (e *Engine) DestroyView(id engine.ViewID) {
	e.mu.Lock()
	v, ok := e.views[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.views, id)
	browserID := v.browserID
	if browserID != 0 {
		delete(e.byBrowser, browserID)
	}
	e.mu.Unlock()

	// Unbound views are closed once the open is acknowledged.
	if browserID != 0 {
		e.send(server.OutgoingMsg{ID: newCommandID(), Action: "close", TabID: browserID})
	}
}

func (e *Engine) Navigate(id engine.ViewID, url string) {
	e.command(id, server.OutgoingMsg{Action: "navigate", URL: url})
}

func (e *Engine) Back(id engine.ViewID)    { e.command(id, server.OutgoingMsg{Action: "back"}) }
func (e *Engine) Forward(id engine.ViewID) { e.command(id, server.OutgoingMsg{Action: "forward"}) }
func (e *Engine) Reload(id engine.ViewID)  { e.command(id, server.OutgoingMsg{Action: "reload"}) }
func (e *Engine) Stop(id engine.ViewID)    { e.command(id, server.OutgoingMsg{Action: "stop"}) }

func (e *Engine) CurrentURL(id engine.ViewID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.views[id]; ok {
		return v.url
	}
	return ""
}

func (e *Engine) CurrentTitle(id engine.ViewID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.views[id]; ok {
		return v.title
	}
	return ""
}

func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Close stops reading from the transport. Browser tabs are left open.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { close(e.done) })
	return nil
}

// command sends msg to the view's browser tab, or queues it until the tab
// exists.
func (e *Engine) command(id engine.ViewID, msg server.OutgoingMsg) {
	msg.ID = newCommandID()
	e.mu.Lock()
	v, ok := e.views[id]
	if !ok {
		e.mu.Unlock()
		return
	}
	if v.browserID == 0 {
		v.queued = append(v.queued, msg)
		e.mu.Unlock()
		return
	}
	msg.TabID = v.browserID
	e.mu.Unlock()
	e.send(msg)
}

func (e *Engine) send(msg server.OutgoingMsg) {
	if err := e.tr.Send(msg); err != nil {
		applog.Error("extension.send", err, "action", msg.Action, "tab", msg.TabID)
	}
}

func (e *Engine) run() {
	msgs := e.tr.Messages()
	for {
		select {
		case <-e.done:
			return
		case msg := <-msgs:
			e.handle(msg)
		}
	}
}

func (e *Engine) handle(msg server.IncomingMsg) {
	switch msg.Type {
	case "tab.updated":
		e.tabUpdated(msg)
	case "tab.removed":
		e.mu.Lock()
		if id, ok := e.byBrowser[msg.TabID]; ok {
			delete(e.byBrowser, msg.TabID)
			if v := e.views[id]; v != nil {
				v.browserID = 0
			}
			applog.Info("extension.tab.removed", "view", id, "tab", msg.TabID)
		}
		e.mu.Unlock()
	default:
		if msg.ID != "" {
			e.response(msg)
		}
	}
}

func (e *Engine) response(msg server.IncomingMsg) {
	e.mu.Lock()
	id, opening := e.opening[msg.ID]
	if !opening {
		e.mu.Unlock()
		if !msg.Succeeded() {
			applog.Info("extension.command.failed", "id", msg.ID, "error", msg.Error)
		}
		return
	}
	delete(e.opening, msg.ID)

	if !msg.Succeeded() || msg.TabID == 0 {
		_, live := e.views[id]
		e.mu.Unlock()
		applog.Info("extension.open.failed", "view", id, "error", msg.Error)
		if live {
			e.emit(engine.Event{Kind: engine.LoadFinished, View: id})
		}
		return
	}

	v, live := e.views[id]
	if !live {
		e.mu.Unlock()
		e.send(server.OutgoingMsg{ID: newCommandID(), Action: "close", TabID: msg.TabID})
		return
	}
	v.browserID = msg.TabID
	e.byBrowser[msg.TabID] = id
	queued := v.queued
	v.queued = nil
	e.mu.Unlock()

	applog.Debug("extension.bound", "view", id, "tab", msg.TabID)
	for _, q := range queued {
		q.TabID = msg.TabID
		e.send(q)
	}
}

func (e *Engine) tabUpdated(msg server.IncomingMsg) {
	tab, err := server.ParseTab(msg.Tab)
	if err != nil {
		applog.Error("extension.parse", err)
		return
	}
	e.mu.Lock()
	id, ok := e.byBrowser[tab.BrowserID]
	v := e.views[id]
	if !ok || v == nil {
		e.mu.Unlock()
		return
	}
	urlChanged := tab.URL != "" && tab.URL != v.url
	if urlChanged {
		v.url = tab.URL
	}
	if tab.Title != "" {
		v.title = tab.Title
	}
	e.mu.Unlock()

	if urlChanged {
		e.emit(engine.Event{Kind: engine.URLChanged, View: id, URL: tab.URL})
	}
	if tab.Complete() {
		e.emit(engine.Event{Kind: engine.LoadFinished, View: id})
	}
}

func (e *Engine) emit(ev engine.Event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}
