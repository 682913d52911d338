// Package fetch is a text-mode engine: pages are downloaded over HTTP and
// reduced to their readable content.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var skipPrefixes = []string{"about:", "moz-extension:", "file:", "chrome:", "resource:", "data:", "javascript:"}

// Options configures the engine. Zero values select the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

type view struct {
	history []string
	pos     int
	url     string
	title   string
	content string
	gen     uint64
	cancel  context.CancelFunc
}

// Engine implements engine.Engine and engine.ContentProvider.
type Engine struct {
	ids    engine.IDs
	client *http.Client
	ua     string
	events chan engine.Event
	done   chan struct{}
	wake   chan struct{}

	mu     sync.Mutex
	views  map[engine.ViewID]*view
	queue  []engine.Event
	closed bool
}

// New returns a fetch engine.
func New(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	e := &Engine{
		client: client,
		ua:     opts.UserAgent,
		events: make(chan engine.Event, 64),
		done:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
		views:  make(map[engine.ViewID]*view),
	}
	go e.pump()
	return e
}

type move int

const (
	push move = iota
	back
	forward
	reload
)

func (e *Engine) CreateView(url string) engine.ViewID {
	id := e.ids.Next()
	e.mu.Lock()
	e.views[id] = &view{pos: -1}
	e.mu.Unlock()
	if url != "" {
		e.load(id, url, push)
	}
	return id
}

func (e *Engine) DestroyView(id engine.ViewID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.views[id]
	if !ok {
		return
	}
	if v.cancel != nil {
		v.cancel()
	}
	delete(e.views, id)
}

func (e *Engine) Navigate(id engine.ViewID, url string) {
	e.load(id, url, push)
}

func (e *Engine) Back(id engine.ViewID)    { e.load(id, "", back) }
func (e *Engine) Forward(id engine.ViewID) { e.load(id, "", forward) }
func (e *Engine) Reload(id engine.ViewID)  { e.load(id, "", reload) }

// Stop cancels the view's in-flight load. The load still finishes with a
// LoadFinished event.
func (e *Engine) Stop(id engine.ViewID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.views[id]; ok && v.cancel != nil {
		v.cancel()
	}
}

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

// Content returns the readable text of the view's last load.
func (e *Engine) Content(id engine.ViewID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.views[id]; ok {
		return v.content
	}
	return ""
}

func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Close cancels every load. Pending events are dropped.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, v := range e.views {
		if v.cancel != nil {
			v.cancel()
		}
	}
	close(e.done)
	return nil
}

// load moves the view's history cursor and starts fetching the target in
// the background. Events are queued here and delivered by pump, never on
// the caller's goroutine.
func (e *Engine) load(id engine.ViewID, url string, m move) {
	e.mu.Lock()
	v, ok := e.views[id]
	if !ok || e.closed {
		e.mu.Unlock()
		return
	}
	switch m {
	case push:
		v.history = append(v.history[:v.pos+1], url)
		v.pos = len(v.history) - 1
	case back:
		if v.pos <= 0 {
			e.mu.Unlock()
			return
		}
		v.pos--
	case forward:
		if v.pos+1 >= len(v.history) {
			e.mu.Unlock()
			return
		}
		v.pos++
	case reload:
		if v.pos < 0 {
			e.mu.Unlock()
			return
		}
	}
	target := v.history[v.pos]
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.gen++
	v.cancel = cancel
	v.url = target
	gen := v.gen
	e.enqueueLocked(engine.Event{Kind: engine.URLChanged, View: id, URL: target})
	e.mu.Unlock()

	go e.fetch(ctx, id, gen, target)
}

func (e *Engine) fetch(ctx context.Context, id engine.ViewID, gen uint64, target string) {
	final, title, text, err := e.get(ctx, target)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			applog.Debug("fetch.stopped", "view", id, "url", target)
			text = "Stopped."
		} else {
			applog.Error("fetch.failed", err, "view", id, "url", target)
			text = fmt.Sprintf("Failed to load %s\n\n%v", target, err)
		}
	}

	e.mu.Lock()
	v, ok := e.views[id]
	if !ok || v.gen != gen {
		e.mu.Unlock()
		return
	}
	redirected := final != "" && final != target
	if redirected {
		v.url = final
		v.history[v.pos] = final
	}
	v.title = title
	v.content = text
	v.cancel = nil
	if redirected {
		e.enqueueLocked(engine.Event{Kind: engine.URLChanged, View: id, URL: final})
	}
	e.enqueueLocked(engine.Event{Kind: engine.LoadFinished, View: id})
	e.mu.Unlock()
}

// get downloads target and extracts its readable content. final is the URL
// after redirects.
func (e *Engine) get(ctx context.Context, target string) (final, title, text string, err error) {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(target, prefix) {
			if target == "about:blank" {
				return "", "", "", nil
			}
			return "", "", "", fmt.Errorf("cannot display %s", target)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", "", "", fmt.Errorf("fetch %s: %w", target, err)
	}
	req.Header.Set("User-Agent", e.ua)
	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	final = resp.Request.URL.String()
	if resp.StatusCode >= 400 {
		return final, "", "", fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, resp.Request.URL)
	if err != nil {
		return final, "", "", fmt.Errorf("extract readable content from %s: %w", final, err)
	}
	return final, article.Title, article.TextContent, nil
}

// enqueueLocked queues ev for delivery. Callers hold e.mu, so events leave
// in the order the view's state changed.
func (e *Engine) enqueueLocked(ev engine.Event) {
	if e.closed {
		return
	}
	e.queue = append(e.queue, ev)
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// pump delivers queued events until Close.
func (e *Engine) pump() {
	for {
		e.mu.Lock()
		batch := e.queue
		e.queue = nil
		e.mu.Unlock()

		for _, ev := range batch {
			select {
			case e.events <- ev:
			case <-e.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-e.wake:
		case <-e.done:
			return
		}
	}
}
