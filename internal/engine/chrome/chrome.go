// Package chrome renders tabs in a Chrome instance over the DevTools
// protocol. Each view is its own browser target.
package chrome

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/engine"
)

// Options configures the browser process.
type Options struct {
	Headless  bool
	ExecPath  string
	UserAgent string
}

type view struct {
	ctx     context.Context
	cancel  context.CancelFunc
	url     string
	title   string
	loading bool
}

// Engine implements engine.Engine on top of chromedp.
type Engine struct {
	ids    engine.IDs
	events chan engine.Event
	done   chan struct{}

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	mu     sync.Mutex
	views  map[engine.ViewID]*view
	closed bool
}

// New launches the browser.
func New(opts Options) (*Engine, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	applog.Info("chrome.started", "headless", opts.Headless, "exec", opts.ExecPath)

	return &Engine{
		events:        make(chan engine.Event, 64),
		done:          make(chan struct{}),
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		views:         make(map[engine.ViewID]*view),
	}, nil
}

func (e *Engine) CreateView(url string) engine.ViewID {
	id := e.ids.Next()
	ctx, cancel := chromedp.NewContext(e.browserCtx)
	v := &view{ctx: ctx, cancel: cancel, url: url}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return id
	}
	e.views[id] = v
	e.mu.Unlock()

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e.onTargetEvent(id, ev)
	})

	go func() {
		if err := chromedp.Run(ctx); err != nil {
			applog.Error("chrome.target", err, "view", id)
			return
		}
		if url != "" {
			e.Navigate(id, url)
		}
	}()
	return id
}

func (e *Engine) DestroyView(id engine.ViewID) {
	e.mu.Lock()
	v, ok := e.views[id]
	delete(e.views, id)
	e.mu.Unlock()
	if ok {
		v.cancel()
	}
}

func (e *Engine) Navigate(id engine.ViewID, url string) {
	e.run(id, "navigate", chromedp.Navigate(url))
}

func (e *Engine) Back(id engine.ViewID) {
	e.run(id, "back", chromedp.NavigateBack())
}

func (e *Engine) Forward(id engine.ViewID) {
	e.run(id, "forward", chromedp.NavigateForward())
}

func (e *Engine) Reload(id engine.ViewID) {
	e.run(id, "reload", chromedp.Reload())
}

// Stop halts the current load. A load that was still running is reported
// as finished.
func (e *Engine) Stop(id engine.ViewID) {
	v := e.lookup(id)
	if v == nil {
		return
	}
	go func() {
		err := chromedp.Run(v.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return page.StopLoading().Do(ctx)
		}))
		if err != nil {
			applog.Error("chrome.stop", err, "view", id)
		}
		e.mu.Lock()
		wasLoading := v.loading
		v.loading = false
		e.mu.Unlock()
		if wasLoading && e.lookup(id) != nil {
			e.emit(engine.Event{Kind: engine.LoadFinished, View: id})
		}
	}()
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

func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// Close shuts the browser down.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.views = make(map[engine.ViewID]*view)
	e.mu.Unlock()

	close(e.done)
	e.browserCancel()
	e.allocCancel()
	return nil
}

func (e *Engine) lookup(id engine.ViewID) *view {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.views[id]
}

// run starts a loading action against the view's target in the background.
func (e *Engine) run(id engine.ViewID, op string, action chromedp.Action) {
	v := e.lookup(id)
	if v == nil {
		return
	}
	e.mu.Lock()
	v.loading = true
	e.mu.Unlock()
	go func() {
		if err := chromedp.Run(v.ctx, action); err != nil && v.ctx.Err() == nil {
			applog.Error("chrome."+op, err, "view", id)
		}
	}()
}

// onTargetEvent runs on chromedp's event goroutine and must not call
// chromedp.Run itself.
func (e *Engine) onTargetEvent(id engine.ViewID, ev interface{}) {
	switch ev := ev.(type) {
	case *page.EventFrameNavigated:
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		e.urlChanged(id, ev.Frame.URL+ev.Frame.URLFragment)
	case *page.EventNavigatedWithinDocument:
		e.urlChanged(id, ev.URL)
	case *page.EventLoadEventFired:
		go e.loadFinished(id)
	}
}

func (e *Engine) urlChanged(id engine.ViewID, url string) {
	e.mu.Lock()
	v, ok := e.views[id]
	if ok {
		v.url = url
		v.loading = true
	}
	e.mu.Unlock()
	if ok {
		e.emit(engine.Event{Kind: engine.URLChanged, View: id, URL: url})
	}
}

func (e *Engine) loadFinished(id engine.ViewID) {
	v := e.lookup(id)
	if v == nil {
		return
	}
	var title, location string
	if err := chromedp.Run(v.ctx, chromedp.Title(&title), chromedp.Location(&location)); err != nil {
		if v.ctx.Err() == nil {
			applog.Error("chrome.title", err, "view", id)
		}
		return
	}
	e.mu.Lock()
	if _, live := e.views[id]; !live {
		e.mu.Unlock()
		return
	}
	v.title = title
	if location != "" {
		v.url = location
	}
	v.loading = false
	e.mu.Unlock()
	e.emit(engine.Event{Kind: engine.LoadFinished, View: id})
}

func (e *Engine) emit(ev engine.Event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}
