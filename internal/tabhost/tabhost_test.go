package tabhost

import (
	"math/rand"
	"testing"

	"github.com/lotas/tabsurf/internal/engine/enginetest"
)

func newHost(t *testing.T, urls ...string) (*Host, *enginetest.Engine) {
	t.Helper()
	eng := enginetest.New()
	h := New(eng)
	for _, u := range urls {
		h.OpenTab(u, "Tab")
	}
	return h, eng
}

func TestOpenTabActivatesNewTab(t *testing.T) {
	h, eng := newHost(t)
	if h.Current() != nil {
		t.Fatal("expected no current tab before first open")
	}

	i := h.OpenTab("https://a", "Homepage")
	j := h.OpenTab("", "Blank")

	if i != 0 || j != 1 {
		t.Fatalf("indices = %d, %d; want 0, 1", i, j)
	}
	if h.ActiveIndex() != 1 {
		t.Errorf("active = %d, want 1", h.ActiveIndex())
	}
	cur := h.Current()
	if cur.Label != "Blank" || cur.CurrentURL != "" {
		t.Errorf("unexpected current tab %+v", cur)
	}
	first := h.Sessions()[0]
	if first.CurrentURL != "https://a" {
		t.Errorf("url cache not seeded from engine: %q", first.CurrentURL)
	}
	if !eng.Alive(cur.View) || !eng.Alive(first.View) {
		t.Error("expected both views alive")
	}
	if first.ID == cur.ID {
		t.Error("tabs share an id")
	}
}

func TestCloseLastTabIsNoop(t *testing.T) {
	h, eng := newHost(t, "https://a")
	view := h.Current().View

	if h.CloseTab(0) {
		t.Error("CloseTab on single tab reported success")
	}
	if h.Len() != 1 || h.ActiveIndex() != 0 {
		t.Errorf("len=%d active=%d, want 1/0", h.Len(), h.ActiveIndex())
	}
	if !eng.Alive(view) {
		t.Error("view destroyed for refused close")
	}
}

func TestCloseOutOfRangeIsNoop(t *testing.T) {
	h, _ := newHost(t, "https://a", "https://b")
	for _, idx := range []int{-1, 2, 99} {
		if h.CloseTab(idx) {
			t.Errorf("CloseTab(%d) reported success", idx)
		}
	}
	if h.Len() != 2 {
		t.Errorf("len = %d, want 2", h.Len())
	}
}

func TestCloseTabNeighborPolicy(t *testing.T) {
	tests := []struct {
		name       string
		open       int
		activate   int
		close      int
		wantActive int
		wantURL    string
	}{
		{"close left of active", 3, 2, 0, 1, "u2"},
		{"close active middle picks right neighbor", 3, 1, 1, 1, "u2"},
		{"close active last picks new last", 3, 2, 2, 1, "u1"},
		{"close right of active", 3, 0, 2, 0, "u0"},
		{"close active first", 3, 0, 0, 0, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := enginetest.New()
			h := New(eng)
			for i := 0; i < tt.open; i++ {
				h.OpenTab("u"+string(rune('0'+i)), "")
			}
			h.Activate(tt.activate)
			closed := h.Sessions()[tt.close]

			if !h.CloseTab(tt.close) {
				t.Fatal("CloseTab returned false")
			}
			if h.ActiveIndex() != tt.wantActive {
				t.Errorf("active = %d, want %d", h.ActiveIndex(), tt.wantActive)
			}
			if got := h.Current().CurrentURL; got != tt.wantURL {
				t.Errorf("current url = %q, want %q", got, tt.wantURL)
			}
			if eng.Alive(closed.View) {
				t.Error("closed tab's view still alive")
			}
			if _, _, ok := h.Lookup(closed.View); ok {
				t.Error("closed view still resolvable")
			}
		})
	}
}

func TestActivate(t *testing.T) {
	h, _ := newHost(t, "https://a", "https://b", "https://c")

	if !h.Activate(0) {
		t.Error("Activate(0) should change active tab")
	}
	if h.Activate(0) {
		t.Error("Activate on already active tab should report no change")
	}
	for _, idx := range []int{-1, 3, 42} {
		if h.Activate(idx) {
			t.Errorf("Activate(%d) should be ignored", idx)
		}
	}
	if h.ActiveIndex() != 0 {
		t.Errorf("active = %d, want 0", h.ActiveIndex())
	}
}

func TestDispatchTargetsActiveView(t *testing.T) {
	h, eng := newHost(t, "https://a", "https://b")
	h.Activate(0)
	active := h.Current().View

	tests := []struct {
		cmd    Command
		wantOp string
	}{
		{Command{Kind: Back}, "back"},
		{Command{Kind: Forward}, "forward"},
		{Command{Kind: Reload}, "reload"},
		{Command{Kind: Stop}, "stop"},
		{Command{Kind: Home, URL: "https://home"}, "navigate"},
		{Command{Kind: Navigate, URL: "https://x"}, "navigate"},
	}
	for _, tt := range tests {
		h.Dispatch(tt.cmd)
		call, ok := eng.LastCall()
		if !ok {
			t.Fatal("no call recorded")
		}
		if call.Op != tt.wantOp || call.View != active || call.URL != tt.cmd.URL {
			t.Errorf("%s: got call %+v, want op %s on view %d", tt.cmd.Kind, call, tt.wantOp, active)
		}
	}
}

func TestLookupAndIsActive(t *testing.T) {
	h, _ := newHost(t, "https://a", "https://b")
	first := h.Sessions()[0]

	s, idx, ok := h.Lookup(first.View)
	if !ok || idx != 0 || s != first {
		t.Fatalf("Lookup = %v, %d, %v", s, idx, ok)
	}
	if h.IsActive(first) {
		t.Error("first tab should not be active")
	}
	if !h.IsActive(h.Current()) {
		t.Error("current tab should be active")
	}
	if _, _, ok := h.Lookup(9999); ok {
		t.Error("unknown view resolved")
	}
}

func TestRandomOpenCloseKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h, _ := newHost(t, "https://start")

	for step := 0; step < 2000; step++ {
		switch rng.Intn(3) {
		case 0:
			h.OpenTab("https://x", "")
		case 1:
			h.CloseTab(rng.Intn(h.Len()+2) - 1)
		case 2:
			h.Activate(rng.Intn(h.Len()+2) - 1)
		}
		if h.Len() < 1 {
			t.Fatalf("step %d: host has no tabs", step)
		}
		if a := h.ActiveIndex(); a < 0 || a >= h.Len() {
			t.Fatalf("step %d: active %d out of bounds (len %d)", step, a, h.Len())
		}
	}
}

func TestDisplayName(t *testing.T) {
	s := &TabSession{Label: "Homepage"}
	if s.DisplayName() != "Homepage" {
		t.Errorf("DisplayName = %q", s.DisplayName())
	}
	s.CurrentTitle = "DuckDuckGo"
	if s.DisplayName() != "DuckDuckGo" {
		t.Errorf("DisplayName = %q", s.DisplayName())
	}
}

func TestCloseAllDestroysViews(t *testing.T) {
	h, eng := newHost(t, "https://a", "https://b")
	views := []*TabSession{h.Sessions()[0], h.Sessions()[1]}
	h.CloseAll()
	for _, s := range views {
		if eng.Alive(s.View) {
			t.Errorf("view %d still alive", s.View)
		}
	}
	if h.Current() != nil || h.Len() != 0 {
		t.Error("host not empty after CloseAll")
	}
}
