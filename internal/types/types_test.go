package types

import "testing"

func TestNavigationRecordString(t *testing.T) {
	r := NewRecord("Example", "https://example.com")
	if got, want := r.String(), "Example - https://example.com"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewTabIDUnique(t *testing.T) {
	seen := make(map[TabID]bool)
	for i := 0; i < 100; i++ {
		id := NewTabID()
		if id == "" {
			t.Fatal("empty tab id")
		}
		if seen[id] {
			t.Fatalf("duplicate tab id %q", id)
		}
		seen[id] = true
	}
}
