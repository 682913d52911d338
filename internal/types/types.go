package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NavigationRecord is one history or bookmark entry. Records are values and
// never change after creation; the same page may appear any number of times.
type NavigationRecord struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewRecord builds a NavigationRecord.
func NewRecord(title, url string) NavigationRecord {
	return NavigationRecord{Title: title, URL: url}
}

// String renders the record the way the history dialog lists it.
func (r NavigationRecord) String() string {
	return fmt.Sprintf("%s - %s", r.Title, r.URL)
}

// TabID is the stable identity of a tab for its whole lifetime.
type TabID string

// NewTabID returns a fresh random tab identity.
func NewTabID() TabID {
	return TabID(uuid.NewString())
}

// Tab is a tab read from a Firefox session file.
type Tab struct {
	URL          string
	Title        string
	LastAccessed time.Time
	GroupID      string // empty if ungrouped
	Favicon      string
	WindowIndex  int
	TabIndex     int
}

// TabGroup represents a Firefox tab group.
type TabGroup struct {
	ID        string
	Name      string
	Color     string
	Collapsed bool
	Tabs      []*Tab
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// SessionData holds all parsed data from a Firefox session.
type SessionData struct {
	Groups   []*TabGroup
	AllTabs  []*Tab
	Profile  Profile
	ParsedAt time.Time
}
