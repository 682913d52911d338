// Package navlog holds the append-only bookmark and history logs.
package navlog

import "github.com/lotas/tabsurf/internal/types"

// AppendLog is an ordered, append-only list of navigation records.
// Entries are never removed, merged or reordered.
type AppendLog struct {
	entries []types.NavigationRecord
}

// Append adds rec to the end of the log.
func (l *AppendLog) Append(rec types.NavigationRecord) {
	l.entries = append(l.entries, rec)
}

// List returns a copy of every entry in insertion order.
func (l *AppendLog) List() []types.NavigationRecord {
	return append([]types.NavigationRecord(nil), l.entries...)
}

// Len reports the number of entries.
func (l *AppendLog) Len() int {
	return len(l.entries)
}

// BookmarkStore records pages the user bookmarked.
type BookmarkStore struct {
	AppendLog
}

// Add appends a bookmark for the given page.
func (s *BookmarkStore) Add(url, title string) types.NavigationRecord {
	rec := types.NewRecord(title, url)
	s.Append(rec)
	return rec
}

// HistoryStore records every finished page load.
type HistoryStore struct {
	AppendLog
}

// Add appends a history entry for the given page.
func (s *HistoryStore) Add(url, title string) types.NavigationRecord {
	rec := types.NewRecord(title, url)
	s.Append(rec)
	return rec
}
