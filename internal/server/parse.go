package server

import (
	"encoding/json"
	"fmt"
)

type wireTab struct {
	ID         int    `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	WindowID   int    `json:"windowId"`
	Index      int    `json:"index"`
	FavIconURL string `json:"favIconUrl"`
}

// TabState is the browser's view of one tab as reported in tab.updated.
type TabState struct {
	BrowserID int
	URL       string
	Title     string
	Status    string // "loading" or "complete"
	Favicon   string
}

// Complete reports whether the browser finished loading the tab.
func (t TabState) Complete() bool {
	return t.Status == "complete"
}

// ParseTab converts a raw JSON tab into a TabState.
func ParseTab(raw json.RawMessage) (TabState, error) {
	if len(raw) == 0 {
		return TabState{}, fmt.Errorf("parse tab: empty payload")
	}
	var wt wireTab
	if err := json.Unmarshal(raw, &wt); err != nil {
		return TabState{}, fmt.Errorf("parse tab: %w", err)
	}
	return TabState{
		BrowserID: wt.ID,
		URL:       wt.URL,
		Title:     wt.Title,
		Status:    wt.Status,
		Favicon:   wt.FavIconURL,
	}, nil
}
