package export

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/lotas/tabsurf/internal/types"
)

type jsonExport struct {
	Title      string      `json:"title"`
	ExportedAt time.Time   `json:"exported_at"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
}

// JSON renders a history or bookmark list as an indented JSON document.
func JSON(title string, records []types.NavigationRecord) (string, error) {
	out := jsonExport{
		Title:      title,
		ExportedAt: time.Now(),
		Entries:    make([]jsonEntry, 0, len(records)),
	}
	for i, r := range records {
		out.Entries = append(out.Entries, jsonEntry{
			Position: i + 1,
			Title:    r.Title,
			URL:      r.URL,
			Domain:   extractDomain(r.URL),
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
