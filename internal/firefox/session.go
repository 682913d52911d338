package firefox

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lotas/tabsurf/internal/types"
	"github.com/pierrec/lz4/v4"
)

var mozLz4Magic = []byte("mozLz40\x00")

// sessionFiles are tried in order: the live session, then the last closed one.
var sessionFiles = []string{"recovery.jsonlz4", "previous.jsonlz4"}

// DecompressMozLz4 decodes Mozilla's mozlz4 container: an 8-byte magic,
// a little-endian uint32 size and one raw lz4 block.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12
	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}
	if !bytes.HasPrefix(data, mozLz4Magic) {
		return nil, errors.New("mozlz4: invalid header magic")
	}
	dst := make([]byte, binary.LittleEndian.Uint32(data[8:headerSize]))
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}
	return dst[:n], nil
}

type rawSession struct {
	Windows []struct {
		Tabs []struct {
			Entries []struct {
				URL   string `json:"url"`
				Title string `json:"title"`
			} `json:"entries"`
			Index        int    `json:"index"`
			LastAccessed int64  `json:"lastAccessed"`
			Image        string `json:"image"`
			Group        string `json:"groupId"`
		} `json:"tabs"`
		Groups []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Color     string `json:"color"`
			Collapsed bool   `json:"collapsed"`
		} `json:"groups"`
	} `json:"windows"`
}

// ParseSession decodes session JSON. Each tab contributes the page it was
// showing; tabs outside a known group are collected into a trailing
// "Ungrouped" group per window.
func ParseSession(data []byte) (*types.SessionData, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}

	sd := &types.SessionData{ParsedAt: time.Now()}
	for winIdx, w := range raw.Windows {
		groups := make(map[string]*types.TabGroup, len(w.Groups))
		for _, g := range w.Groups {
			tg := &types.TabGroup{ID: g.ID, Name: g.Name, Color: g.Color, Collapsed: g.Collapsed}
			groups[g.ID] = tg
			sd.Groups = append(sd.Groups, tg)
		}
		ungrouped := &types.TabGroup{Name: "Ungrouped"}

		for tabIdx, rt := range w.Tabs {
			if len(rt.Entries) == 0 {
				continue
			}
			// index is 1-based; out-of-range falls back to the newest entry.
			cur := rt.Index - 1
			if cur < 0 || cur >= len(rt.Entries) {
				cur = len(rt.Entries) - 1
			}
			tab := &types.Tab{
				URL:          rt.Entries[cur].URL,
				Title:        rt.Entries[cur].Title,
				LastAccessed: time.UnixMilli(rt.LastAccessed),
				Favicon:      rt.Image,
				GroupID:      rt.Group,
				WindowIndex:  winIdx,
				TabIndex:     tabIdx,
			}
			sd.AllTabs = append(sd.AllTabs, tab)

			if g, ok := groups[rt.Group]; ok && rt.Group != "" {
				g.Tabs = append(g.Tabs, tab)
			} else {
				ungrouped.Tabs = append(ungrouped.Tabs, tab)
			}
		}
		if len(ungrouped.Tabs) > 0 {
			sd.Groups = append(sd.Groups, ungrouped)
		}
	}
	return sd, nil
}

// ReadSessionFile reads and parses the session file of a profile directory.
func ReadSessionFile(profileDir string) (*types.SessionData, error) {
	backupDir := filepath.Join(profileDir, "sessionstore-backups")
	for _, name := range sessionFiles {
		data, err := os.ReadFile(filepath.Join(backupDir, name))
		if err != nil {
			continue
		}
		decompressed, err := DecompressMozLz4(data)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", name, err)
		}
		return ParseSession(decompressed)
	}
	return nil, fmt.Errorf("no session file found in %s", backupDir)
}

func hasSessionFile(profileDir string) bool {
	for _, name := range sessionFiles {
		if _, err := os.Stat(filepath.Join(profileDir, "sessionstore-backups", name)); err == nil {
			return true
		}
	}
	return false
}
