package firefox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lotas/tabsurf/internal/applog"
	"github.com/lotas/tabsurf/internal/types"
)

var internalPrefixes = []string{"about:", "moz-extension:", "chrome:", "resource:", "view-source:"}

// Restorable lists the pages of a session that can be reopened, in window
// and tab order. Browser-internal pages are skipped.
func Restorable(sd *types.SessionData) []types.NavigationRecord {
	var out []types.NavigationRecord
	for _, tab := range sd.AllTabs {
		if tab.URL == "" || isInternal(tab.URL) {
			continue
		}
		out = append(out, types.NewRecord(tab.Title, tab.URL))
	}
	return out
}

func isInternal(u string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

// ResolveProfile finds a profile by directory path or by name. An empty
// name selects the default profile.
func ResolveProfile(nameOrPath string) (types.Profile, error) {
	if nameOrPath != "" {
		if fi, err := os.Stat(nameOrPath); err == nil && fi.IsDir() {
			abs, err := filepath.Abs(nameOrPath)
			if err != nil {
				return types.Profile{}, err
			}
			return types.Profile{Name: filepath.Base(abs), Path: abs}, nil
		}
	}

	profiles, err := DiscoverProfiles()
	if err != nil {
		return types.Profile{}, err
	}
	return pickProfile(profiles, nameOrPath)
}

func pickProfile(profiles []types.Profile, name string) (types.Profile, error) {
	if len(profiles) == 0 {
		return types.Profile{}, fmt.Errorf("no Firefox profiles with a saved session")
	}
	for _, p := range profiles {
		if (name == "" && p.IsDefault) || (name != "" && p.Name == name) {
			return p, nil
		}
	}
	if name == "" {
		return profiles[0], nil
	}
	return types.Profile{}, fmt.Errorf("firefox profile %q not found", name)
}

// Restore reads the saved session of a profile and returns its pages.
func Restore(nameOrPath string) ([]types.NavigationRecord, error) {
	profile, err := ResolveProfile(nameOrPath)
	if err != nil {
		return nil, err
	}
	sd, err := ReadSessionFile(profile.Path)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", profile.Name, err)
	}
	sd.Profile = profile
	records := Restorable(sd)
	applog.Info("firefox.restore", "profile", profile.Name, "tabs", len(sd.AllTabs), "restorable", len(records))
	return records, nil
}
