package firefox

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lotas/tabsurf/internal/types"
)

// FindFirefoxDir returns the directory holding profiles.ini for this
// platform, or "" when it is unknown.
func FindFirefoxDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Mozilla", "Firefox")
		}
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Firefox")
	}
	return filepath.Join(home, ".mozilla", "firefox")
}

type iniSection struct {
	name string
	keys map[string]string
}

// readINI splits profiles.ini into sections. Lines outside a section and
// lines without '=' are ignored.
func readINI(r io.Reader) ([]iniSection, error) {
	var sections []iniSection
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			sections = append(sections, iniSection{name: line[1 : len(line)-1], keys: map[string]string{}})
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || len(sections) == 0 {
			continue
		}
		sections[len(sections)-1].keys[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// ParseProfilesINI returns the profiles listed in iniPath that have a
// session to restore. Relative paths are resolved against firefoxDir.
func ParseProfilesINI(iniPath, firefoxDir string) ([]types.Profile, error) {
	f, err := os.Open(iniPath)
	if err != nil {
		return nil, fmt.Errorf("open profiles.ini: %w", err)
	}
	defer f.Close()

	sections, err := readINI(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", iniPath, err)
	}

	var usable []types.Profile
	for _, s := range sections {
		if !strings.HasPrefix(s.name, "Profile") {
			continue
		}
		p := types.Profile{
			Name:       s.keys["Name"],
			Path:       s.keys["Path"],
			IsRelative: s.keys["IsRelative"] == "1",
			IsDefault:  s.keys["Default"] == "1",
		}
		if p.IsRelative {
			p.Path = filepath.Join(firefoxDir, p.Path)
		}
		if p.Path == "" || !hasSessionFile(p.Path) {
			continue
		}
		usable = append(usable, p)
	}
	return usable, nil
}

// DiscoverProfiles lists restorable profiles of the local Firefox install.
func DiscoverProfiles() ([]types.Profile, error) {
	dir := FindFirefoxDir()
	if dir == "" {
		return nil, fmt.Errorf("could not find Firefox directory for %s", runtime.GOOS)
	}
	return discoverIn(dir)
}

func discoverIn(firefoxDir string) ([]types.Profile, error) {
	return ParseProfilesINI(filepath.Join(firefoxDir, "profiles.ini"), firefoxDir)
}
