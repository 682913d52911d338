// Package appconfig loads tabsurf's YAML configuration.
package appconfig

import (
	"os"
	"path/filepath"
)

// Engine names accepted by the engine key.
const (
	EngineFetch     = "fetch"
	EngineChrome    = "chrome"
	EngineExtension = "extension"
)

// Config is the top-level tabsurf configuration.
type Config struct {
	AppName   string          `mapstructure:"app_name" yaml:"app_name"`
	Homepage  string          `mapstructure:"homepage" yaml:"homepage"`
	Engine    string          `mapstructure:"engine" yaml:"engine"`
	LogDir    string          `mapstructure:"log_dir" yaml:"log_dir"`
	Fetch     FetchConfig     `mapstructure:"fetch" yaml:"fetch"`
	Chrome    ChromeConfig    `mapstructure:"chrome" yaml:"chrome"`
	Extension ExtensionConfig `mapstructure:"extension" yaml:"extension"`
}

// FetchConfig configures the text-mode engine.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
}

// ChromeConfig configures the Chrome engine.
type ChromeConfig struct {
	Headless bool   `mapstructure:"headless" yaml:"headless"`
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
}

// ExtensionConfig configures the browser-extension bridge.
type ExtensionConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		AppName:  "Tabsurf",
		Homepage: "https://start.duckduckgo.com",
		Engine:   EngineFetch,
		LogDir:   filepath.Join(home, ".local", "share", "tabsurf"),
		Fetch: FetchConfig{
			TimeoutSeconds: 15,
		},
		Chrome: ChromeConfig{
			Headless: false,
		},
		Extension: ExtensionConfig{
			Port: 19191,
		},
	}, nil
}

// DefaultConfigPath returns ~/.config/tabsurf/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabsurf", "config.yaml"), nil
}
