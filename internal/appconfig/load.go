package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. TABSURF_FETCH_TIMEOUT_SECONDS.
const EnvPrefix = "TABSURF"

// Load reads configuration from path, falling back to $TABSURF_CONFIG and
// then DefaultConfigPath. A missing default file is not an error; a
// missing explicit one is.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		explicit = false
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("homepage", cfg.Homepage)
	v.SetDefault("engine", cfg.Engine)
	v.SetDefault("log_dir", cfg.LogDir)
	v.SetDefault("fetch.timeout_seconds", cfg.Fetch.TimeoutSeconds)
	v.SetDefault("fetch.user_agent", cfg.Fetch.UserAgent)
	v.SetDefault("chrome.headless", cfg.Chrome.Headless)
	v.SetDefault("chrome.exec_path", cfg.Chrome.ExecPath)
	v.SetDefault("extension.port", cfg.Extension.Port)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the shell cannot recover from.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineFetch, EngineChrome, EngineExtension:
	default:
		return fmt.Errorf("unsupported engine %q (want %s, %s or %s)", c.Engine, EngineFetch, EngineChrome, EngineExtension)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	if c.Extension.Port <= 0 || c.Extension.Port > 65535 {
		return fmt.Errorf("extension.port %d out of range", c.Extension.Port)
	}
	return nil
}

// WriteDefault writes the default configuration to path (or the default
// path) and returns where it was written.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
