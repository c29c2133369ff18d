// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/l8vibe-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete l8vibe client configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Session SessionConfig `toml:"session"`
	Auth    AuthConfig    `toml:"auth"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig describes the backend the client talks to.
type ServerConfig struct {
	// URL is the backend origin, e.g. "https://localhost:1443".
	URL string `toml:"url"`
	// ProjectPath is the project collection endpoint under URL.
	ProjectPath string `toml:"project_path"`
	// AuthPath is the login endpoint used by auth mode "remote".
	AuthPath string `toml:"auth_path"`
	// TimeoutSecs bounds every HTTP request.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSecond throttles outbound requests (0 = unlimited).
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// InsecureSkipVerify accepts self-signed certificates (development backends).
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`
}

// StorageConfig selects where client state is persisted.
type StorageConfig struct {
	// Backend is one of "file", "sqlite", "redis", "memory".
	Backend string `toml:"backend"`
	// Dir holds the file backend's records and the sqlite database.
	Dir string `toml:"dir"`
	// RedisAddr is host:port of the redis backend.
	RedisAddr string `toml:"redis_addr"`
	// RedisDB is the redis logical database.
	RedisDB int `toml:"redis_db"`
	// RedisPrefix namespaces keys in a shared redis.
	RedisPrefix string `toml:"redis_prefix"`
	// Watch enables cross-process change notification for the file backend.
	Watch bool `toml:"watch"`
}

// SessionConfig controls how long a login stays valid.
type SessionConfig struct {
	TTLHours int `toml:"ttl_hours"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// AuthConfig selects the credential check.
type AuthConfig struct {
	// Mode is one of "any", "credentials", "remote".
	Mode string `toml:"mode"`
	// CredentialsFile is the TOML user list for mode "credentials".
	CredentialsFile string `toml:"credentials_file"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark", or "light".
	Theme string `toml:"theme"`
	// ConfirmDelayMs is how long the creation confirmation stays before the
	// workspace opens.
	ConfirmDelayMs int `toml:"confirm_delay_ms"`
	// Markdown renders assistant replies with glamour.
	Markdown bool `toml:"markdown"`
	// PreviewStyle is the chroma style used for the preview pane.
	PreviewStyle string `toml:"preview_style"`
}

// ConfirmDelay returns the confirmation delay as a duration.
func (u UIConfig) ConfirmDelay() time.Duration {
	return time.Duration(u.ConfirmDelayMs) * time.Millisecond
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`
	// Path is the log file (empty = <config dir>/l8vibe.log).
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:               "https://localhost:1443",
			ProjectPath:       "/l8vibe/0/proj",
			AuthPath:          "/l8vibe/auth/login",
			TimeoutSecs:       30,
			RequestsPerSecond: 5,
		},
		Storage: StorageConfig{
			Backend:     "file",
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "l8vibe:",
			Watch:       true,
		},
		Session: SessionConfig{
			TTLHours: 24,
		},
		Auth: AuthConfig{
			Mode: "any",
		},
		UI: UIConfig{
			Theme:          "auto",
			ConfirmDelayMs: 1000,
			Markdown:       true,
			PreviewStyle:   "monokai",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// fillDefaults fills in zero values with defaults.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Server.URL == "" {
		cfg.Server.URL = d.Server.URL
	}
	if cfg.Server.ProjectPath == "" {
		cfg.Server.ProjectPath = d.Server.ProjectPath
	}
	if cfg.Server.AuthPath == "" {
		cfg.Server.AuthPath = d.Server.AuthPath
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = d.Server.TimeoutSecs
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = d.Storage.Backend
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = d.Storage.RedisAddr
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = d.Storage.RedisPrefix
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = d.Session.TTLHours
	}
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = d.Auth.Mode
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.PreviewStyle == "" {
		cfg.UI.PreviewStyle = d.UI.PreviewStyle
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the l8vibe configuration directory. L8VIBE_HOME overrides
// the default ~/.l8vibe.
func ConfigDir() (string, error) {
	if dir := os.Getenv("L8VIBE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".l8vibe"), nil
}

// ConfigPath returns the path of the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorageDir returns the directory persisted state lives in.
func (c *Config) StorageDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "l8vibe")
	}
	return filepath.Join(dir, "state")
}

// LogPath returns the file diagnostic logs are written to.
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "l8vibe.log")
	}
	return filepath.Join(dir, "l8vibe.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file if present, applies .env and
// environment overrides, and validates the result.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file yields the
// defaults; a malformed one is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	fillDefaults(cfg)

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv seeds the process environment from a .env file. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies L8VIBE_* environment variables.
//
// Supported variables:
//   - L8VIBE_SERVER_URL: overrides server.url
//   - L8VIBE_STORAGE_BACKEND: overrides storage.backend
//   - L8VIBE_STORAGE_DIR: overrides storage.dir
//   - L8VIBE_REDIS_ADDR: overrides storage.redis_addr
//   - L8VIBE_AUTH_MODE: overrides auth.mode
//   - L8VIBE_LOG_LEVEL: overrides log.level
//   - L8VIBE_SESSION_TTL_HOURS: overrides session.ttl_hours
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("L8VIBE_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("L8VIBE_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("L8VIBE_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("L8VIBE_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("L8VIBE_AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}
	if v := os.Getenv("L8VIBE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("L8VIBE_SESSION_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.Session.TTLHours = hours
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents a half-written config on crash.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# l8vibe configuration file\n")
	buf.WriteString("# Generated by l8vibe - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors when any
// field is invalid.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.URL),
		})
	}
	if !strings.HasPrefix(c.Server.ProjectPath, "/") {
		errs = append(errs, ValidationError{Field: "server.project_path", Message: "must start with /"})
	}
	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_secs", Message: "must not be negative"})
	}
	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "server.requests_per_second", Message: "must not be negative"})
	}

	validBackends := map[string]bool{"file": true, "sqlite": true, "redis": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: file, sqlite, redis, memory", c.Storage.Backend),
		})
	}

	if c.Session.TTLHours < 1 {
		errs = append(errs, ValidationError{Field: "session.ttl_hours", Message: "must be at least 1"})
	}

	validModes := map[string]bool{"any": true, "credentials": true, "remote": true}
	if !validModes[c.Auth.Mode] {
		errs = append(errs, ValidationError{
			Field:   "auth.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: any, credentials, remote", c.Auth.Mode),
		})
	}
	if c.Auth.Mode == "credentials" && c.Auth.CredentialsFile == "" {
		errs = append(errs, ValidationError{Field: "auth.credentials_file", Message: "required when auth.mode is credentials"})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.ConfirmDelayMs < 0 {
		errs = append(errs, ValidationError{Field: "ui.confirm_delay_ms", Message: "must not be negative"})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HTTPTimeout returns the request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
