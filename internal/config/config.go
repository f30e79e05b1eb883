package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ExportDir string `toml:"export_dir"`
}

// Provider contains the connection settings for one LLM backend.
type Provider struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Providers groups the four supported backends.
type Providers struct {
	Default  string   `toml:"default"`
	Google   Provider `toml:"google"`
	Mistral  Provider `toml:"mistral"`
	Groq     Provider `toml:"groq"`
	Cerebras Provider `toml:"cerebras"`
}

// Generation contains session pacing, retry, and sizing settings.
type Generation struct {
	// RequestTimeoutSeconds bounds a single provider call.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	// AutoRetryLimit caps automatic retries of transient failures per
	// module attempt before the module surfaces as errored.
	AutoRetryLimit int `toml:"auto_retry_limit"`
	// RetryBaseDelaySeconds is the initial backoff between automatic retries.
	RetryBaseDelaySeconds int `toml:"retry_base_delay_seconds"`
	// RetryMaxDelaySeconds caps the backoff between automatic retries.
	RetryMaxDelaySeconds int `toml:"retry_max_delay_seconds"`
	// ModuleWordTarget is the approximate word budget requested per module.
	ModuleWordTarget int `toml:"module_word_target"`
	// ContinueOnError keeps generating later modules after one fails.
	ContinueOnError bool `toml:"continue_on_error"`
}

// Credits contains the local credit ledger settings.
type Credits struct {
	// Enabled turns the quota gate on. When disabled every start is allowed.
	Enabled bool `toml:"enabled"`
	// InitialBalance seeds the ledger on first open.
	InitialBalance int64 `toml:"initial_balance"`
	// CostPerBook is debited once per generation start, never per module.
	CostPerBook int64 `toml:"cost_per_book"`
}

// Notifications contains the ntfy push notification settings. An empty
// topic URL disables notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Storage contains persistence safety settings.
type Storage struct {
	// MinFreeMiB is the free-space floor below which preflight reports the
	// store as storage-constrained.
	MinFreeMiB int64 `toml:"min_free_mib"`
}

// Config encapsulates all configuration values for Pustakam.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and export directories
//   - Providers: per-backend API keys, base URLs, and models
//   - Generation: provider timeouts, retry policy, module sizing
//   - Credits: local credit gate for generation starts
//   - Storage: free-space floor for the book store
//   - Logging: log format and level
//   - Notifications: optional ntfy push notifications
type Config struct {
	Paths      Paths      `toml:"paths"`
	Providers  Providers  `toml:"providers"`
	Generation Generation `toml:"generation"`
	Credits    Credits    `toml:"credits"`
	Storage    Storage    `toml:"storage"`
	Logging    Logging    `toml:"logging"`

	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pustakam/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pustakam.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ExportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.DataDir, "pustakam.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "pustakam.lock")
}

// LogFilePath returns the daemon log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "pustakam.log")
}

// DatabasePath returns the book store database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "books.db")
}

// ProviderSettings returns the configured section for the named provider.
func (c *Config) ProviderSettings(name string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google":
		return c.Providers.Google, true
	case "mistral":
		return c.Providers.Mistral, true
	case "groq":
		return c.Providers.Groq, true
	case "cerebras":
		return c.Providers.Cerebras, true
	default:
		return Provider{}, false
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
