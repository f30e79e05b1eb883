package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/config"
	"pustakam/internal/services"
)

const defaultHTTPTimeout = 120 * time.Second

// Name identifies one of the supported LLM backends.
type Name string

const (
	Google   Name = "google"
	Mistral  Name = "mistral"
	Groq     Name = "groq"
	Cerebras Name = "cerebras"
)

var allNames = []Name{Google, Mistral, Groq, Cerebras}

// Names returns the closed set of supported providers in display order.
func Names() []Name {
	cp := make([]Name, len(allNames))
	copy(cp, allNames)
	return cp
}

// ParseName converts a string into a known provider Name.
func ParseName(value string) (Name, bool) {
	normalized := Name(strings.ToLower(strings.TrimSpace(value)))
	for _, name := range allNames {
		if name == normalized {
			return name, true
		}
	}
	return "", false
}

// Request describes a single completion call. Every call is independent;
// adapters hold no session state and are safe for concurrent use.
type Request struct {
	System string
	User   string
	// JSONOnly asks the backend for a JSON object response where supported.
	JSONOnly bool
}

// Adapter is the uniform contract across the four backends.
type Adapter interface {
	Name() Name
	Complete(ctx context.Context, req Request) (string, error)
}

// Config carries the per-call connection settings for one backend.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Option customizes adapter construction.
type Option func(*adapterOptions)

type adapterOptions struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(client *http.Client) Option {
	return func(o *adapterOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// New constructs the adapter for the named backend. Dispatch is by tag over
// the closed provider set, not inheritance.
func New(name Name, cfg Config, opts ...Option) (Adapter, error) {
	options := &adapterOptions{}
	for _, opt := range opts {
		opt(options)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(name)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL(name)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	switch name {
	case Google:
		return &googleAdapter{cfg: cfg, httpClient: httpClient}, nil
	case Mistral, Groq, Cerebras:
		return &openAIAdapter{name: name, cfg: cfg, httpClient: httpClient}, nil
	default:
		return nil, services.Wrap(services.ErrProvider, "provider", "new", "unknown provider "+string(name), nil)
	}
}

// FromSettings builds the adapter selected by the user settings, falling back
// to config-file provider sections for connection details.
func FromSettings(settings book.Settings, cfg *config.Config, opts ...Option) (Adapter, error) {
	name, ok := ParseName(settings.Provider)
	if !ok {
		return nil, services.Wrap(services.ErrProvider, "provider", "settings", "unknown provider "+settings.Provider, nil)
	}

	adapterCfg := Config{
		APIKey: settings.Key(string(name)),
		Model:  strings.TrimSpace(settings.Model),
	}
	if cfg != nil {
		if section, ok := cfg.ProviderSettings(string(name)); ok {
			adapterCfg.BaseURL = section.BaseURL
			if adapterCfg.APIKey == "" {
				adapterCfg.APIKey = strings.TrimSpace(section.APIKey)
			}
			if adapterCfg.Model == "" {
				adapterCfg.Model = strings.TrimSpace(section.Model)
			}
		}
		adapterCfg.Timeout = time.Duration(cfg.Generation.RequestTimeoutSeconds) * time.Second
	}
	return New(name, adapterCfg, opts...)
}

// NormalizeSettings enforces the settings invariant: the selected model must
// belong to the selected provider's model list. Violations are corrected to
// the provider default. Returns true when a correction was applied.
func NormalizeSettings(settings *book.Settings) bool {
	if settings == nil {
		return false
	}
	changed := false
	name, ok := ParseName(settings.Provider)
	if !ok {
		name = Google
		settings.Provider = string(name)
		changed = true
	} else if settings.Provider != string(name) {
		settings.Provider = string(name)
		changed = true
	}
	if !ValidModel(name, settings.Model) {
		settings.Model = DefaultModel(name)
		changed = true
	}
	return changed
}
