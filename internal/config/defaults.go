package config

const (
	defaultDataDir               = "~/.local/share/pustakam"
	defaultLogDir                = "~/.local/share/pustakam/logs"
	defaultExportDir             = "~/books"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultProvider              = "google"
	defaultGoogleBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	defaultGoogleModel           = "gemini-2.5-flash"
	defaultMistralBaseURL        = "https://api.mistral.ai/v1"
	defaultMistralModel          = "mistral-small-latest"
	defaultGroqBaseURL           = "https://api.groq.com/openai/v1"
	defaultGroqModel             = "llama-3.3-70b-versatile"
	defaultCerebrasBaseURL       = "https://api.cerebras.ai/v1"
	defaultCerebrasModel         = "llama-3.3-70b"
	defaultRequestTimeoutSeconds = 120
	defaultAutoRetryLimit        = 2
	defaultRetryBaseDelaySeconds = 2
	defaultRetryMaxDelaySeconds  = 30
	defaultModuleWordTarget      = 1200
	defaultCreditInitialBalance  = 10
	defaultCreditCostPerBook     = 1
	defaultMinFreeMiB            = 64
	defaultNtfyTimeoutSeconds    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ExportDir: defaultExportDir,
		},
		Providers: Providers{
			Default:  defaultProvider,
			Google:   Provider{BaseURL: defaultGoogleBaseURL, Model: defaultGoogleModel},
			Mistral:  Provider{BaseURL: defaultMistralBaseURL, Model: defaultMistralModel},
			Groq:     Provider{BaseURL: defaultGroqBaseURL, Model: defaultGroqModel},
			Cerebras: Provider{BaseURL: defaultCerebrasBaseURL, Model: defaultCerebrasModel},
		},
		Generation: Generation{
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			AutoRetryLimit:        defaultAutoRetryLimit,
			RetryBaseDelaySeconds: defaultRetryBaseDelaySeconds,
			RetryMaxDelaySeconds:  defaultRetryMaxDelaySeconds,
			ModuleWordTarget:      defaultModuleWordTarget,
			ContinueOnError:       true,
		},
		Credits: Credits{
			Enabled:        true,
			InitialBalance: defaultCreditInitialBalance,
			CostPerBook:    defaultCreditCostPerBook,
		},
		Storage: Storage{
			MinFreeMiB: defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}
