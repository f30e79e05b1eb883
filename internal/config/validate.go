package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return err
	}

	c.Providers.Default = strings.ToLower(strings.TrimSpace(c.Providers.Default))
	if c.Providers.Default == "" {
		c.Providers.Default = defaultProvider
	}

	if c.Generation.RequestTimeoutSeconds <= 0 {
		c.Generation.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Generation.AutoRetryLimit < 0 {
		c.Generation.AutoRetryLimit = defaultAutoRetryLimit
	}
	if c.Generation.RetryBaseDelaySeconds <= 0 {
		c.Generation.RetryBaseDelaySeconds = defaultRetryBaseDelaySeconds
	}
	if c.Generation.RetryMaxDelaySeconds <= 0 {
		c.Generation.RetryMaxDelaySeconds = defaultRetryMaxDelaySeconds
	}
	if c.Generation.ModuleWordTarget <= 0 {
		c.Generation.ModuleWordTarget = defaultModuleWordTarget
	}
	if c.Storage.MinFreeMiB <= 0 {
		c.Storage.MinFreeMiB = defaultMinFreeMiB
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
	return nil
}

// Validate checks configuration invariants that cannot be normalized away.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("config: paths.data_dir is required")
	}
	if _, ok := c.ProviderSettings(c.Providers.Default); !ok {
		return fmt.Errorf("config: providers.default %q is not one of google, mistral, groq, cerebras", c.Providers.Default)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging.format %q is not console or json", c.Logging.Format)
	}
	if c.Credits.Enabled && c.Credits.CostPerBook < 0 {
		return fmt.Errorf("config: credits.cost_per_book must not be negative")
	}
	return nil
}
