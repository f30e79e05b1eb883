package provider

import "strings"

// Known model identifiers per backend. The first entry in each list is the
// backend default.
var modelCatalog = map[Name][]string{
	Google: {
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
	},
	Mistral: {
		"mistral-small-latest",
		"mistral-medium-latest",
		"mistral-large-latest",
		"open-mistral-nemo",
	},
	Groq: {
		"llama-3.3-70b-versatile",
		"llama-3.1-8b-instant",
		"openai/gpt-oss-120b",
		"qwen/qwen3-32b",
	},
	Cerebras: {
		"llama-3.3-70b",
		"llama3.1-8b",
		"qwen-3-32b",
	},
}

var defaultBaseURLs = map[Name]string{
	Google:   "https://generativelanguage.googleapis.com/v1beta",
	Mistral:  "https://api.mistral.ai/v1",
	Groq:     "https://api.groq.com/openai/v1",
	Cerebras: "https://api.cerebras.ai/v1",
}

// Models returns the known model identifiers for a backend.
func Models(name Name) []string {
	models := modelCatalog[name]
	cp := make([]string, len(models))
	copy(cp, models)
	return cp
}

// DefaultModel returns the default model for a backend.
func DefaultModel(name Name) string {
	models := modelCatalog[name]
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// ValidModel reports whether the model belongs to the backend's catalog.
func ValidModel(name Name, model string) bool {
	model = strings.TrimSpace(model)
	for _, known := range modelCatalog[name] {
		if known == model {
			return true
		}
	}
	return false
}

// DefaultBaseURL returns the public API endpoint for a backend.
func DefaultBaseURL(name Name) string {
	return defaultBaseURLs[name]
}
