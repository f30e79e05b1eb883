package book

import "strings"

// Settings holds the provider selection and credentials used for generation.
// Owned by the settings commands; the generation session reads a snapshot per
// run and never mutates it.
type Settings struct {
	Provider string
	Model    string
	// Keys maps provider name to API key.
	Keys map[string]string
}

// Key returns the API key configured for the named provider.
func (s Settings) Key(provider string) string {
	if s.Keys == nil {
		return ""
	}
	return strings.TrimSpace(s.Keys[strings.ToLower(strings.TrimSpace(provider))])
}

// SetKey records an API key for the named provider.
func (s *Settings) SetKey(provider, key string) {
	if s.Keys == nil {
		s.Keys = make(map[string]string)
	}
	s.Keys[strings.ToLower(strings.TrimSpace(provider))] = strings.TrimSpace(key)
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (s Settings) Clone() Settings {
	out := Settings{Provider: s.Provider, Model: s.Model}
	if len(s.Keys) > 0 {
		out.Keys = make(map[string]string, len(s.Keys))
		for k, v := range s.Keys {
			out.Keys[k] = v
		}
	}
	return out
}
