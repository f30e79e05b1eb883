package provider

import (
	"encoding/json"
	"strings"

	"pustakam/internal/services"
)

// DecodeJSON unmarshals a model response into target, tolerating the code
// fences and prose framing that models wrap around JSON payloads.
func DecodeJSON(name Name, op, raw string, target any) error {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return services.Wrap(services.ErrProvider, string(name), op, "empty response", nil)
	}
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		// Models occasionally prepend commentary; retry from the first
		// JSON delimiter through the last.
		if extracted := extractJSON(cleaned); extracted != "" && extracted != cleaned {
			if err2 := json.Unmarshal([]byte(extracted), target); err2 == nil {
				return nil
			}
		}
		return services.Wrap(services.ErrProvider, string(name), op, "response is not valid JSON", err)
	}
	return nil
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

func extractJSON(raw string) string {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if raw[start] == '{' {
		end = strings.LastIndex(raw, "}")
	} else {
		end = strings.LastIndex(raw, "]")
	}
	if end <= start {
		return ""
	}
	return raw[start : end+1]
}
