package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pustakam/internal/services"
)

// 4 MiB is generous for a single chapter; anything beyond it is a backend
// malfunction, not content.
const maxResponseBytes = 4 << 20

// googleAdapter speaks the Gemini generateContent protocol, which differs
// from the OpenAI-compatible backends in both endpoint shape and payload.
type googleAdapter struct {
	cfg        Config
	httpClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *googleAdapter) Name() Name {
	return Google
}

func (a *googleAdapter) Complete(ctx context.Context, req Request) (string, error) {
	const op = "complete"
	if a.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrAuth, "google", op, "no API key configured", nil)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.User}}}},
	}
	if system := strings.TrimSpace(req.System); system != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	if req.JSONOnly {
		payload.GenerationConfig = &geminiGenConfig{ResponseMIMEType: "application/json"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "google", op, "encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(a.cfg.BaseURL, "/"), a.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrProvider, "google", op, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", a.cfg.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(Google, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransport(Google, op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(Google, op, resp.StatusCode, string(respBody), resp.Header)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrProvider, "google", op, "malformed response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrProvider, "google", op, parsed.Error.Message, nil)
	}
	if len(parsed.Candidates) == 0 {
		return "", services.Wrap(services.ErrProvider, "google", op, "response contained no candidates", nil)
	}
	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return "", services.Wrap(services.ErrProvider, "google", op, "response contained no content", nil)
	}
	return content, nil
}
