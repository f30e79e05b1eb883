package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"pustakam/internal/services"
)

// openAIAdapter serves the three backends that speak the OpenAI-compatible
// chat completions protocol: Mistral, Groq, and Cerebras.
type openAIAdapter struct {
	name       Name
	cfg        Config
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *openAIAdapter) Name() Name {
	return a.name
}

func (a *openAIAdapter) Complete(ctx context.Context, req Request) (string, error) {
	const op = "complete"
	if a.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrAuth, string(a.name), op, "no API key configured", nil)
	}

	payload := chatRequest{Model: a.cfg.Model}
	if system := strings.TrimSpace(req.System); system != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: system})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.User})
	if req.JSONOnly {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, "encode request", err)
	}

	url := strings.TrimRight(a.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, "build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(a.name, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransport(a.name, op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(a.name, op, resp.StatusCode, string(respBody), resp.Header)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, "malformed response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, "response contained no choices", nil)
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", services.Wrap(services.ErrProvider, string(a.name), op, "response contained no content", nil)
	}
	return content, nil
}
