package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pustakam/internal/book"
	"pustakam/internal/services"
)

func newTestAdapter(t *testing.T, name Name, handler http.HandlerFunc) Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	adapter, err := New(name, Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return adapter
}

func TestOpenAICompleteSuccess(t *testing.T) {
	adapter := newTestAdapter(t, Groq, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"chapter text"}}]}`))
	})

	content, err := adapter.Complete(context.Background(), Request{User: "write"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "chapter text" {
		t.Fatalf("content = %q", content)
	}
}

func TestGoogleCompleteSuccess(t *testing.T) {
	adapter := newTestAdapter(t, Google, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected key header %q", got)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}]}`))
	})

	content, err := adapter.Complete(context.Background(), Request{User: "write"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "part one part two" {
		t.Fatalf("content = %q", content)
	}
}

func TestCompleteClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, services.ErrAuth},
		{http.StatusForbidden, services.ErrAuth},
		{http.StatusTooManyRequests, services.ErrRateLimited},
		{http.StatusInternalServerError, services.ErrTransient},
		{http.StatusBadGateway, services.ErrTransient},
		{http.StatusBadRequest, services.ErrProvider},
	}
	for _, tc := range cases {
		adapter := newTestAdapter(t, Mistral, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := adapter.Complete(context.Background(), Request{User: "x"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}
}

func TestCompleteParsesRetryAfter(t *testing.T) {
	adapter := newTestAdapter(t, Cerebras, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := adapter.Complete(context.Background(), Request{User: "x"})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if got := RetryAfter(err); got != 7*time.Second {
		t.Fatalf("RetryAfter = %v", got)
	}
}

func TestCompleteEmptyContentIsProviderError(t *testing.T) {
	adapter := newTestAdapter(t, Groq, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
	})
	_, err := adapter.Complete(context.Background(), Request{User: "x"})
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestCompleteWithoutKeyFailsFast(t *testing.T) {
	adapter, err := New(Groq, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := adapter.Complete(context.Background(), Request{User: "x"}); !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestCompleteCanceledContextPassesThrough(t *testing.T) {
	adapter := newTestAdapter(t, Mistral, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := adapter.Complete(ctx, Request{User: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseName(t *testing.T) {
	if name, ok := ParseName(" Google "); !ok || name != Google {
		t.Fatalf("ParseName Google = %v, %v", name, ok)
	}
	if _, ok := ParseName("openai"); ok {
		t.Fatal("openai should not parse")
	}
}

func TestNormalizeSettingsCorrectsForeignModel(t *testing.T) {
	settings := book.Settings{Provider: "groq", Model: "gemini-2.5-flash"}
	if changed := NormalizeSettings(&settings); !changed {
		t.Fatal("expected correction")
	}
	if settings.Model != DefaultModel(Groq) {
		t.Fatalf("model = %q", settings.Model)
	}
}

func TestNormalizeSettingsKeepsValidPair(t *testing.T) {
	settings := book.Settings{Provider: "mistral", Model: "mistral-large-latest"}
	if changed := NormalizeSettings(&settings); changed {
		t.Fatal("unexpected correction")
	}
}

func TestDecodeJSONStripsFences(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}
	raw := "```json\n{\"title\": \"Algebra\"}\n```"
	if err := DecodeJSON(Google, "plan", raw, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.Title != "Algebra" {
		t.Fatalf("title = %q", out.Title)
	}
}

func TestDecodeJSONExtractsEmbeddedObject(t *testing.T) {
	var out struct {
		N int `json:"n"`
	}
	raw := "Here is the plan you asked for:\n{\"n\": 3}\nLet me know!"
	if err := DecodeJSON(Google, "plan", raw, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.N != 3 {
		t.Fatalf("n = %d", out.N)
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	var out map[string]any
	if err := DecodeJSON(Google, "plan", "not json at all", &out); !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
