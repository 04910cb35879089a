package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionsServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "test-key", "test-model", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return srv, client
}

func TestGenerateParsesJSONScript(t *testing.T) {
	var captured chatRequest
	_, client := completionsServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != completionsPath {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"scenes\":[{\"line\":\"hello\"}]}"}}]}`))
	})

	res, err := client.Generate(context.Background(), Request{
		Prompt:       "A 60 second pasta recipe",
		SystemPrompt: "system text",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Title != "A 60 second pasta recipe" {
		t.Fatalf("unexpected title: %q", res.Title)
	}
	var content map[string]any
	if err := json.Unmarshal(res.Content, &content); err != nil {
		t.Fatalf("content is not valid JSON: %v", err)
	}

	if captured.Model != "test-model" {
		t.Fatalf("unexpected model: %q", captured.Model)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", captured.ResponseFormat.Type)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "REQUEST: A 60 second pasta recipe") {
		t.Fatalf("prompt missing from user message: %q", captured.Messages[1].Content)
	}
}

func TestGenerateIncludesReferenceMaterial(t *testing.T) {
	var captured chatRequest
	_, client := completionsServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	_, err := client.Generate(context.Background(), Request{
		Prompt:    "use my recipe",
		Reference: "secret family dough recipe",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	user := captured.Messages[1].Content
	if !strings.Contains(user, "[REFERENCE MATERIAL START]") ||
		!strings.Contains(user, "secret family dough recipe") {
		t.Fatalf("reference material missing: %q", user)
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	_, client := completionsServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "anything"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestGenerateMalformedModelOutput(t *testing.T) {
	_, client := completionsServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"this is not json"}}]}`))
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "anything"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	_, client := completionsServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	if _, err := client.Generate(context.Background(), Request{Prompt: "   "}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestTitle(t *testing.T) {
	if got := Title("  A   spaced   prompt  "); got != "A spaced prompt" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := Title(""); got != "Generated script" {
		t.Fatalf("unexpected fallback title: %q", got)
	}
	long := strings.Repeat("word ", 60)
	if got := Title(long); len(got) > maxTitleLength {
		t.Fatalf("title not capped: %d chars", len(got))
	}
}
