package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recut/internal/config"
	"recut/internal/services"
	"recut/internal/services/llm"
)

func TestEnhancerSendsPromptAndReturnsContent(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Tight story.  "},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()

	client := llm.NewClient(config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	enhancer := llm.NewEnhancer(client, "", 0, nil)
	out, err := enhancer.Enhance(context.Background(), "Long story. Long story.")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if out != "Tight story." {
		t.Fatalf("unexpected output %q", out)
	}
	if captured.Model != llm.DefaultEnhanceModel {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if captured.Temperature < 0.69 || captured.Temperature > 0.71 {
		t.Fatalf("unexpected temperature %v", captured.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[0].Content != llm.EnhanceSystemPrompt {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
	if captured.Messages[1].Content != "Long story. Long story." {
		t.Fatalf("unexpected user message %q", captured.Messages[1].Content)
	}
}

func TestEnhancerMapsAPIErrors(t *testing.T) {
	cases := map[int]string{
		http.StatusUnauthorized:       "invalid API key",
		http.StatusTooManyRequests:    "quota or rate limit exceeded",
		http.StatusInternalServerError: "service unavailable",
	}
	for status, want := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
		}))
		client := llm.NewClient(config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
		_, err := llm.NewEnhancer(client, "gpt-4o-mini", 0.7, nil).Enhance(context.Background(), "Hi.")
		server.Close()
		if !errors.Is(err, services.ErrTranscription) {
			t.Fatalf("status %d: expected ErrTranscription, got %v", status, err)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("status %d: expected %q in %v", status, want, err)
		}
		if llm.StatusCode(err) != status {
			t.Fatalf("status %d: StatusCode = %d", status, llm.StatusCode(err))
		}
	}
}

func TestEnhancerRejectsEmptyTranscript(t *testing.T) {
	enhancer := llm.NewEnhancer(llm.NewClient(config.OpenAIConfig{APIKey: "sk"}), "", 0, nil)
	if _, err := enhancer.Enhance(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"whisper-1","object":"model"}]}`))
	}))
	defer server.Close()

	good := llm.NewClient(config.OpenAIConfig{APIKey: "good", BaseURL: server.URL + "/v1"})
	if err := llm.HealthCheck(context.Background(), good); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	bad := llm.NewClient(config.OpenAIConfig{APIKey: "bad", BaseURL: server.URL + "/v1"})
	err := llm.HealthCheck(context.Background(), bad)
	if err == nil || !strings.Contains(err.Error(), "invalid API key") {
		t.Fatalf("expected invalid key error, got %v", err)
	}
}
