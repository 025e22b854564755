package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func anthropicTestResponse(text string) anthropicResponse {
	var resp anthropicResponse
	resp.Model = "claude-3-5-haiku-20241022"
	resp.Content = []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{
		{Type: "text", Text: text},
	}
	resp.Usage.InputTokens = 20
	resp.Usage.OutputTokens = 30
	return resp
}

func TestAnthropicComplete(t *testing.T) {
	var gotReq anthropicRequest
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(anthropicTestResponse(`{"quiz": []}`))
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(Config{Provider: "anthropic", APIKey: "sk-ant-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	resp, err := p.Complete(context.Background(), CompletionRequest{
		System:      "system text",
		Prompt:      "prompt text",
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Text != `{"quiz": []}` {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 50 {
		t.Errorf("TokensUsed = %d, want 50", resp.TokensUsed)
	}

	if gotHeaders.Get("x-api-key") != "sk-ant-test" {
		t.Error("request should carry the API key header")
	}
	if gotHeaders.Get("anthropic-version") == "" {
		t.Error("request should carry the API version header")
	}
	if gotReq.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("request model = %q, want the default", gotReq.Model)
	}
	if gotReq.System != "system text" {
		t.Errorf("request system = %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "prompt text" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		var apiErr anthropicError
		apiErr.Error.Type = "rate_limit_error"
		apiErr.Error.Message = "rate limit exceeded"
		_ = json.NewEncoder(w).Encode(apiErr)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(Config{Provider: "anthropic", APIKey: "sk-ant-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	_, err = p.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Complete() should fail")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error = %v, should carry the API message", err)
	}
}

func TestAnthropicModelOverride(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(anthropicTestResponse("ok"))
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(Config{Provider: "anthropic", APIKey: "sk-ant-test", BaseURL: srv.URL, Model: "claude-sonnet-4-20250514"})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotReq.Model != "claude-sonnet-4-20250514" {
		t.Errorf("configured model should be used, got %q", gotReq.Model)
	}

	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "hi", Model: "claude-3-5-haiku-20241022"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if gotReq.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("per-request model should win, got %q", gotReq.Model)
	}
}
