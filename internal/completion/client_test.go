package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerate_SendsChatRequestAndCleansFences(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", auth)
		}
		if errDecode := json.NewDecoder(r.Body).Decode(&got); errDecode != nil {
			t.Errorf("decode request: %v", errDecode)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```html\\n<html><body>hi</body></html>\\n```" + `"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "test-key", time.Second)
	html, err := client.Generate(context.Background(), Request{Prompt: "a page", Model: "gpt-oss-120b", Temperature: 0.5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if html != "<html><body>hi</body></html>" {
		t.Fatalf("expected cleaned html, got %q", html)
	}
	if got.Model != "gpt-oss-120b" || got.Temperature != 0.5 || got.MaxTokens != 4000 {
		t.Fatalf("unexpected request: model=%s temperature=%v max_tokens=%d", got.Model, got.Temperature, got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "a page" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestGenerate_DefaultModel(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"<p>ok</p>"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second)
	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Model != DefaultModel {
		t.Fatalf("expected model=%s, got %s", DefaultModel, got.Model)
	}
}

func TestGenerate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "upstream error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "malformed json", status: http.StatusOK, body: `{`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"` + "```" + `"}}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "k", time.Second)
			if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "k", 50*time.Millisecond)
	start := time.Now()
	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected prompt timeout, took %s", elapsed)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "  ", time.Second)
	if client.Configured() {
		t.Fatalf("expected client without key to be unconfigured")
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCatalog(t *testing.T) {
	if len(Prompts()) != 15 {
		t.Fatalf("expected 15 prompts, got %d", len(Prompts()))
	}
	if !IsModel("qwen-3-coder-480b") || !IsModel("gpt-oss-120b") || IsModel("gpt-4") {
		t.Fatalf("unexpected model membership")
	}
	for i := 0; i < 20; i++ {
		if !IsModel(RandomModel()) {
			t.Fatalf("random model outside catalogue")
		}
		prompt := RandomPrompt()
		if strings.TrimSpace(prompt) == "" {
			t.Fatalf("expected non-empty random prompt")
		}
	}
	list := Models()
	list[0] = "mutated"
	if !IsModel(DefaultModel) {
		t.Fatalf("expected Models to return a copy")
	}
}
