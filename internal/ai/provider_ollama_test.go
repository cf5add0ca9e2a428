package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete(t *testing.T) {
	var received ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Ollama should not send Authorization header")
		}
		json.NewDecoder(r.Body).Decode(&received)

		json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3:8b",
			Message:         Message{Role: "assistant", Content: "Ollama response"},
			Done:            true,
			PromptEvalCount: 5,
			EvalCount:       10,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages:  []Message{{Role: "user", Content: "hello"}},
		JSON:      true,
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Ollama response" {
		t.Errorf("content = %q, want %q", resp.Content, "Ollama response")
	}
	if resp.TotalTokens() != 15 {
		t.Errorf("TotalTokens() = %d, want 15", resp.TotalTokens())
	}

	if received.Model != "llama3:8b" {
		t.Errorf("model = %q, want default llama3:8b", received.Model)
	}
	if received.Stream {
		t.Error("stream should be false")
	}
	if received.Format != "json" {
		t.Errorf("format = %q, want json", received.Format)
	}
	if received.Options == nil || received.Options.NumPredict != 256 {
		t.Errorf("options = %+v, want num_predict 256", received.Options)
	}
}

func TestOllamaProvider_Complete_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"model not found"}`},
		{"empty message", http.StatusOK, `{"model":"m","message":{"role":"assistant","content":""}}`},
		{"bad json", http.StatusOK, `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOllamaProvider(server.URL).Complete(context.Background(), CompletionRequest{
				Messages: []Message{{Role: "user", Content: "hello"}},
			})
			if err == nil {
				t.Fatal("Complete() should return error")
			}
		})
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewOllamaProvider(server.URL).HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOllamaProvider_Models(t *testing.T) {
	models := NewOllamaProvider("http://x", WithOllamaModel("qwen2.5:7b")).Models()
	if len(models) != 1 || models[0].ID != "qwen2.5:7b" {
		t.Errorf("Models() = %+v", models)
	}
}
