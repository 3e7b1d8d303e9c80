package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxcast/voxcast/pkg/config"
)

func TestComplete_Success(t *testing.T) {
	// Mock chat completions server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" {
			t.Fatalf("unexpected messages: %+v", payload.Messages)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello back"}},
			},
		})
	}))
	defer ts.Close()

	client := NewLLMClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL, Model: "test-model"})

	out, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out != "hello back" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestComplete_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewLLMClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	client := NewLLMClient(&config.LLMConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
