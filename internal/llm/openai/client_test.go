package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"interviewhub-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient("test-key", "")
	client.baseURL = srv.URL
	return client
}

func seedModels(c *Client, models ...string) {
	c.models.mu.Lock()
	defer c.models.mu.Unlock()
	c.models.discovered = true
	c.models.ranked = models
}

func chatOK(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func chatError(t *testing.T, w http.ResponseWriter, status int, code, errType, message string) {
	t.Helper()
	w.WriteHeader(status)
	resp := map[string]any{
		"error": map[string]string{"code": code, "type": errType, "message": message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode error response: %v", err)
	}
}

func TestCompleteFallsBackToNextModel(t *testing.T) {
	var attempted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		attempted = append(attempted, req.Model)
		if req.Model == "model-a" {
			chatError(t, w, http.StatusNotFound, "model_not_found", "invalid_request_error", "The model `model-a` does not exist")
			return
		}
		chatOK(t, w, "from model-b")
	})
	seedModels(client, "model-a", "model-b", "model-c")

	out, err := client.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "from model-b" {
		t.Fatalf("expected model-b output, got %q", out)
	}
	if len(attempted) != 2 || attempted[0] != "model-a" || attempted[1] != "model-b" {
		t.Fatalf("expected attempts [model-a model-b], got %v", attempted)
	}
}

func TestCompleteQuotaErrorAborts(t *testing.T) {
	var attempts int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		chatError(t, w, http.StatusTooManyRequests, "insufficient_quota", "insufficient_quota", "You exceeded your current quota")
	})
	seedModels(client, "model-a", "model-b")

	_, err := client.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, llm.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("quota errors must not trigger model fallback, got %d attempts", attempts)
	}
}

func TestCompleteAuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatError(t, w, http.StatusUnauthorized, "invalid_api_key", "invalid_request_error", "Incorrect API key provided")
	})
	seedModels(client, "model-a")

	_, err := client.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, llm.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestCompleteAllModelsExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatError(t, w, http.StatusNotFound, "model_not_found", "invalid_request_error", "no such model")
	})
	seedModels(client, "model-a", "model-b")

	_, err := client.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, llm.ErrModelNotFound) {
		t.Fatalf("expected model-not-found after exhausting candidates, got %v", err)
	}
}

func TestCompleteWithoutKeyIsUnavailable(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), llm.Request{})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if client.Available() {
		t.Fatal("client without key must report unavailable")
	}
}

func TestJSONOutputSetsResponseFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Fatalf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		chatOK(t, w, `{"ok":true}`)
	})
	seedModels(client, "model-a")

	if _, err := client.Complete(context.Background(), llm.Request{JSONOutput: true}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}
