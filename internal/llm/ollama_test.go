package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/logging"
)

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama2", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{Response: "world"})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama2", 5*time.Second, logging.NewMockLogger())
	got, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "world", got)
}

func TestOllamaCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama2", 5*time.Second, logging.NewMockLogger())
	_, err := client.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOllamaCompleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: ""})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama2", 5*time.Second, logging.NewMockLogger())
	_, err := client.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOllamaCompleteUnreachable(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", "llama2", time.Second, logging.NewMockLogger())
	_, err := client.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOllamaPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama2", 5*time.Second, logging.NewMockLogger())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestOllamaPingUnreachable(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", "llama2", time.Second, logging.NewMockLogger())
	assert.Error(t, client.Ping(context.Background()))
}

func TestMockClientScripting(t *testing.T) {
	client := &MockClient{Responses: []string{"a", "b"}}

	first, err := client.Complete(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", first)

	second, err := client.Complete(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "b", second)

	_, err = client.Complete(context.Background(), "p3")
	assert.Error(t, err)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, []string{"p1", "p2", "p3"}, client.Prompts)
}
