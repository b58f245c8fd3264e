package ollama_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdoc/src/infrastructure/integrations/ollama"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollama.EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "some text", req.Prompt)

		json.NewEncoder(w).Encode(ollama.EmbeddingResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "llama3.2")
	vec, err := client.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedEmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollama.EmbeddingResponse{})
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "llama3.2")
	_, err := client.Embed(context.Background(), "some text")
	assert.ErrorContains(t, err, "empty vector")
}

func TestCompleteRequestsConstrainedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollama.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.Equal(t, "system prompt", req.System)
		assert.False(t, req.Stream)
		assert.Equal(t, "json", req.Format)
		assert.Equal(t, 0.0, req.Options["temperature"])

		json.NewEncoder(w).Encode(ollama.GenerateResponse{Response: `{"answer": "ok"}`, Done: true})
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "llama3.2")
	resp, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"answer": "ok"}`, resp)
}

func TestCompleteNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "missing")
	_, err := client.Complete(context.Background(), "s", "p")
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 404")
	assert.ErrorContains(t, err, "model not found")
}

func TestCompleteBatchKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(ollama.GenerateResponse{Response: "echo: " + req.Prompt, Done: true})
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "llama3.2")

	prompts := make([]string, 20)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("prompt %02d", i)
	}

	out, err := client.CompleteBatch(context.Background(), "system", prompts)
	require.NoError(t, err)
	require.Len(t, out, 20)
	for i, resp := range out {
		assert.Equal(t, fmt.Sprintf("echo: prompt %02d", i), resp)
	}
}

func TestCompleteBatchFailsWhole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Prompt == "poison" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ollama.GenerateResponse{Response: "ok", Done: true})
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL+"/api", srv.Client(), "nomic-embed-text", "llama3.2")
	_, err := client.CompleteBatch(context.Background(), "system", []string{"fine", "poison", "fine"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "batch item 1")
}
