package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"askdoc/src/infrastructure/log"
)

const (
	DefaultURL = "http://localhost:11434/api"

	// Cap on in-flight requests issued for one batch call.
	maxBatchConcurrency = 8
)

// EmbeddingRequest represents the request structure for embeddings
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingResponse represents the response structure from embeddings
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// GenerateRequest represents the request structure for model generation
type GenerateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse represents the response structure from generation
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client is an Ollama API client used both for embeddings and for
// JSON-constrained completions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	embedModel string
	llmModel   string
}

// NewClient creates a new Ollama API client. embedModel is used by Embed,
// llmModel by Complete and CompleteBatch.
func NewClient(baseURL string, c *http.Client, embedModel, llmModel string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	return &Client{
		httpClient: c,
		baseURL:    baseURL,
		embedModel: embedModel,
		llmModel:   llmModel,
	}
}

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := EmbeddingRequest{
		Model:  c.embedModel,
		Prompt: text,
	}

	var result EmbeddingResponse
	if err := c.post(ctx, "/embeddings", reqBody, &result); err != nil {
		return nil, err
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}

	embedding32 := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		embedding32[i] = float32(v)
	}

	return embedding32, nil
}

// Complete runs one generation constrained to JSON output and returns the raw
// response text. Callers are responsible for validating the shape.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := GenerateRequest{
		Model:  c.llmModel,
		System: system,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": 0.0,
		},
	}

	var result GenerateResponse
	if err := c.post(ctx, "/generate", reqBody, &result); err != nil {
		log.Error(err, "ollama generate failed", "model", c.llmModel)
		return "", err
	}

	return result.Response, nil
}

// CompleteBatch runs one completion per prompt under a shared system
// instruction. Requests are issued concurrently; the returned slice is
// order-aligned with prompts. Any failed item fails the whole batch.
func (c *Client) CompleteBatch(ctx context.Context, system string, prompts []string) ([]string, error) {
	out := make([]string, len(prompts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)
	for i, prompt := range prompts {
		g.Go(func() error {
			resp, err := c.Complete(ctx, system, prompt)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}
