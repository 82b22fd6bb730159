// Package embedding turns turn texts into vectors through an external
// provider. Vectors are fetched up front in batches so similarity scoring
// stays free of I/O.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/rcliao/talkgraph/internal/config"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Embedder embeds a batch of turn texts. The result holds one vector per
// input text, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
	// BatchSize is the most texts a single EmbedBatch call accepts.
	BatchSize() int
}

// DefaultBatchSize is used when a provider is built without one.
const DefaultBatchSize = 32

// unit returns v scaled to length one, or nil for a zero or empty vector.
func unit(v Vector) []float64 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Cosine returns the cosine of the angle between a and b. Vectors of
// different lengths, or with no magnitude, score 0.
func Cosine(a, b Vector) float64 {
	return dot(unit(a), unit(b))
}

// client posts JSON to a provider endpoint.
type client struct {
	provider string
	url      string
	apiKey   string
	http     *http.Client
}

func newClient(provider, url, apiKey string) client {
	return client{provider: provider, url: url, apiKey: apiKey, http: &http.Client{Timeout: 60 * time.Second}}
}

func (c client) post(ctx context.Context, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("embedding: %s encode: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("embedding: %s request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("embedding: %s request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("embedding: %s status %d: %s", c.provider, resp.StatusCode, bytes.TrimSpace(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("embedding: %s decode: %w", c.provider, err)
	}
	return nil
}

// checkBatch verifies a provider returned one non-empty vector per text.
func checkBatch(provider string, texts []string, vecs []Vector) error {
	if len(vecs) != len(texts) {
		return fmt.Errorf("embedding: %s returned %d vectors for %d texts", provider, len(vecs), len(texts))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return fmt.Errorf("embedding: %s returned an empty vector for text %d", provider, i)
		}
	}
	return nil
}

// OllamaEmbedder embeds through Ollama's batch endpoint (/api/embed).
type OllamaEmbedder struct {
	client
	model string
	batch int
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings []Vector `json:"embeddings"`
}

// NewOllamaEmbedder returns an Ollama embedder. An empty baseURL means the
// local daemon, an empty model nomic-embed-text.
func NewOllamaEmbedder(baseURL, model string, batch int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &OllamaEmbedder{client: newClient("ollama", baseURL+"/api/embed", ""), model: model, batch: batch}
}

func (e *OllamaEmbedder) BatchSize() int { return e.batch }

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	var resp ollamaResponse
	if err := e.post(ctx, ollamaRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if err := checkBatch(e.provider, texts, resp.Embeddings); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// OpenAIEmbedder embeds through any OpenAI-compatible /embeddings API.
type OpenAIEmbedder struct {
	client
	model string
	batch int
}

type openaiRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openaiResponse struct {
	Data []struct {
		Index     int    `json:"index"`
		Embedding Vector `json:"embedding"`
	} `json:"data"`
}

// NewOpenAIEmbedder returns an OpenAI-compatible embedder. Empty values
// default to the public API and text-embedding-3-small.
func NewOpenAIEmbedder(baseURL, apiKey, model string, batch int) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &OpenAIEmbedder{client: newClient("openai", baseURL+"/embeddings", apiKey), model: model, batch: batch}
}

func (e *OpenAIEmbedder) BatchSize() int { return e.batch }

// EmbedBatch returns vectors in input order, placed by each item's index.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	var resp openaiResponse
	if err := e.post(ctx, openaiRequest{Input: texts, Model: e.model}, &resp); err != nil {
		return nil, err
	}
	sort.SliceStable(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vecs := make([]Vector, len(resp.Data))
	for i, d := range resp.Data {
		if d.Index != i {
			return nil, fmt.Errorf("embedding: openai returned index %d at position %d", d.Index, i)
		}
		vecs[i] = d.Embedding
	}
	if err := checkBatch(e.provider, texts, vecs); err != nil {
		return nil, err
	}
	return vecs, nil
}

// NewFromConfig builds the configured embedder, or nil when Provider is
// empty.
func NewFromConfig(cfg config.Embeddings) Embedder {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg.URL, cfg.Model, cfg.BatchSize)
	case "openai":
		return NewOpenAIEmbedder(cfg.URL, cfg.APIKey, cfg.Model, cfg.BatchSize)
	default:
		return nil
	}
}
