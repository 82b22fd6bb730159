package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/similarity"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, math.Sqrt2 / 2},
		{"scale invariant", Vector{3, 0}, Vector{0.5, 0}, 1.0},
		{"empty", Vector{}, Vector{}, 0.0},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	if e := NewFromConfig(config.Embeddings{}); e != nil {
		t.Error("expected nil embedder when no provider configured")
	}
	if e := NewFromConfig(config.Embeddings{Provider: "ollama", BatchSize: 8}); e == nil || e.BatchSize() != 8 {
		t.Errorf("ollama embedder = %v", e)
	}
	e := NewFromConfig(config.Embeddings{Provider: "openai"})
	if e == nil || e.BatchSize() != DefaultBatchSize {
		t.Errorf("openai embedder = %v", e)
	}
	if o, ok := e.(*OpenAIEmbedder); !ok || o.model != "text-embedding-3-small" {
		t.Errorf("openai defaults = %+v", e)
	}
}

// vectorFor maps turn texts onto two axes: "other..." texts point one way,
// everything else the other.
func vectorFor(text string) Vector {
	if strings.HasPrefix(text, "other") {
		return Vector{0, 1}
	}
	return Vector{1, 0}
}

// fakeOllama answers /api/embed batches and records each batch size.
func fakeOllama(t *testing.T, batches *[]int) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		*batches = append(*batches, len(req.Input))
		mu.Unlock()
		var resp ollamaResponse
		for _, text := range req.Input {
			if strings.Contains(text, "fail") {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			resp.Embeddings = append(resp.Embeddings, vectorFor(text))
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedAll_Batches(t *testing.T) {
	var batches []int
	srv := fakeOllama(t, &batches)
	e := NewOllamaEmbedder(srv.URL, "", 2)

	texts := []string{"budget talk", "budget talk", "", "other thing", "hiring plan", "  "}
	vecs, err := EmbedAll(context.Background(), e, texts, 1)
	if err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if len(vecs) != 3 {
		t.Errorf("expected 3 distinct vectors, got %d", len(vecs))
	}
	if vecs["other thing"][1] != 1 || vecs["budget talk"][0] != 1 {
		t.Errorf("vectors = %v", vecs)
	}
	sort.Ints(batches)
	if len(batches) != 2 || batches[0] != 1 || batches[1] != 2 {
		t.Errorf("batch sizes = %v, want [1 2]", batches)
	}
}

func TestEmbedAll_Error(t *testing.T) {
	var batches []int
	srv := fakeOllama(t, &batches)
	e := NewOllamaEmbedder(srv.URL, "", 1)

	_, err := EmbedAll(context.Background(), e, []string{"ok", "please fail"}, 1)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status error, got %v", err)
	}
}

// shortEmbedder drops the last vector of every batch.
type shortEmbedder struct{}

func (shortEmbedder) BatchSize() int { return 4 }

func (shortEmbedder) EmbedBatch(_ context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts)-1)
	for i := range out {
		out[i] = Vector{1}
	}
	return out, nil
}

func TestEmbedAll_CountMismatch(t *testing.T) {
	_, err := EmbedAll(context.Background(), shortEmbedder{}, []string{"a", "b"}, 1)
	if err == nil || !strings.Contains(err.Error(), "1 vectors for 2 texts") {
		t.Errorf("expected count mismatch, got %v", err)
	}
}

func TestOpenAIEmbedder_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" || r.Header.Get("Authorization") != "Bearer key" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var resp openaiResponse
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, struct {
				Index     int    `json:"index"`
				Embedding Vector `json:"embedding"`
			}{i, vectorFor(req.Input[i])})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	e := NewOpenAIEmbedder(srv.URL, "key", "", 0)
	vecs, err := e.EmbedBatch(context.Background(), []string{"budget", "other"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("vectors = %v", vecs)
	}
}

func TestStrategy(t *testing.T) {
	s := &Strategy{Vectors: map[string]Vector{
		"a": {1, 0},
		"b": {1, 1},
		"c": {-1, 0},
	}}
	if !s.Applicable([]string{"a", "", "b"}) {
		t.Error("expected applicable when every non-empty text has a vector")
	}
	if s.Applicable([]string{"a", "missing"}) {
		t.Error("expected not applicable with a missing vector")
	}

	m := s.Matrix([]string{"a", "b", "c", ""})
	if m.At(0, 0) != 1 || m.At(3, 3) != 0 {
		t.Errorf("diagonal = %v / %v", m.At(0, 0), m.At(3, 3))
	}
	if math.Abs(m.At(0, 1)-math.Sqrt2/2) > 1e-6 || m.At(0, 1) != m.At(1, 0) {
		t.Errorf("a~b = %v", m.At(0, 1))
	}
	if m.At(0, 2) != 0 {
		t.Errorf("opposite vectors should clamp to 0, got %v", m.At(0, 2))
	}

	eng := &similarity.Engine{Primary: s, Fallback: similarity.Jaccard{}}
	eng.Matrix([]string{"a", "unknown"})
	if eng.Fallbacks() != 1 {
		t.Errorf("expected fallback for unknown text, got %d", eng.Fallbacks())
	}
}
