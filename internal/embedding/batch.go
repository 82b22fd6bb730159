package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/talkgraph/internal/similarity"
)

// EmbedAll embeds every distinct non-empty text. Texts are sent in chunks
// of e.BatchSize() with at most concurrency chunks in flight; the first
// failure cancels the rest.
func EmbedAll(ctx context.Context, e Embedder, texts []string, concurrency int) (map[string]Vector, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	size := e.BatchSize()
	if size <= 0 {
		size = DefaultBatchSize
	}
	seen := make(map[string]bool)
	var unique []string
	for _, t := range texts {
		if strings.TrimSpace(t) == "" || seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}

	var mu sync.Mutex
	out := make(map[string]Vector, len(unique))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for from := 0; from < len(unique); from += size {
		chunk := unique[from:min(from+size, len(unique))]
		g.Go(func() error {
			vecs, err := e.EmbedBatch(ctx, chunk)
			if err != nil {
				return fmt.Errorf("embed turns %d-%d (%q): %w", from, from+len(chunk)-1, excerpt(chunk[0], 40), err)
			}
			if err := checkBatch("embedder", chunk, vecs); err != nil {
				return err
			}
			mu.Lock()
			for i, t := range chunk {
				out[t] = vecs[i]
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Strategy scores texts by cosine over precomputed vectors. It is only
// applicable when every non-empty text has a vector.
type Strategy struct {
	Vectors map[string]Vector
}

var _ similarity.Strategy = (*Strategy)(nil)

func (s *Strategy) Name() string { return "embedding" }

func (s *Strategy) Applicable(texts []string) bool {
	nonEmpty := 0
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if len(s.Vectors[t]) == 0 {
			return false
		}
		nonEmpty++
	}
	return nonEmpty >= 2
}

// Matrix scores texts by cosine, clamped to [0, 1]. Texts without a
// vector get zero rows.
func (s *Strategy) Matrix(texts []string) similarity.Matrix {
	units := make([][]float64, len(texts))
	for i, t := range texts {
		units[i] = unit(s.Vectors[t])
	}
	m := similarity.NewMatrix(len(texts))
	for i := range texts {
		if units[i] == nil {
			continue
		}
		m[i][i] = 1
		for j := i + 1; j < len(texts); j++ {
			if units[j] == nil {
				continue
			}
			v := min(max(dot(units[i], units[j]), 0), 1)
			m[i][j], m[j][i] = v, v
		}
	}
	return m
}
