// Package similarity computes pairwise similarity matrices over turn texts.
//
// An [Engine] holds a primary [Strategy] and a fallback. Which one runs is
// decided up front by [Strategy.Applicable], so the engine never fails and
// its choice depends only on the input texts.
package similarity

import (
	"strings"
	"sync/atomic"
)

// Matrix is a square, symmetric similarity matrix with values in [0, 1].
type Matrix [][]float64

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Len returns the matrix dimension.
func (m Matrix) Len() int { return len(m) }

// At returns M[i][j].
func (m Matrix) At(i, j int) float64 { return m[i][j] }

// Strategy scores every pair of texts.
type Strategy interface {
	Name() string
	// Applicable reports whether Matrix produces meaningful output for texts.
	Applicable(texts []string) bool
	Matrix(texts []string) Matrix
}

// Engine selects between a primary and a fallback strategy. It is safe for
// concurrent use.
type Engine struct {
	Primary  Strategy
	Fallback Strategy

	fallbacks atomic.Int64
}

// NewEngine returns an engine with the vector-space primary and Jaccard
// fallback.
func NewEngine(maxFeatures int) *Engine {
	return &Engine{
		Primary:  NewVectorSpace(maxFeatures),
		Fallback: Jaccard{},
	}
}

// Matrix scores texts with the primary strategy when it is applicable, and
// with the fallback otherwise. Fewer than two texts short-circuit.
func (e *Engine) Matrix(texts []string) Matrix {
	switch len(texts) {
	case 0:
		return Matrix{}
	case 1:
		return Matrix{{1}}
	}

	var m Matrix
	if e.Primary != nil && e.Primary.Applicable(texts) {
		m = e.Primary.Matrix(texts)
	} else {
		e.fallbacks.Add(1)
		m = e.Fallback.Matrix(texts)
	}
	clamp(m)
	return m
}

// Pair returns the similarity of a and b scored as a two-text corpus.
func (e *Engine) Pair(a, b string) float64 {
	return e.Matrix([]string{a, b})[0][1]
}

// Fallbacks returns how many times the fallback strategy has run.
func (e *Engine) Fallbacks() int64 { return e.fallbacks.Load() }

func clamp(m Matrix) {
	for i := range m {
		for j := range m[i] {
			switch v := m[i][j]; {
			case v < 0:
				m[i][j] = 0
			case v > 1:
				m[i][j] = 1
			}
		}
	}
}

// Jaccard scores lowercase whitespace-separated word sets by overlap. Two
// empty texts score 0 except on the diagonal.
type Jaccard struct{}

func (Jaccard) Name() string { return "jaccard" }

func (Jaccard) Applicable([]string) bool { return true }

func (Jaccard) Matrix(texts []string) Matrix {
	sets := make([]map[string]struct{}, len(texts))
	for i, t := range texts {
		set := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(t)) {
			set[w] = struct{}{}
		}
		sets[i] = set
	}

	m := NewMatrix(len(texts))
	for i := range texts {
		for j := i; j < len(texts); j++ {
			var v float64
			switch {
			case len(sets[i]) > 0 && len(sets[j]) > 0:
				v = jaccard(sets[i], sets[j])
			case i == j:
				v = 1
			}
			m[i][j], m[j][i] = v, v
		}
	}
	return m
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
