package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 100

// VectorSpace is smoothed TF-IDF over unigrams and bigrams, compared by
// cosine. Bigrams are formed after stop-word removal.
type VectorSpace struct {
	MaxFeatures int
	StopWords   map[string]bool
}

// NewVectorSpace returns a vector-space strategy with English stop words.
func NewVectorSpace(maxFeatures int) *VectorSpace {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &VectorSpace{MaxFeatures: maxFeatures, StopWords: EnglishStopWords}
}

func (v *VectorSpace) Name() string { return "tfidf" }

// Applicable requires two non-empty texts and a non-empty vocabulary.
func (v *VectorSpace) Applicable(texts []string) bool {
	nonEmpty, terms := 0, 0
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		nonEmpty++
		terms += len(v.terms(t))
	}
	return nonEmpty >= 2 && terms > 0
}

// Matrix scores texts by cosine over L2-normalised TF-IDF vectors. Empty
// texts get zero rows; non-empty texts score 1 against themselves.
func (v *VectorSpace) Matrix(texts []string) Matrix {
	docs := make([]map[string]int, len(texts))
	df := make(map[string]int)
	tf := make(map[string]int)
	n := 0
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		n++
		counts := make(map[string]int)
		for _, term := range v.terms(t) {
			counts[term]++
			tf[term]++
		}
		for term := range counts {
			df[term]++
		}
		docs[i] = counts
	}

	vocab := v.vocabulary(tf)
	vecs := make([][]float64, len(texts))
	for i, counts := range docs {
		if counts == nil {
			continue
		}
		vec := make([]float64, len(vocab))
		var norm float64
		for k, term := range vocab {
			c := counts[term]
			if c == 0 {
				continue
			}
			idf := math.Log(float64(1+n)/float64(1+df[term])) + 1
			vec[k] = float64(c) * idf
			norm += vec[k] * vec[k]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range vec {
				vec[k] /= norm
			}
		}
		vecs[i] = vec
	}

	m := NewMatrix(len(texts))
	for i := range texts {
		if vecs[i] == nil {
			continue
		}
		m[i][i] = 1
		for j := i + 1; j < len(texts); j++ {
			if vecs[j] == nil {
				continue
			}
			var dot float64
			for k := range vecs[i] {
				dot += vecs[i][k] * vecs[j][k]
			}
			m[i][j], m[j][i] = dot, dot
		}
	}
	return m
}

// vocabulary keeps the MaxFeatures most frequent terms, ties broken
// lexicographically, returned in lexicographic order.
func (v *VectorSpace) vocabulary(tf map[string]int) []string {
	terms := make([]string, 0, len(tf))
	for t := range tf {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)
	return terms
}

// terms returns the unigrams and bigrams of t after stop-word removal.
func (v *VectorSpace) terms(t string) []string {
	var words []string
	for _, w := range Tokenize(t) {
		if !v.StopWords[w] {
			words = append(words, w)
		}
	}
	out := append([]string(nil), words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// Tokenize lowercases s and splits it into runs of letters, digits and
// underscores.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var out []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, b.String())
		b.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}
