package selection

import (
	"math"
	"strings"
	"unicode"
)

// DuplicateThreshold is the cosine-similarity score above which a
// selected headline is flagged as a likely repeat of one already shown.
const DuplicateThreshold = 0.7

// Tokenize lowercases s and splits it into alphanumeric word tokens.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Matcher scores headline similarity against a fixed corpus using
// TF-IDF weighted cosine similarity. Built once per run from the
// dedup window; catches reworded repeats that exact matching misses.
type Matcher struct {
	corpus  []string
	vectors []map[string]float64
	idf     map[string]float64
}

// NewMatcher builds a Matcher over the given headlines.
func NewMatcher(corpus []string) *Matcher {
	m := &Matcher{corpus: corpus, idf: make(map[string]float64)}

	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, headline := range corpus {
		docs[i] = Tokenize(headline)
		seen := make(map[string]struct{})
		for _, tok := range docs[i] {
			if _, dup := seen[tok]; !dup {
				df[tok]++
				seen[tok] = struct{}{}
			}
		}
	}

	n := float64(len(corpus))
	for tok, count := range df {
		m.idf[tok] = math.Log((n+1)/(float64(count)+1)) + 1
	}

	m.vectors = make([]map[string]float64, len(docs))
	for i, tokens := range docs {
		m.vectors[i] = m.vectorize(tokens)
	}
	return m
}

// FindMostSimilar returns the corpus headline most similar to query and
// its score in [0, 1]. An empty corpus or an empty query scores zero.
func (m *Matcher) FindMostSimilar(query string) (string, float64) {
	if len(m.corpus) == 0 {
		return "", 0
	}
	qv := m.vectorize(Tokenize(query))
	if len(qv) == 0 {
		return "", 0
	}

	best := ""
	bestScore := 0.0
	for i, dv := range m.vectors {
		if score := cosine(qv, dv); score > bestScore {
			best = m.corpus[i]
			bestScore = score
		}
	}
	return best, bestScore
}

// vectorize builds a normalized TF-IDF vector. Terms outside the corpus
// vocabulary are dropped, matching how a fitted vectorizer transforms
// unseen input.
func (m *Matcher) vectorize(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}

	tf := make(map[string]float64)
	for _, tok := range tokens {
		tf[tok]++
	}

	vec := make(map[string]float64, len(tf))
	var norm float64
	for tok, count := range tf {
		idf, ok := m.idf[tok]
		if !ok {
			continue
		}
		w := (count / float64(len(tokens))) * idf
		vec[tok] = w
		norm += w * w
	}
	if norm == 0 {
		return nil
	}

	norm = math.Sqrt(norm)
	for tok := range vec {
		vec[tok] /= norm
	}
	return vec
}

// cosine computes the dot product of two unit vectors.
func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for tok, w := range a {
		dot += w * b[tok]
	}
	return dot
}
