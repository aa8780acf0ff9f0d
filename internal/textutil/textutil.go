// Package textutil scores headline similarity so syndicated copies of the
// same story can be collapsed into a single news item.
//
// A Fingerprint is a term frequency vector over lowercase alphanumeric
// tokens. Tokens shorter than 3 characters carry no signal for headlines and
// are dropped.
package textutil

import (
	"math"
	"strings"
)

// Fingerprint is a term frequency vector. The squared Euclidean norm is kept
// as an integer so identical texts score exactly 1.0.
type Fingerprint struct {
	terms map[string]int
	sq    int
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Tokenize lowercases text, splits it on runs of non-alphanumeric runes, and
// drops tokens shorter than 3 characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isTokenRune(r)
	})
	terms := fields[:0]
	for _, token := range fields {
		if len(token) >= 3 {
			terms = append(terms, token)
		}
	}
	return terms
}

// NewFingerprint builds the term frequency vector for text. It returns nil
// when tokenization yields nothing; a nil Fingerprint is dissimilar to
// everything.
func NewFingerprint(text string) *Fingerprint {
	terms := make(map[string]int)
	for _, token := range Tokenize(text) {
		terms[token]++
	}
	if len(terms) == 0 {
		return nil
	}
	sq := 0
	for _, n := range terms {
		sq += n * n
	}
	return &Fingerprint{terms: terms, sq: sq}
}

// Similarity returns the cosine similarity between two fingerprints in
// [0, 1]. Either side being nil scores 0.
func (f *Fingerprint) Similarity(other *Fingerprint) float64 {
	if f == nil || other == nil {
		return 0
	}
	if len(other.terms) < len(f.terms) {
		f, other = other, f
	}
	dot := 0
	for token, n := range f.terms {
		dot += n * other.terms[token]
	}
	if dot == 0 {
		return 0
	}
	return float64(dot) / math.Sqrt(float64(f.sq)*float64(other.sq))
}

// Near reports whether two texts are near-duplicates at the given similarity
// threshold.
func Near(a, b string, threshold float64) bool {
	return NewFingerprint(a).Similarity(NewFingerprint(b)) >= threshold
}
