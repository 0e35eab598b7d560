package textmatch

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoDocuments is returned when Vectorize is called with an empty corpus.
var ErrNoDocuments = errors.New("textmatch: no documents to vectorize")

// Matrix holds one sparse TF-IDF vector per input document, all over the
// same vocabulary. Rows are L2-normalized, so a dot product between two
// rows is their cosine similarity.
type Matrix struct {
	rows []map[string]float64
}

// Len returns the number of document vectors in the matrix.
func (m *Matrix) Len() int {
	return len(m.rows)
}

// Vectorize builds character n-gram TF-IDF vectors for docs. Terms are
// n-grams (n in [minN, maxN]) drawn from whitespace-separated words, each
// word padded with a single space on both sides so grams carry word
// boundaries. Matching is case-insensitive. IDF is computed over docs
// itself, so weights are relative to this corpus, not absolute.
//
// A document that produces no terms (empty or whitespace-only) gets a zero
// vector rather than an error; only an empty corpus fails.
func Vectorize(docs []string, minN, maxN int) (*Matrix, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("textmatch: invalid ngram range (%d, %d)", minN, maxN)
	}

	counts := make([]map[string]float64, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]float64)
		for _, word := range strings.Fields(strings.ToLower(doc)) {
			for _, gram := range wordGrams(word, minN, maxN) {
				tf[gram]++
			}
		}
		for gram := range tf {
			df[gram]++
		}
		counts[i] = tf
	}

	// Smoothed IDF: ln((1+N)/(1+df)) + 1, then L2-normalize each row.
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for gram, d := range df {
		idf[gram] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([]map[string]float64, len(docs))
	for i, tf := range counts {
		row := make(map[string]float64, len(tf))
		var sumSq float64
		for gram, c := range tf {
			w := c * idf[gram]
			row[gram] = w
			sumSq += w * w
		}
		if sumSq > 0 {
			norm := math.Sqrt(sumSq)
			for gram, w := range row {
				row[gram] = w / norm
			}
		}
		rows[i] = row
	}

	return &Matrix{rows: rows}, nil
}

// wordGrams emits every n-gram of the space-padded word for each length in
// [minN, maxN]. A word shorter than the gram length contributes its whole
// padded form exactly once.
func wordGrams(word string, minN, maxN int) []string {
	padded := []rune(" " + word + " ")
	wlen := len(padded)

	var grams []string
	for n := minN; n <= maxN; n++ {
		end := n
		if end > wlen {
			end = wlen
		}
		grams = append(grams, string(padded[0:end]))

		offset := 0
		for offset+n < wlen {
			offset++
			grams = append(grams, string(padded[offset:offset+n]))
		}
		if offset == 0 {
			break
		}
	}
	return grams
}
