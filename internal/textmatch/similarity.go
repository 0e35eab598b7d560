package textmatch

// Similarities computes the cosine similarity between the query vector
// (row 0) and every remaining row, in row order. Rows are unit length or
// zero, so the sparse dot product is the cosine and lands in [0, 1].
func Similarities(m *Matrix) []float64 {
	if m == nil || len(m.rows) < 2 {
		return nil
	}

	query := m.rows[0]
	scores := make([]float64, len(m.rows)-1)
	for i, row := range m.rows[1:] {
		scores[i] = dot(query, row)
	}
	return scores
}

// Similarity is the pairwise form: cosine between rows i and j.
func Similarity(m *Matrix, i, j int) float64 {
	if m == nil || i < 0 || j < 0 || i >= len(m.rows) || j >= len(m.rows) {
		return 0
	}
	return dot(m.rows[i], m.rows[j])
}

func dot(a, b map[string]float64) float64 {
	// Iterate the smaller map; vocabulary rows can be wide.
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for gram, wa := range a {
		if wb, ok := b[gram]; ok {
			sum += wa * wb
		}
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
