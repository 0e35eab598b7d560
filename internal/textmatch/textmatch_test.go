package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorizeEmptyCorpus(t *testing.T) {
	_, err := Vectorize(nil, 2, 4)
	require.ErrorIs(t, err, ErrNoDocuments)

	_, err = Vectorize([]string{}, 2, 4)
	require.ErrorIs(t, err, ErrNoDocuments)
}

func TestVectorizeInvalidRange(t *testing.T) {
	_, err := Vectorize([]string{"acme"}, 4, 2)
	require.Error(t, err)

	_, err = Vectorize([]string{"acme"}, 0, 2)
	require.Error(t, err)
}

func TestVectorizeSingleDocument(t *testing.T) {
	m, err := Vectorize([]string{"Acme Corporation"}, 2, 4)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
}

func TestVectorizeMaskedName(t *testing.T) {
	// Masked company names are all symbols; they must still vectorize.
	m, err := Vectorize([]string{"*********", "Acme Corp"}, 2, 4)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	scores := Similarities(m)
	require.Len(t, scores, 1)
	assert.GreaterOrEqual(t, scores[0], 0.0)
	assert.LessOrEqual(t, scores[0], 1.0)
}

func TestVectorizeBlankDocumentIsZeroVector(t *testing.T) {
	m, err := Vectorize([]string{"   ", "Acme Corp"}, 2, 4)
	require.NoError(t, err)

	scores := Similarities(m)
	require.Len(t, scores, 1)
	assert.Zero(t, scores[0])
}

func TestSimilarityIdentical(t *testing.T) {
	m, err := Vectorize([]string{"Globex Inc", "Globex Inc"}, 2, 4)
	require.NoError(t, err)

	scores := Similarities(m)
	require.Len(t, scores, 1)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
}

func TestSimilaritySymmetric(t *testing.T) {
	m, err := Vectorize([]string{"Acme Corporation", "Acme Corp"}, 2, 4)
	require.NoError(t, err)

	assert.InDelta(t, Similarity(m, 0, 1), Similarity(m, 1, 0), 1e-12)
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	lower, err := Vectorize([]string{"acme corporation", "acme corp"}, 2, 4)
	require.NoError(t, err)
	upper, err := Vectorize([]string{"ACME CORPORATION", "ACME CORP"}, 2, 4)
	require.NoError(t, err)

	assert.InDelta(t, Similarities(lower)[0], Similarities(upper)[0], 1e-12)
}

func TestSimilarityRanksCloseNameFirst(t *testing.T) {
	m, err := Vectorize([]string{"Acme Corporation", "Acme Corp", "Globex Inc"}, 2, 4)
	require.NoError(t, err)

	scores := Similarities(m)
	require.Len(t, scores, 2)
	assert.GreaterOrEqual(t, scores[0], 0.5, "near-identical name should clear the match threshold")
	assert.Greater(t, scores[0], scores[1])
}

func TestWordGramsShortWord(t *testing.T) {
	// A one-letter word padded to " a " is shorter than every gram length
	// above 3; it must be counted once, not once per length.
	grams := wordGrams("a", 2, 4)
	assert.Equal(t, []string{" a", "a ", " a "}, grams)
}
