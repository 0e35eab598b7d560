package httpx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	got, err := normalizeURL("www.example.com/jobs")
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/jobs", got)

	got, err = normalizeURL("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", got)

	_, err = normalizeURL("")
	require.Error(t, err)
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &FetchError{Status: 502, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "502")

	bare := &FetchError{Status: 429}
	assert.Contains(t, bare.Error(), "429")
}
