package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "database.json"))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	s := NewFileStore(path)
	ctx := context.Background()

	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.Local)
	rec, err := NewJobRecord("Data Analyst", "Acme Corp", "Boston, MA", "2 days ago",
		"https://example.com/jobs/1", "LinkedIn", now)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, []JobRecord{rec}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, rec, loaded[0])

	parsed, err := loaded[0].ScrapedTime()
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestFileStoreCorruptFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
}

func TestNewJobRecordValidation(t *testing.T) {
	now := time.Now()

	_, err := NewJobRecord("", "Acme", "Boston", "", "https://example.com", "LinkedIn", now)
	require.Error(t, err)

	_, err = NewJobRecord("Data Analyst", "Acme", "Boston", "", "", "LinkedIn", now)
	require.Error(t, err)

	rec, err := NewJobRecord("Data Analyst", "", "", "", "https://example.com", "LinkedIn", now)
	require.NoError(t, err)
	assert.Equal(t, UnknownCompany, rec.Company)
	assert.Equal(t, UnknownLocation, rec.Location)
	assert.False(t, rec.EmailSent)
}

func TestScrapedTimeCorrupt(t *testing.T) {
	rec := JobRecord{Title: "Data Analyst", Company: "Acme", ScrapedAt: "yesterday-ish"}

	_, err := rec.ScrapedTime()
	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "Data Analyst", corrupt.Title)
}
