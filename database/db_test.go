package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"signal-classifier/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []models.Classification{
		{ID: "a", CreatedAt: base, Provider: "Gemini", Status: models.StatusOK, Response: "narrowband", LatencyMS: 100, Attempts: 1},
		{ID: "b", CreatedAt: base.Add(time.Minute), Provider: "Gemini", Status: models.StatusFailed, ErrorKind: "quota", Attempts: 1},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute), Provider: "DeepSeek", Status: models.StatusOK, Response: "noise", LatencyMS: 300, Attempts: 2},
		{ID: "d", CreatedAt: base.Add(3 * time.Minute), Provider: "Gemini", Status: models.StatusFailed, ErrorKind: "transport", Attempts: 2},
		{ID: "e", CreatedAt: base.Add(4 * time.Minute), Provider: "Gemini", Status: models.StatusFailed, ErrorKind: "transport", Attempts: 2},
	}
	for i := range rows {
		require.NoError(t, s.Record(context.Background(), &rows[i]))
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)

	row := &models.Classification{
		ID:               "abc",
		PeakFrequencyMHz: 1420.0,
		SNRDB:            10,
		PulseWidthMS:     1,
		Provider:         "Stub",
		Status:           models.StatusOK,
		Response:         "Classification: narrowband (92%)",
	}
	require.NoError(t, s.Record(context.Background(), row))
	assert.False(t, row.CreatedAt.IsZero())

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Classification: narrowband (92%)", got.Response)
	assert.Equal(t, 1420.0, got.Metadata().PeakFrequencyMHz)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	all, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "e", all[0].ID)
	assert.Equal(t, "a", all[4].ID)

	failed, err := s.List(context.Background(), Filter{Status: models.StatusFailed, Limit: 2})
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "e", failed[0].ID)
	assert.Equal(t, "d", failed[1].ID)

	deepseek, err := s.List(context.Background(), Filter{Provider: "DeepSeek"})
	require.NoError(t, err)
	require.Len(t, deepseek, 1)
	assert.Equal(t, "c", deepseek[0].ID)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, stats.Total)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 3, stats.Failed)
	assert.InDelta(t, 200.0, stats.AvgLatencyMS, 0.001)
	assert.Equal(t, map[string]int64{"quota": 1, "transport": 2}, stats.ByErrorKind)
}

func TestStatsEmpty(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Total)
	assert.Zero(t, stats.AvgLatencyMS)
	assert.Empty(t, stats.ByErrorKind)
}
