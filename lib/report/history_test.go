package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistory(t *testing.T) {
	ctx := context.Background()
	h, err := OpenHistory(":memory:")
	require.NoError(t, err)
	defer h.Close()

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Record(ctx, Run{ID: "run-1", Name: "storefront-e2e", Started: first}, sample()))
	require.NoError(t, h.Record(ctx, Run{ID: "run-2", Name: "storefront-e2e", Started: first.Add(time.Hour)}, sample()[:1]))

	runs, err := h.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1, Duration: 3500 * time.Millisecond}, runs[1].Summary)
	require.True(t, runs[1].Started.Equal(first))

	entries, err := h.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "run-2", entries[0].RunID)

	entries, err = h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	require.Equal(t, "TC01", entries[1].ID)
	require.Equal(t, Failed, entries[2].Status)
	require.Equal(t, 3, entries[2].Attempts)
	require.Equal(t, "delete book: expected status 204, got 400", entries[2].Err)
	require.Equal(t, 2*time.Second, entries[2].Duration)
}

func TestHistoryDuplicateRun(t *testing.T) {
	ctx := context.Background()
	h, err := OpenHistory(":memory:")
	require.NoError(t, err)
	defer h.Close()

	run := Run{ID: "run-1", Started: time.Now()}
	require.NoError(t, h.Record(ctx, run, sample()))
	require.Error(t, h.Record(ctx, run, sample()))

	entries, err := h.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestHistoryFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	h, err := OpenHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Record(ctx, Run{ID: "run-1", Started: time.Now()}, sample()))
	require.NoError(t, h.Close())

	h, err = OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()
	runs, err := h.Runs(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
