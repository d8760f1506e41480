package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// Schema init is idempotent: reopening the same file must work.
	require.NoError(t, s.Close())
	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	run, err := s.BeginRun("correlation")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	headline := 0.4321
	require.NoError(t, s.CompleteRun(run.ID, &headline, 50, ""))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "correlation", got.Kind)
	assert.Equal(t, RunStatusCompleted, got.Status)
	require.True(t, got.Headline.Valid)
	assert.InDelta(t, 0.4321, got.Headline.Float64, 1e-9)
	assert.Equal(t, 50, got.RowCount)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.CompletedAt.Before(got.StartedAt))
	assert.Empty(t, got.Error)
}

func TestFailedRun(t *testing.T) {
	s := newTestStore(t)

	run, err := s.BeginRun("predictions")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(run.ID, nil, 0, "no customers to fit"))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.False(t, got.Headline.Valid)
	assert.Equal(t, "no customers to fit", got.Error)
}

func TestCompleteUnknownRun(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.CompleteRun("no-such-id", nil, 0, ""))
}

func TestGetUnknownRun(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun("no-such-id")
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)

	for _, kind := range []string{"correlation", "simulation", "promotions"} {
		run, err := s.BeginRun(kind)
		require.NoError(t, err)
		require.NoError(t, s.CompleteRun(run.ID, nil, 1, ""))
	}

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	runs, err = s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
