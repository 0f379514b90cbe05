package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	calls int
	n     int64
	err   error
}

func (f *fakePruner) Prune(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

type fakeCleaner struct {
	before int64
}

func (f *fakeCleaner) CleanupStale(_ context.Context, before int64) (int64, error) {
	f.before = before
	return 3, nil
}

func TestVersionPruneJob(t *testing.T) {
	p := &fakePruner{n: 4}
	j := NewVersionPruneJob(p)
	require.Equal(t, "version_prune", j.Name())
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, 1, p.calls)

	p.err = errors.New("db down")
	require.Error(t, j.Run(context.Background()))
}

func TestSuggestionCleanupJobCutoff(t *testing.T) {
	c := &fakeCleaner{}
	now := time.Unix(1_000_000_000, 0)
	j := NewSuggestionCleanupJob(c, 7)
	j.now = func() time.Time { return now }
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, now.AddDate(0, 0, -7).Unix(), c.before)
}

func TestSuggestionCleanupJobDefaultAge(t *testing.T) {
	c := &fakeCleaner{}
	now := time.Unix(1_000_000_000, 0)
	j := NewSuggestionCleanupJob(c, 0)
	j.now = func() time.Time { return now }
	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, now.AddDate(0, 0, -30).Unix(), c.before)
}
