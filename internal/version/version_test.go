package version

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/inkwell/internal/fingerprint"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/readability"
)

type memStore struct {
	mu        sync.Mutex
	versions  map[string][]string
	existsErr error
	writeErr  error
	writes    int
}

func newMemStore() *memStore {
	return &memStore{versions: make(map[string][]string)}
}

func (m *memStore) VersionExists(_ context.Context, docID, fp string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, v := range m.versions[docID] {
		if v == fp {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) WriteVersion(_ context.Context, docID, _ string, _ readability.Metrics, fp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	for _, v := range m.versions[docID] {
		if v == fp {
			return appErr.ErrConflict
		}
	}
	m.versions[docID] = append(m.versions[docID], fp)
	return nil
}

func TestMaybeSnapshotDeduplicates(t *testing.T) {
	store := newMemStore()
	c := NewCoordinator(store)
	ctx := context.Background()
	text := "The cat sat on the mat."

	created, err := c.MaybeSnapshot(ctx, "doc-1", text, readability.Score(text))
	require.NoError(t, err)
	require.True(t, created)

	created, err = c.MaybeSnapshot(ctx, "doc-1", text, readability.Score(text))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, []string{fingerprint.Of(text)}, store.versions["doc-1"])
	require.Equal(t, 1, store.writes)

	created, err = c.MaybeSnapshot(ctx, "doc-2", text, readability.Score(text))
	require.NoError(t, err)
	require.True(t, created)
}

func TestMaybeSnapshotFailsOpen(t *testing.T) {
	store := newMemStore()
	store.existsErr = errors.New("timeout")
	c := NewCoordinator(store)

	created, err := c.MaybeSnapshot(context.Background(), "doc-1", "hello", readability.Metrics{})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, store.writes)

	// the unique constraint still holds when the check is blind
	created, err = c.MaybeSnapshot(context.Background(), "doc-1", "hello", readability.Metrics{})
	require.NoError(t, err)
	require.False(t, created)
	require.Len(t, store.versions["doc-1"], 1)
}

func TestMaybeSnapshotWriteFailure(t *testing.T) {
	store := newMemStore()
	store.writeErr = errors.New("disk full")
	var observed []bool
	c := NewCoordinator(store, WithObserver(func(_ string, created bool, err error) {
		require.Error(t, err)
		observed = append(observed, created)
	}))

	created, err := c.MaybeSnapshot(context.Background(), "doc-1", "hello", readability.Metrics{})
	require.Error(t, err)
	require.False(t, created)
	require.Equal(t, []bool{false}, observed)
}
