package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/inkwell/internal/config"
	appErr "github.com/xxxsen/inkwell/internal/pkg/errors"
	"github.com/xxxsen/inkwell/internal/suggest"
)

func openTestSession(t *testing.T, content string) (*Session, *fakeClock, *fakePersister) {
	t.Helper()
	clock := newFakeClock()
	p := newFakePersister(clock)
	s, err := Open(context.Background(), "doc-1", Deps{
		Fetcher:     fakeFetcher{doc: &Snapshot{Title: "Draft", Content: content}},
		Persister:   p,
		Snapshotter: &fakeSnapshotter{},
		Suggester:   suggest.NewDefault(suggest.Options{}),
		Clock:       clock,
	}, DefaultOptions())
	require.NoError(t, err)
	return s, clock, p
}

func TestOpenLoadsDocumentAndSuggestions(t *testing.T) {
	s, _, p := openTestSession(t, "I teh best")
	require.Equal(t, "Draft", s.Title())
	require.Equal(t, "I teh best", s.Content())
	require.Equal(t, StateIdle, s.State())
	_, ok := findItem(s.Suggestions(), "teh")
	require.True(t, ok)
	require.Empty(t, p.Calls())
	require.Equal(t, 1, s.Stats().SpellingIssues)
}

func TestOpenFetchFailure(t *testing.T) {
	_, err := Open(context.Background(), "doc-1", Deps{
		Fetcher:   fakeFetcher{err: appErr.ErrNotFound},
		Persister: newFakePersister(newFakeClock()),
		Suggester: suggest.NewDefault(suggest.Options{}),
	}, DefaultOptions())
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestSessionEditSavesAfterDebounce(t *testing.T) {
	s, clock, p := openTestSession(t, "")
	s.Edit("Cat sat.")
	require.Equal(t, 2, s.Metrics().WordCount)
	clock.Advance(2 * time.Second)
	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "Cat sat.", calls[0].content)
	require.Equal(t, "Draft", calls[0].title)
}

func TestApplySuggestionSavesImmediately(t *testing.T) {
	s, _, p := openTestSession(t, "I teh best")
	it, ok := findItem(s.Suggestions(), "teh")
	require.True(t, ok)

	require.NoError(t, s.ApplySuggestion(context.Background(), it.ID))
	require.Equal(t, "I the best", s.Content())
	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "I the best", calls[0].content)
	_, ok = findItem(s.Suggestions(), "teh")
	require.False(t, ok)

	require.ErrorIs(t, s.ApplySuggestion(context.Background(), it.ID), ErrSuggestionNotFound)
}

func TestDismissSuggestion(t *testing.T) {
	s, _, _ := openTestSession(t, "I teh best")
	it, ok := findItem(s.Suggestions(), "teh")
	require.True(t, ok)
	require.True(t, s.DismissSuggestion(it.ID))
	require.Empty(t, s.Suggestions())
}

func TestTitleBlurDefaultsUntitled(t *testing.T) {
	s, _, p := openTestSession(t, "Body.")
	require.NoError(t, s.TitleBlur(context.Background(), "   "))
	require.Equal(t, UntitledDocument, s.Title())
	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, UntitledDocument, calls[0].title)

	require.NoError(t, s.TitleBlur(context.Background(), "  Essay  "))
	require.Equal(t, "Essay", p.Calls()[1].title)
}

func TestSessionCloseFlushes(t *testing.T) {
	s, _, p := openTestSession(t, "")
	s.Edit("unsaved")
	require.NoError(t, s.Close(context.Background()))
	require.Len(t, p.Calls(), 1)
	require.Equal(t, "unsaved", p.Calls()[0].content)
}

type errPersister struct {
	err   error
	calls int
}

func (e *errPersister) PersistDocument(context.Context, string, PersistInput) (*PersistResult, error) {
	e.calls++
	return nil, e.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	next := &errPersister{err: errors.New("db down")}
	p := WithBreaker("test-open", next, config.BreakerConfig{
		MaxRequests: 1, IntervalSeconds: 60, TimeoutSeconds: 60, FailureRatio: 0.6, MinRequests: 3,
	})
	for i := 0; i < 3; i++ {
		_, err := p.PersistDocument(context.Background(), "doc-1", PersistInput{})
		require.Error(t, err)
		require.False(t, errors.Is(err, appErr.ErrUnavailable))
	}
	_, err := p.PersistDocument(context.Background(), "doc-1", PersistInput{})
	require.ErrorIs(t, err, appErr.ErrUnavailable)
	require.Equal(t, 3, next.calls)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	next := &errPersister{err: appErr.ErrNotFound}
	p := WithBreaker("test-notfound", next, config.BreakerConfig{
		MaxRequests: 1, IntervalSeconds: 60, TimeoutSeconds: 60, FailureRatio: 0.5, MinRequests: 1,
	})
	for i := 0; i < 5; i++ {
		_, err := p.PersistDocument(context.Background(), "doc-1", PersistInput{})
		require.ErrorIs(t, err, appErr.ErrNotFound)
	}
	require.Equal(t, 5, next.calls)
}
