package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const saveDelay = 2000 * time.Millisecond

func newTestScheduler(persisted string) (*Scheduler, *fakeClock, *fakePersister, *fakeSnapshotter, *[]Event) {
	clock := newFakeClock()
	p := newFakePersister(clock)
	snap := &fakeSnapshotter{}
	var mu sync.Mutex
	events := &[]Event{}
	s := NewScheduler(context.Background(), "doc-1", persisted, saveDelay, p,
		WithClock(clock),
		WithSnapshotter(snap),
		WithEventHandler(func(e Event) {
			mu.Lock()
			*events = append(*events, e)
			mu.Unlock()
		}))
	return s, clock, p, snap, events
}

func TestDebounceCoalescesEdits(t *testing.T) {
	s, clock, p, _, _ := newTestScheduler("")
	start := clock.Now()

	s.Edit("a", "t")
	require.Equal(t, StatePending, s.State())
	clock.Advance(500 * time.Millisecond)
	s.Edit("ab", "t")
	clock.Advance(100 * time.Millisecond)
	s.Edit("abc", "t")

	clock.Advance(1999 * time.Millisecond)
	require.Empty(t, p.Calls())

	clock.Advance(time.Millisecond)
	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "abc", calls[0].content)
	require.Equal(t, 2600*time.Millisecond, calls[0].at.Sub(start))
	require.Equal(t, StateIdle, s.State())

	clock.Advance(10 * time.Second)
	require.Len(t, p.Calls(), 1)
}

func TestSnapshotCapturesBurstBase(t *testing.T) {
	s, clock, p, snap, events := newTestScheduler("v0")

	s.Edit("v1", "t")
	clock.Advance(saveDelay)
	s.Edit("v2", "t")
	clock.Advance(saveDelay)

	require.Len(t, p.Calls(), 2)
	require.Equal(t, []string{"v0", "v1"}, snap.Texts())
	require.Equal(t, "v2", s.Persisted())

	var created int
	for _, e := range *events {
		if e.Kind == EventVersionCreated {
			created++
		}
	}
	require.Equal(t, 2, created)
}

func TestSnapshotSkippedForBlankBase(t *testing.T) {
	s, clock, p, snap, _ := newTestScheduler("  ")
	s.Edit("first words", "t")
	clock.Advance(saveDelay)
	require.Len(t, p.Calls(), 1)
	require.Empty(t, snap.Texts())
}

func TestSaveFailureIsNotRetried(t *testing.T) {
	s, clock, p, snap, events := newTestScheduler("v0")
	p.failN = 1

	s.Edit("v1", "t")
	clock.Advance(saveDelay)
	require.Len(t, p.Calls(), 1)
	require.Equal(t, StateIdle, s.State())
	require.Equal(t, "v0", s.Persisted())
	require.Empty(t, snap.Texts())

	var failed bool
	for _, e := range *events {
		if e.Kind == EventSaveFailed {
			failed = true
			require.Error(t, e.Err)
		}
	}
	require.True(t, failed)

	clock.Advance(time.Minute)
	require.Len(t, p.Calls(), 1)

	s.Edit("v1!", "t")
	clock.Advance(saveDelay)
	require.Len(t, p.Calls(), 2)
	require.Equal(t, "v1!", s.Persisted())
	require.Equal(t, []string{"v0"}, snap.Texts())
}

func TestSaveNowBypassesDebounce(t *testing.T) {
	s, clock, p, _, _ := newTestScheduler("")
	s.Edit("a", "t")
	require.NoError(t, s.SaveNow(context.Background(), "ab", "title"))

	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "ab", calls[0].content)
	require.Equal(t, "title", calls[0].title)
	require.Equal(t, StateIdle, s.State())

	clock.Advance(time.Minute)
	require.Len(t, p.Calls(), 1)
}

func TestSaveNowReportsFailure(t *testing.T) {
	s, _, p, _, _ := newTestScheduler("")
	p.failN = 1
	require.Error(t, s.SaveNow(context.Background(), "ab", "t"))
	require.Equal(t, StateIdle, s.State())
}

func TestEditDuringSaveRestartsDebounce(t *testing.T) {
	s, clock, p, _, _ := newTestScheduler("")
	p.setHold(true)

	s.Edit("a", "t")
	done := make(chan struct{})
	go func() {
		clock.Advance(saveDelay)
		close(done)
	}()
	require.Equal(t, "a", <-p.started)
	require.Equal(t, StateSaving, s.State())

	s.Edit("ab", "t")
	p.setHold(false)
	p.release <- struct{}{}
	<-done

	require.Equal(t, StatePending, s.State())
	require.Len(t, p.Calls(), 1)

	clock.Advance(saveDelay)
	calls := p.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "ab", calls[1].content)
	require.Equal(t, StateIdle, s.State())
}

func TestSaveNowDuringSaveIsQueued(t *testing.T) {
	s, clock, p, _, _ := newTestScheduler("")
	p.setHold(true)

	s.Edit("a", "t")
	done := make(chan struct{})
	go func() {
		clock.Advance(saveDelay)
		close(done)
	}()
	require.Equal(t, "a", <-p.started)

	s.Edit("ab", "t")
	result := make(chan error, 1)
	go func() {
		result <- s.SaveNow(context.Background(), "abc", "t")
	}()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.waiters) == 1
	}, time.Second, time.Millisecond)

	p.setHold(false)
	p.release <- struct{}{}
	<-done
	require.NoError(t, <-result)

	calls := p.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "abc", calls[1].content)
	require.Equal(t, calls[0].at, calls[1].at)
	require.Equal(t, StateIdle, s.State())
}

func TestCloseFlushesPendingEdit(t *testing.T) {
	s, clock, p, _, _ := newTestScheduler("")
	s.Edit("draft", "t")
	require.NoError(t, s.Close(context.Background()))

	calls := p.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "draft", calls[0].content)

	s.Edit("ignored", "t")
	clock.Advance(time.Minute)
	require.Len(t, p.Calls(), 1)
	require.ErrorIs(t, s.SaveNow(context.Background(), "x", "t"), ErrClosed)
	require.NoError(t, s.Close(context.Background()))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "pending", StatePending.String())
	require.Equal(t, "saving", StateSaving.String())
}
