package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/suggest"
)

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{c: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward, running due callbacks in deadline order on the
// calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.at.After(end) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = end
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at.Equal(due[j].at) {
				return due[i].seq < due[j].seq
			}
			return due[i].at.Before(due[j].at)
		})
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

type persistCall struct {
	title   string
	content string
	at      time.Time
}

type fakePersister struct {
	clock *fakeClock

	mu      sync.Mutex
	calls   []persistCall
	failN   int
	hold    bool
	started chan string
	release chan struct{}
}

func newFakePersister(clock *fakeClock) *fakePersister {
	return &fakePersister{
		clock:   clock,
		started: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (p *fakePersister) PersistDocument(_ context.Context, _ string, in PersistInput) (*PersistResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, persistCall{title: in.Title, content: in.Content, at: p.clock.Now()})
	hold := p.hold
	fail := p.failN > 0
	if fail {
		p.failN--
	}
	p.mu.Unlock()
	if hold {
		p.started <- in.Content
		<-p.release
	}
	if fail {
		return nil, errors.New("storage down")
	}
	return &PersistResult{Title: in.Title, Content: in.Content, Metrics: in.Metrics, SavedAt: p.clock.Now()}, nil
}

func (p *fakePersister) Calls() []persistCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]persistCall, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *fakePersister) setHold(v bool) {
	p.mu.Lock()
	p.hold = v
	p.mu.Unlock()
}

type fakeSnapshotter struct {
	mu    sync.Mutex
	texts []string
}

func (s *fakeSnapshotter) MaybeSnapshot(_ context.Context, _ string, text string, _ readability.Metrics) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.texts {
		if t == text {
			return false, nil
		}
	}
	s.texts = append(s.texts, text)
	return true, nil
}

func (s *fakeSnapshotter) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type fakeFetcher struct {
	doc *Snapshot
	err error
}

func (f fakeFetcher) FetchDocument(context.Context, string) (*Snapshot, error) {
	return f.doc, f.err
}

type funcSuggester func(string) []suggest.Suggestion

func (f funcSuggester) Suggest(text string) []suggest.Suggestion {
	return f(text)
}
