// Package session keeps an open document in sync with storage.
//
// A Scheduler debounces edits into persistence calls and snapshots the
// content a burst of edits started from. A SuggestionTracker refreshes
// suggestions on its own shorter debounce. Session ties both to one document.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/inkwell/internal/metrics"
	"github.com/xxxsen/inkwell/internal/readability"
)

var ErrClosed = errors.New("session closed")

type State int

const (
	StateIdle State = iota
	StatePending
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type PersistInput struct {
	Title   string
	Content string
	Metrics readability.Metrics
}

type PersistResult struct {
	Title   string
	Content string
	Metrics readability.Metrics
	SavedAt time.Time
}

type Persister interface {
	PersistDocument(ctx context.Context, docID string, in PersistInput) (*PersistResult, error)
}

type Snapshotter interface {
	MaybeSnapshot(ctx context.Context, docID, text string, metrics readability.Metrics) (bool, error)
}

type EventKind int

const (
	EventStateChanged EventKind = iota
	EventSaved
	EventSaveFailed
	EventVersionCreated
)

type Event struct {
	Kind    EventKind
	State   State
	Result  *PersistResult
	Err     error
	Trigger string
}

type payload struct {
	title   string
	content string
}

type Scheduler struct {
	ctx         context.Context
	docID       string
	clock       Clock
	delay       time.Duration
	persister   Persister
	snapshotter Snapshotter
	onEvent     func(Event)

	mu        sync.Mutex
	state     State
	timer     Timer
	timerGen  uint64
	pending   payload
	dirty     bool
	immediate bool
	waiters   []chan error
	persisted string
	burstBase string
	closed    bool
}

type SchedulerOption func(*Scheduler)

func WithSnapshotter(s Snapshotter) SchedulerOption {
	return func(sc *Scheduler) {
		sc.snapshotter = s
	}
}

func WithEventHandler(fn func(Event)) SchedulerOption {
	return func(sc *Scheduler) {
		sc.onEvent = fn
	}
}

func WithClock(c Clock) SchedulerOption {
	return func(sc *Scheduler) {
		sc.clock = c
	}
}

// NewScheduler creates a scheduler for docID whose stored content is
// persisted. ctx is used for saves fired by the debounce timer.
func NewScheduler(ctx context.Context, docID, persisted string, delay time.Duration, p Persister, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		ctx:       ctx,
		docID:     docID,
		clock:     RealClock(),
		delay:     delay,
		persister: p,
		persisted: persisted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Persisted returns the content of the last successful save.
func (s *Scheduler) Persisted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Edit records the latest content and title. Only the most recent edit inside
// the quiet window is sent.
func (s *Scheduler) Edit(content, title string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = payload{title: title, content: content}
	var events []Event
	switch s.state {
	case StateIdle:
		s.burstBase = s.persisted
		s.state = StatePending
		s.armLocked()
		events = append(events, Event{Kind: EventStateChanged, State: StatePending})
	case StatePending:
		s.armLocked()
	case StateSaving:
		s.dirty = true
	}
	s.mu.Unlock()
	s.emit(events...)
}

// SaveNow skips the debounce. When a save is already in flight the request is
// merged into the pending payload and sent right after it. It returns the
// result of the save carrying this content.
func (s *Scheduler) SaveNow(ctx context.Context, content, title string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending = payload{title: title, content: content}
	switch s.state {
	case StateIdle, StatePending:
		if s.state == StateIdle {
			s.burstBase = s.persisted
		}
		s.stopTimerLocked()
		s.state = StateSaving
		p := s.pending
		s.mu.Unlock()
		s.emit(Event{Kind: EventStateChanged, State: StateSaving})
		return s.run(ctx, p, "manual", nil)
	default:
		ch := s.queueLocked()
		s.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the debounce timer and flushes any unsaved edit.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stopTimerLocked()
	switch s.state {
	case StatePending:
		s.state = StateSaving
		p := s.pending
		s.mu.Unlock()
		return s.run(ctx, p, "close", nil)
	case StateSaving:
		if !s.dirty {
			s.mu.Unlock()
			return nil
		}
		ch := s.queueLocked()
		s.mu.Unlock()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) queueLocked() chan error {
	ch := make(chan error, 1)
	s.dirty = true
	s.immediate = true
	s.waiters = append(s.waiters, ch)
	return ch
}

func (s *Scheduler) armLocked() {
	s.stopTimerLocked()
	s.timerGen++
	gen := s.timerGen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.state != StatePending {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state = StateSaving
	p := s.pending
	s.mu.Unlock()
	s.emit(Event{Kind: EventStateChanged, State: StateSaving})
	_ = s.run(s.ctx, p, "debounce", nil)
}

// run performs the save of p and then every save queued while it was in
// flight. It returns the error of the first save.
func (s *Scheduler) run(ctx context.Context, p payload, trigger string, waiters []chan error) error {
	var first error
	isFirst := true
	for {
		err := s.saveOnce(ctx, p, trigger)
		for _, ch := range waiters {
			ch <- err
		}
		if isFirst {
			first = err
			isFirst = false
		}

		s.mu.Lock()
		var next *payload
		var events []Event
		switch {
		case s.dirty && s.immediate:
			s.dirty, s.immediate = false, false
			waiters, s.waiters = s.waiters, nil
			s.burstBase = s.persisted
			cp := s.pending
			next = &cp
			trigger = "queued"
		case s.dirty:
			s.dirty = false
			s.burstBase = s.persisted
			s.state = StatePending
			s.armLocked()
			events = append(events, Event{Kind: EventStateChanged, State: StatePending})
		default:
			s.state = StateIdle
			events = append(events, Event{Kind: EventStateChanged, State: StateIdle})
		}
		s.mu.Unlock()
		s.emit(events...)
		if next == nil {
			return first
		}
		p = *next
	}
}

func (s *Scheduler) saveOnce(ctx context.Context, p payload, trigger string) error {
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", s.docID), zap.String("trigger", trigger))
	start := s.clock.Now()
	res, err := s.persister.PersistDocument(ctx, s.docID, PersistInput{
		Title:   p.title,
		Content: p.content,
		Metrics: readability.Score(p.content),
	})
	metrics.ObserveSave(trigger, s.clock.Now().Sub(start), err)
	if err != nil {
		logger.Error("save document failed", zap.Error(err))
		s.emit(Event{Kind: EventSaveFailed, State: StateSaving, Err: err, Trigger: trigger})
		return err
	}
	if res == nil {
		res = &PersistResult{Title: p.title, Content: p.content, SavedAt: s.clock.Now()}
	}

	s.mu.Lock()
	base := s.burstBase
	s.persisted = res.Content
	s.mu.Unlock()

	if s.snapshotter != nil && strings.TrimSpace(base) != "" {
		created, verr := s.snapshotter.MaybeSnapshot(ctx, s.docID, base, readability.Score(base))
		if verr != nil {
			logger.Error("snapshot before save failed", zap.Error(verr))
		} else if created {
			s.emit(Event{Kind: EventVersionCreated, State: StateSaving, Trigger: trigger})
		}
	}
	logger.Debug("document saved", zap.Int("len", len(p.content)))
	s.emit(Event{Kind: EventSaved, State: StateSaving, Result: res, Trigger: trigger})
	return nil
}

func (s *Scheduler) emit(events ...Event) {
	if s.onEvent == nil {
		return
	}
	for _, e := range events {
		s.onEvent(e)
	}
}
