package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/suggest"
)

const UntitledDocument = "Untitled Document"

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSuggestionStale    = errors.New("suggestion no longer matches the text")
)

type Snapshot struct {
	Title   string
	Content string
	Metrics readability.Metrics
}

type Fetcher interface {
	FetchDocument(ctx context.Context, docID string) (*Snapshot, error)
}

type Deps struct {
	Fetcher     Fetcher
	Persister   Persister
	Snapshotter Snapshotter
	Suggester   suggest.Suggester
	Clock       Clock
	// OnEvent and OnSuggestions are called without internal locks held.
	OnEvent       func(Event)
	OnSuggestions func([]Item)
}

type Options struct {
	SaveDelay    time.Duration
	SuggestDelay time.Duration
}

func DefaultOptions() Options {
	return Options{SaveDelay: 2000 * time.Millisecond, SuggestDelay: 1000 * time.Millisecond}
}

// Session is one open document: its live text, the save scheduler and the
// displayed suggestions.
type Session struct {
	docID   string
	sched   *Scheduler
	tracker *SuggestionTracker

	mu      sync.Mutex
	title   string
	content string
}

func Open(ctx context.Context, docID string, deps Deps, opts Options) (*Session, error) {
	if deps.Fetcher == nil || deps.Persister == nil || deps.Suggester == nil {
		return nil, fmt.Errorf("session deps: fetcher, persister and suggester are required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = RealClock()
	}
	doc, err := deps.Fetcher.FetchDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	s := &Session{
		docID:   docID,
		title:   doc.Title,
		content: doc.Content,
	}
	schedOpts := []SchedulerOption{WithClock(clock), WithEventHandler(deps.OnEvent)}
	if deps.Snapshotter != nil {
		schedOpts = append(schedOpts, WithSnapshotter(deps.Snapshotter))
	}
	s.sched = NewScheduler(context.WithoutCancel(ctx), docID, doc.Content, opts.SaveDelay, deps.Persister, schedOpts...)
	s.tracker = NewSuggestionTracker(clock, opts.SuggestDelay, deps.Suggester, deps.OnSuggestions)
	s.tracker.Update(doc.Content)
	s.tracker.Refresh()
	return s, nil
}

func (s *Session) DocumentID() string {
	return s.docID
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Session) State() State {
	return s.sched.State()
}

// Metrics scores the live text, saved or not.
func (s *Session) Metrics() readability.Metrics {
	return readability.Score(s.Content())
}

func (s *Session) Suggestions() []Item {
	return s.tracker.Items()
}

func (s *Session) Stats() suggest.Stats {
	items := s.tracker.Items()
	list := make([]suggest.Suggestion, 0, len(items))
	for _, it := range items {
		list = append(list, it.Suggestion)
	}
	return suggest.ComputeStats(s.Content(), list)
}

func (s *Session) Edit(content string) {
	s.mu.Lock()
	s.content = content
	title := s.title
	s.mu.Unlock()
	s.tracker.Update(content)
	s.sched.Edit(content, title)
}

func (s *Session) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	content, title := s.content, s.title
	s.mu.Unlock()
	return s.sched.SaveNow(ctx, content, title)
}

// TitleBlur commits a title change. Blank titles become UntitledDocument.
func (s *Session) TitleBlur(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledDocument
	}
	s.mu.Lock()
	s.title = title
	content := s.content
	s.mu.Unlock()
	return s.sched.SaveNow(ctx, content, title)
}

// ApplySuggestion rewrites the text with the suggestion and saves at once.
func (s *Session) ApplySuggestion(ctx context.Context, id string) error {
	it, ok := s.tracker.Get(id)
	if !ok {
		return ErrSuggestionNotFound
	}
	s.mu.Lock()
	runes := []rune(s.content)
	if it.End > len(runes) || string(runes[it.Start:it.End]) != it.Original {
		s.mu.Unlock()
		return ErrSuggestionStale
	}
	next, err := suggest.Apply(s.content, it.Suggestion)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.content = next
	title := s.title
	s.mu.Unlock()
	s.tracker.Update(next)
	return s.sched.SaveNow(ctx, next, title)
}

func (s *Session) DismissSuggestion(id string) bool {
	return s.tracker.Dismiss(id)
}

// RefreshSuggestions runs the engine on the live text without waiting for
// the debounce.
func (s *Session) RefreshSuggestions() []Item {
	return s.tracker.Refresh()
}

// Close flushes unsaved edits. The session is unusable afterwards.
func (s *Session) Close(ctx context.Context) error {
	s.tracker.Close()
	return s.sched.Close(ctx)
}
