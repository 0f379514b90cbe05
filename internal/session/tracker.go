package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xxxsen/inkwell/internal/metrics"
	"github.com/xxxsen/inkwell/internal/suggest"
)

// Item is a displayed suggestion. The id survives reconciliation so that a
// client can apply or dismiss it after further edits.
type Item struct {
	ID string `json:"id"`
	suggest.Suggestion
}

// SuggestionTracker owns the displayed suggestion list of one text. Edits
// reconcile the list at once; the engine output replaces it after the quiet
// period, unless the text changed while the engine was running.
type SuggestionTracker struct {
	clock    Clock
	delay    time.Duration
	engine   suggest.Suggester
	onUpdate func([]Item)

	mu     sync.Mutex
	text   string
	gen    uint64
	items  []Item
	timer  Timer
	closed bool
}

func NewSuggestionTracker(clock Clock, delay time.Duration, engine suggest.Suggester, onUpdate func([]Item)) *SuggestionTracker {
	return &SuggestionTracker{
		clock:    clock,
		delay:    delay,
		engine:   engine,
		onUpdate: onUpdate,
		items:    []Item{},
	}
}

// Update records new text and schedules a refresh.
func (t *SuggestionTracker) Update(text string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	changed := t.reconcileLocked(text)
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.AfterFunc(t.delay, func() { t.refresh(gen) })
	items := t.snapshotLocked()
	t.mu.Unlock()
	if changed {
		t.notify(items)
	}
}

// Refresh runs the engine on the current text right away.
func (t *SuggestionTracker) Refresh() []Item {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	gen := t.gen
	t.mu.Unlock()
	t.refresh(gen)
	return t.Items()
}

func (t *SuggestionTracker) refresh(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.closed {
		t.mu.Unlock()
		return
	}
	text := t.text
	t.mu.Unlock()

	start := t.clock.Now()
	found := t.engine.Suggest(text)
	categories := make([]string, 0, len(found))
	for _, s := range found {
		categories = append(categories, string(s.Category))
	}
	metrics.ObserveSuggestions(t.clock.Now().Sub(start), categories)

	t.mu.Lock()
	if gen != t.gen || t.closed {
		t.mu.Unlock()
		return
	}
	t.items = make([]Item, 0, len(found))
	for _, s := range found {
		t.items = append(t.items, Item{ID: uuid.NewString(), Suggestion: s})
	}
	items := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(items)
}

func (t *SuggestionTracker) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *SuggestionTracker) Get(id string) (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, it := range t.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func (t *SuggestionTracker) Dismiss(id string) bool {
	t.mu.Lock()
	idx := -1
	for i, it := range t.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.items = append(t.items[:idx:idx], t.items[idx+1:]...)
	items := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(items)
	return true
}

func (t *SuggestionTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// reconcileLocked moves the displayed list onto text. Items overlapping or
// touching the edited span are dropped, items after it are shifted.
func (t *SuggestionTracker) reconcileLocked(text string) bool {
	oldRunes := []rune(t.text)
	newRunes := []rune(text)
	t.text = text
	if len(t.items) == 0 {
		return false
	}
	prefix, oldEnd, newEnd := changedSpan(oldRunes, newRunes)
	if prefix == oldEnd && prefix == newEnd {
		return false
	}
	delta := newEnd - oldEnd
	kept := make([]Item, 0, len(t.items))
	for _, it := range t.items {
		switch {
		case it.End < prefix:
		case it.Start > oldEnd:
			it.Start += delta
			it.End += delta
		default:
			continue
		}
		if it.End > len(newRunes) || string(newRunes[it.Start:it.End]) != it.Original {
			continue
		}
		kept = append(kept, it)
	}
	changed := len(kept) != len(t.items) || delta != 0
	t.items = kept
	return changed
}

// changedSpan returns the common prefix length and the end of the differing
// region in a and in b.
func changedSpan(a, b []rune) (prefix, aEnd, bEnd int) {
	n := min(len(a), len(b))
	for prefix < n && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < n-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	return prefix, len(a) - suffix, len(b) - suffix
}

func (t *SuggestionTracker) snapshotLocked() []Item {
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

func (t *SuggestionTracker) notify(items []Item) {
	if t.onUpdate != nil {
		t.onUpdate(items)
	}
}
