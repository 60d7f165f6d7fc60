package game

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/qninhdt/generals-draft/server/internal/cards"
	"github.com/qninhdt/generals-draft/server/internal/rules"
)

var ErrUnknownCard = errors.New("unknown card")

// Status summarizes the roster for display, e.g. "selected 3/5: a, b, c"
type Status struct {
	Count    int      `json:"count"`
	Capacity int      `json:"capacity"`
	Names    []string `json:"names"`
}

func (s Status) String() string {
	return fmt.Sprintf("selected %d/%d: %v", s.Count, s.Capacity, s.Names)
}

// Snapshot is the selection and its published result, read under one lock
type Snapshot struct {
	ID     string
	Status Status
	Cards  []cards.Card
	Result rules.Result
	// Pending is the number of queued deselections at snapshot time
	Pending int
}

// Options tunes a new engine
type Options struct {
	Capacity int
	Logger   *log.Logger
}

// Engine owns one player's selection and republishes its score after every
// mutation. Each public method runs to completion, including re-evaluation,
// before returning; readers always see a whole published result.
type Engine struct {
	ID        string
	catalog   *cards.Catalog
	evaluator *rules.Evaluator
	selection *cards.Selection
	result    rules.Result
	observers []Observer
	queue     *NotificationQueue
	logger    *log.Logger
	mu        sync.RWMutex
}

// NewEngine creates an engine with an empty selection. A nil evaluator
// disables scoring rather than failing.
func NewEngine(id string, catalog *cards.Catalog, evaluator *rules.Evaluator, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if evaluator == nil {
		evaluator = rules.NewEvaluator(nil, logger)
	}

	return &Engine{
		ID:        id,
		catalog:   catalog,
		evaluator: evaluator,
		selection: cards.NewSelection(opts.Capacity),
		result:    rules.ZeroResult(),
		queue:     NewNotificationQueue(),
		logger:    logger,
	}
}

// Subscribe registers an observer for deselections. Observers run in
// registration order while the engine lock is held.
func (e *Engine) Subscribe(obs Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, obs)
}

// Add selects the named card. Already-selected cards are a no-op. At
// capacity the oldest card is evicted and announced before the new card
// is appended.
func (e *Engine) Add(name string) (Snapshot, error) {
	card, ok := e.catalog.Lookup(name)
	if !ok {
		e.logger.Printf("engine %s: add %q: not in catalog", e.ID, name)
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selection.Contains(card.Name) {
		return e.snapshot(), nil
	}

	if e.selection.Full() {
		evicted, _ := e.selection.EvictOldest()
		e.logger.Printf("engine %s: selection full (%d), evicting %s", e.ID, e.selection.Capacity(), evicted.Name)
		e.notify(Deselection{Name: evicted.Name, Reason: ReasonEvicted})
	}

	e.selection.Append(card)
	e.publish()
	return e.snapshot(), nil
}

// Remove deselects the named card. If it is not selected the caller's view
// is stale: a resync notification is emitted and the selection is untouched.
func (e *Engine) Remove(name string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.selection.Remove(name); ok {
		e.notify(Deselection{Name: name, Reason: ReasonRemoved})
	} else {
		e.logger.Printf("engine %s: remove %q: not selected; resyncing", e.ID, name)
		e.notify(Deselection{Name: name, Reason: ReasonResync})
	}

	e.publish()
	return e.snapshot()
}

// RemoveAllWithName deletes every entry carrying name. Used when the
// displayed card behind a slot changes identity. Re-evaluates only if
// something was removed.
func (e *Engine) RemoveAllWithName(name string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.selection.RemoveAll(name)
	if len(removed) == 0 {
		return e.snapshot()
	}

	for _, card := range removed {
		e.notify(Deselection{Name: card.Name, Reason: ReasonRemoved})
	}
	e.publish()
	return e.snapshot()
}

// Reset empties the selection, announcing every member in insertion order
func (e *Engine) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, card := range e.selection.Clear() {
		e.notify(Deselection{Name: card.Name, Reason: ReasonReset})
	}
	e.publish()
	return e.snapshot()
}

// Restore rebuilds the selection from stored names without emitting
// notifications. Unknown names are skipped.
func (e *Engine) Restore(names []string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.restore(names)
	e.publish()
	return e.snapshot()
}

// Rollback returns the engine to an earlier snapshot, dropping deselections
// queued since it was taken. Observers that already ran are not called again.
func (e *Engine) Rollback(prev Snapshot) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.restore(prev.Status.Names)
	e.queue.Truncate(prev.Pending)
	e.publish()
	return e.snapshot()
}

// restore rebuilds the selection silently. Caller holds mu.
func (e *Engine) restore(names []string) {
	e.selection.Clear()
	for _, name := range names {
		card, ok := e.catalog.Lookup(name)
		if !ok {
			e.logger.Printf("engine %s: restore %q: not in catalog; skipped", e.ID, name)
			continue
		}
		if e.selection.Contains(name) {
			continue
		}
		if e.selection.Full() {
			e.selection.EvictOldest()
		}
		e.selection.Append(card)
	}
}

// Snapshot returns the selection and result as one consistent view
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot()
}

// Result returns the most recently published result
func (e *Engine) Result() rules.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result
}

// Selection returns the selected cards, oldest first
func (e *Engine) Selection() []cards.Card {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection.Cards()
}

// Status returns the roster summary line
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Count:    e.selection.Len(),
		Capacity: e.selection.Capacity(),
		Names:    e.selection.Names(),
	}
}

// DrainDeselections pops every queued notification in emission order
func (e *Engine) DrainDeselections() []Deselection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Drain()
}

// notify fans a deselection out to observers and the queue. Caller holds mu.
func (e *Engine) notify(d Deselection) {
	e.queue.Enqueue(d)
	for _, obs := range e.observers {
		obs(d)
	}
}

// snapshot copies the current state. Caller holds mu.
func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		ID: e.ID,
		Status: Status{
			Count:    e.selection.Len(),
			Capacity: e.selection.Capacity(),
			Names:    e.selection.Names(),
		},
		Cards:   e.selection.Cards(),
		Result:  e.result,
		Pending: e.queue.Count(),
	}
}

// publish recomputes the score from scratch and swaps it in whole. Caller holds mu.
func (e *Engine) publish() {
	e.result = e.evaluator.Evaluate(e.selection.Cards())
}
