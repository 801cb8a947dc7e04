// Package events lets components announce data changes to whoever
// subscribed, instead of reaching for a process-wide broadcast.
package events

import (
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Topics published by prio.
const (
	TasksChanged       = "tasks.changed"
	OverridesChanged   = "overrides.changed"
	CompletionsChanged = "completions.changed"
)

// Event describes one change.
type Event struct {
	Topic   string
	UserID  string
	TaskIDs []string
	At      time.Time
}

// Handler receives events. Handlers run synchronously on the publishing
// goroutine and must not block.
type Handler func(Event)

type subscription struct {
	id      uint64
	name    string
	pattern string
	fn      Handler
}

// Bus routes published events to matching subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for topics matching pattern ("tasks.changed",
// "tasks.*", "*"). The returned func removes the subscription.
func (b *Bus) Subscribe(pattern, name string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, pattern: pattern, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber, ordered by name, and
// returns how many received it. A nil Bus drops events.
func (b *Bus) Publish(e Event) int {
	if b == nil {
		return 0
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	var matched []subscription
	for _, s := range b.subs {
		if matchPattern(s.pattern, e.Topic) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].name < matched[j].name
	})
	for _, s := range matched {
		s.fn(e)
	}
	return len(matched)
}

// Count returns the number of active subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// matchPattern checks if a topic matches a subscription pattern.
// Patterns support dotted notation and wildcards:
//   - "tasks.changed" matches only "tasks.changed"
//   - "tasks.*"       matches "tasks.changed", "tasks.deleted", etc.
//   - "*"             matches everything
func matchPattern(pattern, topic string) bool {
	matched, _ := filepath.Match(pattern, topic)
	return matched
}
