// Package live turns committed writes into fresh query results for
// subscribers. Writers call Hub.Notify after a commit; readers use Watch to
// receive a new snapshot after each relevant change.
package live

import (
	"context"
	"sync"
)

// Topic names a class of records whose changes are signalled together.
type Topic string

const (
	TopicTasks    Topic = "tasks"
	TopicIncomes  Topic = "incomes"
	TopicExpenses Topic = "expenses"
)

// Hub fans change signals out to subscribers. Signals are coalesced: a
// subscriber that has not yet consumed a pending signal receives only one.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	topics map[Topic]struct{}
	ch     chan struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscription)}
}

// Notify signals every subscriber of topic. It never blocks.
func (h *Hub) Notify(topic Topic) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs {
		if _, ok := s.topics[topic]; !ok {
			continue
		}
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers for the given topics. The returned channel receives a
// value after each change; cancel unregisters and must be called.
func (h *Hub) Subscribe(topics ...Topic) (<-chan struct{}, func()) {
	s := &subscription{
		topics: make(map[Topic]struct{}, len(topics)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range topics {
		s.topics[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Snapshot is one query result delivered by Watch.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Watch runs fetch once immediately and again after every change on topics,
// delivering each result on the returned channel. Only the newest result is
// kept for a slow reader. The channel is closed and the subscription
// removed when ctx ends.
func Watch[T any](ctx context.Context, hub *Hub, fetch func(context.Context) (T, error), topics ...Topic) <-chan Snapshot[T] {
	changes, cancel := hub.Subscribe(topics...)
	out := make(chan Snapshot[T], 1)

	go func() {
		defer close(out)
		defer cancel()

		for {
			v, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			deliver(out, Snapshot[T]{Value: v, Err: err})

			select {
			case <-ctx.Done():
				return
			case <-changes:
			}
		}
	}()

	return out
}

// deliver replaces an unread snapshot with s.
func deliver[T any](out chan Snapshot[T], s Snapshot[T]) {
	for {
		select {
		case out <- s:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
