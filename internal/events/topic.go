// Package events is a typed in-process publish/subscribe bus. Handlers
// run synchronously on the publishing goroutine, in subscription order.
package events

import (
	"context"
	"log/slog"
	"sync"
)

// Handler receives one published event.
type Handler[T any] func(ctx context.Context, ev T)

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// Topic delivers events of one type to its subscribers.
type Topic[T any] struct {
	name   string
	logger *slog.Logger

	mu     sync.RWMutex
	nextID int
	subs   []subscription[T]
}

// NewTopic creates an empty topic. A nil logger uses slog.Default.
func NewTopic[T any](name string, logger *slog.Logger) *Topic[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic[T]{name: name, logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (t *Topic[T]) Subscribe(fn Handler[T]) (unsubscribe func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, s := range t.subs {
				if s.id == id {
					t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber with ev. A panicking handler is logged and
// does not prevent delivery to the remaining subscribers.
func (t *Topic[T]) Publish(ctx context.Context, ev T) {
	t.mu.RLock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		t.deliver(ctx, s.fn, ev)
	}
}

// Len returns the number of active subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) deliver(ctx context.Context, fn Handler[T], ev T) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.ErrorContext(ctx, "event handler panicked", "topic", t.name, "panic", r)
		}
	}()
	fn(ctx, ev)
}
