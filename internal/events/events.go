package events

import (
	"sync"
	"time"
)

// OrdersChanged is published after an order create or update has been committed.
type OrdersChanged struct {
	OrderIDs []string  `json:"order_ids"`
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
}

// Topic is a typed publish/subscribe channel that remembers its latest value.
// Handlers run synchronously on the publishing goroutine, in subscription order.
type Topic[T any] struct {
	mu       sync.RWMutex
	handlers []subscription[T]
	nextID   int
	seq      uint64
	last     T
	hasLast  bool
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func NewTopic[T any]() *Topic[T] { return &Topic[T]{} }

// Subscribe registers fn. When replay is set and something was already published,
// fn immediately receives the latest value so a late subscriber still converges.
func (t *Topic[T]) Subscribe(fn func(T), replay bool) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.handlers = append(t.handlers, subscription[T]{id: id, fn: fn})
	last, has := t.last, t.hasLast
	t.mu.Unlock()

	if replay && has {
		fn(last)
	}

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.handlers {
			if s.id == id {
				t.handlers = append(t.handlers[:i], t.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish records v as the latest value and hands it to every subscriber.
// It returns the sequence number assigned to v.
func (t *Topic[T]) Publish(v T) uint64 {
	return t.PublishSeq(func(uint64) T { return v })
}

// PublishSeq is Publish for values that carry their own sequence number.
func (t *Topic[T]) PublishSeq(build func(seq uint64) T) uint64 {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	v := build(seq)
	t.last, t.hasLast = v, true
	handlers := make([]subscription[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.Unlock()

	for _, s := range handlers {
		s.fn(v)
	}
	return seq
}

// Seq is the number of values published so far.
func (t *Topic[T]) Seq() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq
}

// Bus groups the application topics.
type Bus struct {
	Orders *Topic[OrdersChanged]
}

func NewBus() *Bus {
	return &Bus{Orders: NewTopic[OrdersChanged]()}
}

// OrdersUpdated publishes an OrdersChanged for the given ids.
func (b *Bus) OrdersUpdated(ids ...string) {
	b.Orders.PublishSeq(func(seq uint64) OrdersChanged {
		return OrdersChanged{OrderIDs: ids, Seq: seq, At: time.Now()}
	})
}
