package phaser

import (
	"context"
	"sync"
)

// Order selects which end of the queue Pop removes from
type Order int

const (
	// OrderLIFO removes the most recently pushed item
	OrderLIFO Order = iota
	// OrderFIFO removes the oldest item
	OrderFIFO
)

// String returns the name of the order
func (o Order) String() string {
	if o == OrderFIFO {
		return "fifo"
	}
	return "lifo"
}

// QueueOption configures a Queue
type QueueOption func(*queueOptions)

type queueOptions struct {
	order Order
	limit int
}

// WithOrder sets the removal order of the queue
func WithOrder(order Order) QueueOption {
	return func(o *queueOptions) {
		o.order = order
	}
}

// WithLimit bounds the queue to limit items. When full, Push discards the
// oldest item. A limit of zero or less leaves the queue unbounded.
func WithLimit(limit int) QueueOption {
	return func(o *queueOptions) {
		o.limit = limit
	}
}

// Queue is a blocking queue safe for concurrent use. Push never blocks;
// Pop waits until an item is available.
type Queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	order   Order
	limit   int
	dropped int
	closed  bool
}

// NewQueue creates an empty queue. The default order is LIFO and the default
// capacity is unbounded.
func NewQueue[T any](opts ...QueueOption) *Queue[T] {
	options := queueOptions{order: OrderLIFO}
	for _, opt := range opts {
		opt(&options)
	}

	q := &Queue[T]{
		items: make([]T, 0),
		order: options.order,
		limit: options.limit,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item and wakes one waiter. Pushing to a closed queue
// discards the item.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	if q.limit > 0 && len(q.items) >= q.limit {
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.dropped++
	}

	q.items = append(q.items, item)
	q.cond.Signal()
}

// Pop blocks until an item is available and removes it. It returns the zero
// value if the queue is closed and empty.
func (q *Queue[T]) Pop() T {
	item, _ := q.PopContext(context.Background())
	return item
}

// PopContext blocks until an item is available, ctx is done, or the queue is
// closed and drained.
func (q *Queue[T]) PopContext(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return zero, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.cond.Wait()
	}

	return q.remove(), nil
}

// TryPop removes an item without blocking
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.remove(), true
}

// remove takes one item according to the queue order. Caller holds mu and
// guarantees the queue is non-empty.
func (q *Queue[T]) remove() T {
	var zero T
	if q.order == OrderFIFO {
		item := q.items[0]
		q.items[0] = zero
		q.items = q.items[1:]
		return item
	}

	last := len(q.items) - 1
	item := q.items[last]
	q.items[last] = zero
	q.items = q.items[:last]
	return item
}

// Drain removes and returns every queued item in push order
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = make([]T, 0)
	return items
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items were discarded because the queue was full
func (q *Queue[T]) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Order returns the removal order of the queue
func (q *Queue[T]) Order() Order {
	return q.order
}

// Close marks the queue closed and wakes every waiter. Items already queued
// can still be popped. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Closed reports whether Close has been called
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
