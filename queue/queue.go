// Package queue implements the bounded single-producer/single-consumer
// element queue that decouples the Element FSM (producer) from the
// Transmission FSM (consumer), per spec.md §4.5. It is grounded on the
// teacher's driver/stub ring buffer (a mutex-guarded fixed-size ring used to
// buffer outgoing radio frames), restructured here without a mutex: spec.md
// §5 requires the producer side be callable from a context that must not
// block or take a lock, so the head/tail indices are plain atomics instead.
package queue

import (
	"sync/atomic"

	"github.com/kb9qrp/ironkeyer/element"
)

// Queue is a fixed-capacity ring buffer with exactly one producer and
// exactly one consumer. Overflow policy is drop-newest: TryEnqueue on a full
// queue fails silently and leaves the buffer untouched (spec.md §4.5/§7
// QueueFull).
type Queue struct {
	buf      []element.Element
	capacity uint32
	head     atomic.Uint32 // next slot to dequeue
	tail     atomic.Uint32 // next slot to enqueue
}

// New creates a queue of the given capacity. Capacity must be a power of two
// for the index-masking trick below; NewConfig already restricts
// QueueCapacity to a range validated by the caller, but New rounds up to the
// next power of two defensively rather than panicking on an odd value.
func New(capacity uint16) *Queue {
	cap32 := nextPowerOfTwo(uint32(capacity))
	return &Queue{
		buf:      make([]element.Element, cap32),
		capacity: cap32,
	}
}

func nextPowerOfTwo(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// TryEnqueue attempts to push e onto the queue. It returns false without
// modifying the queue if the queue is full. Safe to call from a single
// producer concurrently with TryDequeue running on a single consumer; not
// safe for multiple concurrent producers.
func (q *Queue) TryEnqueue(e element.Element) bool {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail-head >= q.capacity {
		return false
	}
	q.buf[tail&(q.capacity-1)] = e
	q.tail.Store(tail + 1)
	return true
}

// TryDequeue pops the oldest element, if any. Safe to call from a single
// consumer concurrently with TryEnqueue running on a single producer.
func (q *Queue) TryDequeue() (element.Element, bool) {
	head := q.head.Load()
	tail := q.tail.Load()
	if head == tail {
		return 0, false
	}
	e := q.buf[head&(q.capacity-1)]
	q.head.Store(head + 1)
	return e, true
}

// IsEmpty reports whether the queue currently holds no elements. The result
// can be stale by the time the caller acts on it if the other side of the
// queue runs concurrently, which is expected and harmless: the consumer
// simply sees nothing to dequeue, or the producer sees room it can still
// use.
func (q *Queue) IsEmpty() bool {
	return q.head.Load() == q.tail.Load()
}

// IsFull reports whether the queue is currently at capacity.
func (q *Queue) IsFull() bool {
	return q.tail.Load()-q.head.Load() >= q.capacity
}

// Len returns the number of elements currently queued.
func (q *Queue) Len() uint32 {
	return q.tail.Load() - q.head.Load()
}

// Capacity returns the queue's fixed capacity (after power-of-two rounding).
func (q *Queue) Capacity() uint32 {
	return q.capacity
}
