// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Queue is a blocking single-producer single-consumer bounded queue.
//
// The ring is an array of slots, each carrying its own lock-free state tag
// (Writable, WritableBlocked, Readable, ReadableBlocked). The producer and
// the consumer each own one cursor and only ever meet on the slot that
// both cursors point at, so there is no shared index to contend on.
//
// When the target slot is not ready, a blocking operation spins briefly,
// then tags the slot Blocked and parks on the slot's binary semaphore. The
// peer that flips the slot out of the Blocked state wakes it.
//
// Exactly one goroutine may call the push family and exactly one the pop
// family. A Queue must not be copied after first use.
//
// Memory: O(capacity), one cache line plus one channel per slot
type Queue[T any] struct {
	_         pad
	pushIndex atomix.Uint64 // Producer cursor
	pstats    producerStats
	_         pad
	popIndex  atomix.Uint64 // Consumer cursor
	cstats    consumerStats
	_         pad
	closed    atomix.Bool
	_         pad
	slots     []ringSlot[T]
	capacity  uint64
	mask      uint64 // capacity-1 when pow2
	pow2      bool
	spinLimit int
}

// New creates a new queue holding at most capacity values.
// Capacity is exact, it is not rounded up.
//
// Panics if capacity < 1.
func New[T any](capacity int) *Queue[T] {
	return Build[T](NewBuilder(capacity))
}

func newQueue[T any](opts Options) *Queue[T] {
	n := uint64(opts.capacity)
	q := &Queue[T]{
		slots:     make([]ringSlot[T], n),
		capacity:  n,
		pow2:      isPow2(opts.capacity),
		spinLimit: opts.spinLimit,
	}
	if q.pow2 {
		q.mask = n - 1
	}
	for i := range q.slots {
		q.slots[i].wake = make(chan struct{}, 1)
	}
	return q
}

func (q *Queue[T]) slot(i uint64) *ringSlot[T] {
	if q.pow2 {
		return &q.slots[i&q.mask]
	}
	return &q.slots[i%q.capacity]
}

// Push adds v to the queue (producer only), blocking while the queue is
// full. It returns once the value is visible to the consumer.
//
// Returns ErrClosed if the queue is closed before or while waiting.
func (q *Queue[T]) Push(v T) error {
	return q.push(v, nil)
}

// TryPush adds v to the queue without blocking (producer only).
//
// Returns ErrFull if the queue is full and ErrClosed if it is closed. On
// failure nothing is stored and no wait is registered.
func (q *Queue[T]) TryPush(v T) error {
	if q.closed.Load() {
		q.pstats.closed.inc()
		return ErrClosed
	}
	idx := q.pushIndex.LoadRelaxed()
	s := q.slot(idx)
	if !s.load().writable() {
		q.pstats.full.inc()
		return ErrFull
	}
	q.publish(s, idx, v)
	return nil
}

// Pop removes and returns the oldest value (consumer only), blocking while
// the queue is empty.
//
// After Close, Pop keeps returning buffered values in order, then returns
// (zero-value, ErrClosed).
func (q *Queue[T]) Pop() (T, error) {
	return q.pop(nil)
}

// TryPop removes and returns the oldest value without blocking (consumer
// only).
//
// Returns (zero-value, ErrEmpty) if the queue is empty, or
// (zero-value, ErrClosed) if it is closed and drained.
func (q *Queue[T]) TryPop() (T, error) {
	idx := q.popIndex.LoadRelaxed()
	s := q.slot(idx)
	if s.load().readable() {
		return q.consume(s, idx), nil
	}
	var zero T
	if q.closed.Load() {
		// A push that passed its closed check before Close may have
		// landed since the first look.
		if s.load().readable() {
			return q.consume(s, idx), nil
		}
		q.cstats.closed.inc()
		return zero, ErrClosed
	}
	q.cstats.empty.inc()
	return zero, ErrEmpty
}

// push runs the producer side of the slot protocol. A nil waiter waits
// without limit.
func (q *Queue[T]) push(v T, w *waiter) error {
	if q.closed.Load() {
		q.pstats.closed.inc()
		return ErrClosed
	}

	idx := q.pushIndex.LoadRelaxed()
	s := q.slot(idx)
	sw := spin.Wait{}
	spins := 0
	for {
		switch st := s.load(); st {
		case stateWritable, stateWritableBlocked:
			q.publish(s, idx, v)
			return nil

		case stateReadable:
			if q.closed.Load() {
				q.pstats.closed.inc()
				return ErrClosed
			}
			if spins < q.spinLimit {
				spins++
				sw.Once()
				continue
			}
			// Fails only if the consumer freed the slot first.
			if s.cas(stateReadable, stateReadableBlocked) {
				q.pstats.parks.inc()
			}

		case stateReadableBlocked:
			// Registered. Close sets the flag before scanning for Blocked
			// slots, so either the flag is seen here or the slot is
			// signaled.
			if q.closed.Load() {
				s.cas(stateReadableBlocked, stateReadable)
				q.pstats.closed.inc()
				return ErrClosed
			}
			if err := w.wait(s.wake); err != nil {
				if s.cas(stateReadableBlocked, stateReadable) {
					q.pstats.timeouts.inc()
					return err
				}
				// The consumer freed the slot before the revoke; the
				// push completes instead of timing out.
			}
		}
	}
}

// pop runs the consumer side of the slot protocol. A nil waiter waits
// without limit.
func (q *Queue[T]) pop(w *waiter) (T, error) {
	var zero T
	idx := q.popIndex.LoadRelaxed()
	s := q.slot(idx)
	sw := spin.Wait{}
	spins := 0
	for {
		switch st := s.load(); st {
		case stateReadable, stateReadableBlocked:
			return q.consume(s, idx), nil

		case stateWritable:
			if q.closed.Load() {
				if s.load().readable() {
					continue
				}
				q.cstats.closed.inc()
				return zero, ErrClosed
			}
			if spins < q.spinLimit {
				spins++
				sw.Once()
				continue
			}
			if s.cas(stateWritable, stateWritableBlocked) {
				q.cstats.parks.inc()
			}

		case stateWritableBlocked:
			if q.closed.Load() {
				if s.cas(stateWritableBlocked, stateWritable) {
					q.cstats.closed.inc()
					return zero, ErrClosed
				}
				// The producer filled the slot; drain it first.
				continue
			}
			if err := w.wait(s.wake); err != nil {
				if s.cas(stateWritableBlocked, stateWritable) {
					q.cstats.timeouts.inc()
					return zero, err
				}
			}
		}
	}
}

// publish stores v into the producer's slot and advances the cursor.
func (q *Queue[T]) publish(s *ringSlot[T], idx uint64, v T) {
	if s.store(v) {
		q.pstats.wakeups.inc()
	}
	q.pushIndex.StoreRelease(idx + 1)
	q.pstats.pushes.inc()
}

// consume takes the value from the consumer's slot and advances the cursor.
func (q *Queue[T]) consume(s *ringSlot[T], idx uint64) T {
	v, woke := s.take()
	if woke {
		q.cstats.wakeups.inc()
	}
	q.popIndex.StoreRelease(idx + 1)
	q.cstats.pops.inc()
	return v
}

// Len returns the number of buffered values.
//
// The result is advisory: either side may move its cursor the moment after
// it is read.
func (q *Queue[T]) Len() int {
	// Cursors only grow and pop never passes push, so reading pop first
	// keeps the difference non-negative.
	pop := q.popIndex.LoadAcquire()
	push := q.pushIndex.LoadAcquire()
	n := push - pop
	if n > q.capacity {
		n = q.capacity
	}
	return int(n)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

// IsEmpty reports whether the queue holds no values. Advisory, as Len.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull reports whether the queue holds Cap values. Advisory, as Len.
func (q *Queue[T]) IsFull() bool {
	return q.Len() == q.Cap()
}
