// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import (
	"context"

	"code.hybscloud.com/iox"
)

// Close disables pushing and wakes any parked producer or consumer.
//
// Blocking and non-blocking pushes fail with ErrClosed from now on.
// Values already buffered are kept: Pop and TryPop return them in order
// and report ErrClosed once the queue is drained.
//
// Close may be called from any goroutine and is idempotent.
func (q *Queue[T]) Close() {
	q.closed.Store(true)
	for i := range q.slots {
		s := &q.slots[i]
		if slotState(s.state.Load()).blocked() {
			s.signal()
		}
	}
}

// IsClosed reports whether Close has been called (and not undone by
// Reopen).
func (q *Queue[T]) IsClosed() bool {
	return q.closed.Load()
}

// Reopen undoes Close: pushes succeed again and pops block on an empty
// queue instead of reporting ErrClosed.
//
// Operations that already returned ErrClosed are not retried.
func (q *Queue[T]) Reopen() {
	q.closed.Store(false)
}

// RemoveAll discards the buffered values (consumer only) and returns how
// many were removed.
//
// At most Cap values are removed, so a producer pushing concurrently
// cannot keep RemoveAll running.
func (q *Queue[T]) RemoveAll() int {
	n := 0
	for n < q.Cap() {
		idx := q.popIndex.LoadRelaxed()
		s := q.slot(idx)
		if !s.load().readable() {
			break
		}
		q.consume(s, idx)
		n++
	}
	return n
}

// WaitUntilEmpty blocks until the consumer has popped every buffered value
// or ctx ends. It may be called from any goroutine.
//
// Returns nil once Len reports 0, or ctx.Err().
func (q *Queue[T]) WaitUntilEmpty(ctx context.Context) error {
	backoff := iox.Backoff{}
	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		backoff.Wait()
	}
	return nil
}
