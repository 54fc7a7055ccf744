// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import (
	"context"
	"time"
)

// waiter bounds how long a blocking operation may stay parked.
// A nil *waiter parks without limit.
type waiter struct {
	ctx      context.Context
	deadline time.Time
	timed    bool
	timer    *time.Timer
}

// wait parks on a slot semaphore until it is signaled, the deadline
// passes, or the context ends. A nil result only means "re-check the
// slot": tokens may be stale.
func (w *waiter) wait(wake <-chan struct{}) error {
	if w == nil {
		<-wake
		return nil
	}

	var expired <-chan time.Time
	if w.timed {
		// Armed on first park so the fast path never allocates a timer.
		if w.timer == nil {
			w.timer = time.NewTimer(time.Until(w.deadline))
		}
		expired = w.timer.C
	}
	var done <-chan struct{}
	if w.ctx != nil {
		done = w.ctx.Done()
	}

	select {
	case <-wake:
		return nil
	case <-expired:
		return ErrTimeout
	case <-done:
		return w.ctx.Err()
	}
}

func (w *waiter) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

// PushFor is Push bounded by d (producer only).
//
// Returns ErrTimeout if the queue stays full for d. Before returning, the
// producer withdraws its wait registration from the slot; if the consumer
// frees the slot in that instant the push completes and returns nil.
func (q *Queue[T]) PushFor(v T, d time.Duration) error {
	w := waiter{deadline: time.Now().Add(d), timed: true}
	defer w.stop()
	return q.push(v, &w)
}

// PushContext is Push bounded by ctx (producer only).
// Returns ctx.Err() if ctx ends while the queue is full.
func (q *Queue[T]) PushContext(ctx context.Context, v T) error {
	return q.push(v, &waiter{ctx: ctx})
}

// PopFor is Pop bounded by d (consumer only).
//
// Returns (zero-value, ErrTimeout) if the queue stays empty for d. A
// timed-out pop leaves the slot exactly as it found it, so later Push and
// Pop calls are unaffected.
func (q *Queue[T]) PopFor(d time.Duration) (T, error) {
	w := waiter{deadline: time.Now().Add(d), timed: true}
	defer w.stop()
	return q.pop(&w)
}

// PopContext is Pop bounded by ctx (consumer only).
// Returns (zero-value, ctx.Err()) if ctx ends while the queue is empty.
func (q *Queue[T]) PopContext(ctx context.Context) (T, error) {
	return q.pop(&waiter{ctx: ctx})
}
