// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package spscq provides a blocking single-producer single-consumer
// bounded FIFO queue.
//
// The queue is a fixed ring of slots. Every slot carries a lock-free state
// tag, so the producer and the consumer never share an index: each owns a
// cursor and hands values over through the slot the cursors meet on. When
// a slot is not ready the caller spins briefly, then parks on that slot's
// binary semaphore until the peer flips the slot and wakes it.
//
// # Quick Start
//
//	q := spscq.New[Event](1024)
//
//	go func() { // Producer
//	    for ev := range source {
//	        if q.Push(ev) != nil {
//	            return
//	        }
//	    }
//	    q.Close()
//	}()
//
//	for { // Consumer
//	    ev, err := q.Pop()
//	    if err != nil {
//	        break // ErrClosed: closed and drained
//	    }
//	    process(ev)
//	}
//
// Builder API for tuning:
//
//	q := spscq.Build[Event](spscq.NewBuilder(1024).SpinLimit(0))
//
// # Operations
//
//	Push / Pop               block until the slot is ready or the queue closes
//	TryPush / TryPop         never block: ErrFull / ErrEmpty
//	PushFor / PopFor         block at most d: ErrTimeout
//	PushContext / PopContext block until ctx ends: ctx.Err()
//	Close / Reopen           disable and re-enable pushing
//	RemoveAll                discard buffered values (consumer)
//	WaitUntilEmpty           wait for the consumer to drain (any goroutine)
//	Len / Cap / Stats        advisory length, capacity, activity counters
//
// # Slot Protocol
//
// A slot moves through four states:
//
//	Writable ──push──▶ Readable ──pop──▶ Writable
//	    │                  │
//	    ▼ consumer parks   ▼ producer parks
//	WritableBlocked    ReadableBlocked
//
// A Blocked state means the other role is parked on the slot. The role
// that flips the slot out of a Blocked state wakes the parked one. A
// parked role re-checks the slot after every wake-up, so stale or spurious
// signals are harmless.
//
// A timed operation that expires withdraws its Blocked tag before
// returning. If the peer flipped the slot in that instant, the operation
// completes instead of timing out.
//
// # Capacity and Length
//
// Capacity is exact and must be >= 1:
//
//	q := spscq.New[int](3)     // Capacity: 3
//	q := spscq.New[int](1024)  // Capacity: 1024, mask indexing
//
// Len is a snapshot of the producer cursor minus the consumer cursor. It
// is advisory: the other side may move the moment after it is read.
//
// # Error Handling
//
// [ErrFull] and [ErrEmpty] wrap [ErrWouldBlock] from
// [code.hybscloud.com/iox], so backpressure can be classified the same way
// as in the rest of the iox ecosystem:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.TryPush(item)
//	    if err == nil {
//	        break
//	    }
//	    if !spscq.IsWouldBlock(err) {
//	        return err // ErrClosed
//	    }
//	    backoff.Wait()
//	}
//
// [ErrClosed] and [ErrTimeout] are terminal for the call that returns
// them. No operation drops a value: a failed push stores nothing, and
// Close keeps buffered values poppable.
//
// # Thread Safety
//
// One goroutine calls Push, TryPush, PushFor and PushContext. One goroutine
// calls Pop, TryPop, PopFor, PopContext and RemoveAll. Close, Reopen,
// IsClosed, Len, Cap, Stats and WaitUntilEmpty are safe from any goroutine.
// Two producers or two consumers cause undefined behavior.
//
// # Race Detection
//
// Values are handed over through a plain slot field guarded by the slot's
// atomix state word. The race detector cannot observe that acquire-release
// pairing and may report false positives. Stress tests that hand values
// across goroutines are skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for the bounded spin
// before parking.
//
// The metrics subpackage exports [Queue.Stats] to Prometheus.
package spscq
