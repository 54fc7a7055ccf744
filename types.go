// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import (
	"context"
	"time"
)

// Producer is the interface for the single goroutine that adds values.
//
// Values are passed by value and copied into the ring. On failure nothing
// is retained, so the caller still owns the value it passed.
type Producer[T any] interface {
	// Push adds a value, blocking while the queue is full.
	// Returns nil on success, ErrClosed if the queue is closed.
	Push(v T) error

	// TryPush adds a value without blocking.
	// Returns nil on success, ErrFull if the queue is full, ErrClosed if
	// the queue is closed.
	TryPush(v T) error
}

// Consumer is the interface for the single goroutine that removes values.
//
// The slot a value is taken from is cleared to allow garbage collection of
// referenced objects.
type Consumer[T any] interface {
	// Pop removes the oldest value, blocking while the queue is empty.
	// Returns (zero-value, ErrClosed) once the queue is closed and drained.
	Pop() (T, error)

	// TryPop removes the oldest value without blocking.
	// Returns (zero-value, ErrEmpty) if the queue is empty,
	// (zero-value, ErrClosed) if it is closed and drained.
	TryPop() (T, error)
}

// TimedProducer is a Producer whose blocking push can be bounded.
type TimedProducer[T any] interface {
	Producer[T]

	// PushFor returns ErrTimeout if the queue stays full for d.
	PushFor(v T, d time.Duration) error

	// PushContext returns ctx.Err() if ctx ends while the queue is full.
	PushContext(ctx context.Context, v T) error
}

// TimedConsumer is a Consumer whose blocking pop can be bounded.
type TimedConsumer[T any] interface {
	Consumer[T]

	// PopFor returns (zero-value, ErrTimeout) if the queue stays empty for d.
	PopFor(d time.Duration) (T, error)

	// PopContext returns (zero-value, ctx.Err()) if ctx ends while the
	// queue is empty.
	PopContext(ctx context.Context) (T, error)
}

// BlockingQueue is the combined producer-consumer interface of [Queue].
//
// Example:
//
//	var q spscq.BlockingQueue[Event] = spscq.New[Event](1024)
//
//	go func() { // Producer
//	    for ev := range events {
//	        if err := q.Push(ev); err != nil {
//	            return // closed
//	        }
//	    }
//	    q.Close()
//	}()
//
//	for { // Consumer
//	    ev, err := q.Pop()
//	    if err != nil {
//	        break // closed and drained
//	    }
//	    handle(ev)
//	}
type BlockingQueue[T any] interface {
	TimedProducer[T]
	TimedConsumer[T]
	Close()
	IsClosed() bool
	Len() int
	Cap() int
}

// StatsSource is implemented by queues that expose activity counters.
// The metrics subpackage collects from any StatsSource.
type StatsSource interface {
	Stats() Stats
	Len() int
	Cap() int
}

var (
	_ BlockingQueue[int] = (*Queue[int])(nil)
	_ StatsSource        = (*Queue[int])(nil)
)
