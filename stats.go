// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import "code.hybscloud.com/atomix"

// Stats is a point-in-time snapshot of a queue's activity counters.
//
// Each counter has a single writer (the producer or the consumer), so the
// snapshot is cheap but not atomic as a whole: counters of the two roles
// may be read at slightly different moments.
type Stats struct {
	Pushes          uint64 // values stored by Push, TryPush and timed variants
	PushFull        uint64 // TryPush calls rejected with ErrFull
	PushClosed      uint64 // push attempts rejected with ErrClosed
	PushTimeouts    uint64 // timed pushes that expired
	ProducerParks   uint64 // times the producer parked on a full slot
	ConsumerWakeups uint64 // parked consumers woken by the producer
	Pops            uint64 // values taken by Pop, TryPop, RemoveAll and timed variants
	PopEmpty        uint64 // TryPop calls rejected with ErrEmpty
	PopClosed       uint64 // pop attempts rejected with ErrClosed
	PopTimeouts     uint64 // timed pops that expired
	ConsumerParks   uint64 // times the consumer parked on an empty slot
	ProducerWakeups uint64 // parked producers woken by the consumer
}

// roleCounter is a counter written by one goroutine and read by any.
type roleCounter struct {
	v atomix.Uint64
}

func (c *roleCounter) inc() {
	c.v.StoreRelaxed(c.v.LoadRelaxed() + 1)
}

func (c *roleCounter) load() uint64 {
	return c.v.LoadRelaxed()
}

// producerStats are written only by the producer goroutine.
type producerStats struct {
	pushes   roleCounter
	full     roleCounter
	closed   roleCounter
	timeouts roleCounter
	parks    roleCounter
	wakeups  roleCounter
}

// consumerStats are written only by the consumer goroutine.
type consumerStats struct {
	pops     roleCounter
	empty    roleCounter
	closed   roleCounter
	timeouts roleCounter
	parks    roleCounter
	wakeups  roleCounter
}

// Stats returns a snapshot of the queue counters. Safe from any goroutine.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Pushes:          q.pstats.pushes.load(),
		PushFull:        q.pstats.full.load(),
		PushClosed:      q.pstats.closed.load(),
		PushTimeouts:    q.pstats.timeouts.load(),
		ProducerParks:   q.pstats.parks.load(),
		ConsumerWakeups: q.pstats.wakeups.load(),
		Pops:            q.cstats.pops.load(),
		PopEmpty:        q.cstats.empty.load(),
		PopClosed:       q.cstats.closed.load(),
		PopTimeouts:     q.cstats.timeouts.load(),
		ConsumerParks:   q.cstats.parks.load(),
		ProducerWakeups: q.cstats.wakeups.load(),
	}
}
