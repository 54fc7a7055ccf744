// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import "code.hybscloud.com/atomix"

// slotState is the lock-free state tag of a ring slot.
//
// A slot cycles Writable → Readable → Writable. The Blocked variants mean
// the other role is parked on this slot: WritableBlocked has a parked
// consumer, ReadableBlocked has a parked producer. Whoever flips the slot
// out of a Blocked state clears it and signals the slot's wake semaphore.
type slotState int32

const (
	stateWritable slotState = iota
	stateWritableBlocked
	stateReadable
	stateReadableBlocked
)

// String returns the state name.
func (s slotState) String() string {
	switch s {
	case stateWritable:
		return "Writable"
	case stateWritableBlocked:
		return "WritableBlocked"
	case stateReadable:
		return "Readable"
	case stateReadableBlocked:
		return "ReadableBlocked"
	default:
		return "Invalid"
	}
}

// writable reports whether the producer may store into the slot.
func (s slotState) writable() bool {
	return s == stateWritable || s == stateWritableBlocked
}

// readable reports whether the consumer may load from the slot.
func (s slotState) readable() bool {
	return s == stateReadable || s == stateReadableBlocked
}

// blocked reports whether a peer is parked on the slot.
func (s slotState) blocked() bool {
	return s == stateWritableBlocked || s == stateReadableBlocked
}

// ringSlot holds one element, its state tag, and the binary semaphore a
// parked role waits on.
type ringSlot[T any] struct {
	state atomix.Int32
	wake  chan struct{} // capacity 1
	value T
	_     padShort
}

func (s *ringSlot[T]) load() slotState {
	return slotState(s.state.LoadAcquire())
}

// cas moves the slot from one state to another with acquire-release ordering.
// The release half publishes a value stored before the call; the acquire
// half makes a value stored by the peer visible after it.
func (s *ringSlot[T]) cas(from, to slotState) bool {
	return s.state.CompareAndSwapAcqRel(int32(from), int32(to))
}

// signal releases the slot semaphore. A token already pending is not
// duplicated, so the semaphore stays binary.
func (s *ringSlot[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// store writes v and publishes it by flipping the slot to Readable.
// Producer only, with the slot in a writable state. Reports whether a
// parked consumer was woken.
func (s *ringSlot[T]) store(v T) (woke bool) {
	s.value = v
	for {
		st := s.load()
		// The consumer may register or revoke its block concurrently;
		// the value is already in place, only the tag is retried.
		if s.cas(st, stateReadable) {
			if st == stateWritableBlocked {
				s.signal()
				return true
			}
			return false
		}
	}
}

// take loads the value, clears the slot for the garbage collector, and
// hands it back to the producer by flipping it to Writable.
// Consumer only, with the slot in a readable state. Reports whether a
// parked producer was woken.
func (s *ringSlot[T]) take() (v T, woke bool) {
	v = s.value
	var zero T
	s.value = zero
	for {
		st := s.load()
		if s.cas(st, stateWritable) {
			if st == stateReadableBlocked {
				s.signal()
				return v, true
			}
			return v, false
		}
	}
}
