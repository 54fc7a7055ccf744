// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
// [ErrFull] and [ErrEmpty] wrap it, so errors.Is(err, ErrWouldBlock)
// holds for both.
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrFull is returned by TryPush when the producer's slot still holds
	// an unread value (backpressure).
	//
	// ErrFull is a control flow signal, not a failure. The value was not
	// stored and remains with the caller.
	ErrFull = fmt.Errorf("spscq: queue full: %w", iox.ErrWouldBlock)

	// ErrEmpty is returned by TryPop when the consumer's slot holds no
	// value yet.
	ErrEmpty = fmt.Errorf("spscq: queue empty: %w", iox.ErrWouldBlock)

	// ErrClosed is returned by push operations after Close, and by pop
	// operations after Close once every buffered value has been popped.
	ErrClosed = errors.New("spscq: queue closed")

	// ErrTimeout is returned by PushFor and PopFor when the duration
	// elapses before the peer makes the slot ready.
	ErrTimeout = errors.New("spscq: operation timed out")
)

// IsWouldBlock reports whether err indicates the operation would block.
// Reports true for [ErrFull] and [ErrEmpty].
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
