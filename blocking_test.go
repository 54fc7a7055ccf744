// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spscq"
)

// =============================================================================
// Test Helpers
// =============================================================================

// retryWithTimeout retries f until it returns true or timeout expires.
// Reports failure with the given message if timeout is reached.
func retryWithTimeout(t *testing.T, timeout time.Duration, f func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	backoff := iox.Backoff{}
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout after %v: %s", timeout, msg)
		}
		backoff.Wait()
	}
}

// skipUnderRace skips tests that hand values across goroutines through
// the slot field; see spscq.RaceEnabled.
func skipUnderRace(t *testing.T) {
	t.Helper()
	if spscq.RaceEnabled {
		t.Skip("skip: value handoff through atomix-guarded slot")
	}
}

// parkedQueue returns a queue that parks without spinning, so tests can
// wait for the park counters deterministically.
func parkedQueue[T any](capacity int) *spscq.Queue[T] {
	return spscq.Build[T](spscq.NewBuilder(capacity).SpinLimit(0))
}

type popResult[T any] struct {
	v   T
	err error
}

// =============================================================================
// Blocking Push / Pop
// =============================================================================

// TestPopBlocksUntilPush verifies a Pop on an empty queue parks and is
// woken with exactly the value pushed.
func TestPopBlocksUntilPush(t *testing.T) {
	skipUnderRace(t)
	q := parkedQueue[int](4)

	res := make(chan popResult[int], 1)
	go func() {
		v, err := q.Pop()
		res <- popResult[int]{v, err}
	}()

	retryWithTimeout(t, 5*time.Second, func() bool {
		return q.Stats().ConsumerParks == 1
	}, "consumer never parked")

	select {
	case r := <-res:
		t.Fatalf("Pop returned before Push: %+v", r)
	default:
	}

	if err := q.Push(42); err != nil {
		t.Fatalf("Push: %v", err)
	}

	select {
	case r := <-res:
		if r.err != nil || r.v != 42 {
			t.Fatalf("Pop: got (%d, %v), want (42, nil)", r.v, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Pop not woken by Push")
	}

	if s := q.Stats(); s.ConsumerWakeups != 1 {
		t.Fatalf("ConsumerWakeups: got %d, want 1", s.ConsumerWakeups)
	}
}

// TestPushBlocksUntilPop verifies a Push on a full queue parks and
// completes once the consumer frees the slot.
func TestPushBlocksUntilPop(t *testing.T) {
	skipUnderRace(t)
	q := parkedQueue[int](1)
	q.Push(1)

	done := make(chan error, 1)
	go func() {
		done <- q.Push(2)
	}()

	retryWithTimeout(t, 5*time.Second, func() bool {
		return q.Stats().ProducerParks == 1
	}, "producer never parked")

	v, err := q.Pop()
	if err != nil || v != 1 {
		t.Fatalf("Pop: got (%d, %v), want (1, nil)", v, err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Push: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Push not woken by Pop")
	}

	v, err = q.Pop()
	if err != nil || v != 2 {
		t.Fatalf("Pop: got (%d, %v), want (2, nil)", v, err)
	}
	if s := q.Stats(); s.ProducerWakeups != 1 {
		t.Fatalf("ProducerWakeups: got %d, want 1", s.ProducerWakeups)
	}
}

// TestCloseWakesParkedPop verifies Close releases a consumer parked on an
// empty queue with ErrClosed.
func TestCloseWakesParkedPop(t *testing.T) {
	q := parkedQueue[int](2)

	res := make(chan error, 1)
	go func() {
		_, err := q.Pop()
		res <- err
	}()

	retryWithTimeout(t, 5*time.Second, func() bool {
		return q.Stats().ConsumerParks == 1
	}, "consumer never parked")

	q.Close()

	select {
	case err := <-res:
		if !errors.Is(err, spscq.ErrClosed) {
			t.Fatalf("Pop: got %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Pop not woken by Close")
	}
}

// TestCloseWakesParkedPush verifies Close releases a producer parked on a
// full queue with ErrClosed and keeps the buffered value.
func TestCloseWakesParkedPush(t *testing.T) {
	q := parkedQueue[int](1)
	q.Push(1)

	done := make(chan error, 1)
	go func() {
		done <- q.Push(2)
	}()

	retryWithTimeout(t, 5*time.Second, func() bool {
		return q.Stats().ProducerParks == 1
	}, "producer never parked")

	q.Close()

	select {
	case err := <-done:
		if !errors.Is(err, spscq.ErrClosed) {
			t.Fatalf("Push: got %v, want ErrClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Push not woken by Close")
	}

	v, err := q.Pop()
	if err != nil || v != 1 {
		t.Fatalf("Pop: got (%d, %v), want (1, nil)", v, err)
	}
	if _, err := q.Pop(); !errors.Is(err, spscq.ErrClosed) {
		t.Fatalf("Pop after drain: got %v, want ErrClosed", err)
	}
}

// =============================================================================
// Timed Operations
// =============================================================================

// TestPopForTimeout verifies PopFor on an idle queue times out after the
// duration and leaves no stale wait registration behind.
func TestPopForTimeout(t *testing.T) {
	q := parkedQueue[int](4)

	start := time.Now()
	_, err := q.PopFor(100 * time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, spscq.ErrTimeout) {
		t.Fatalf("PopFor: got %v, want ErrTimeout", err)
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("PopFor returned after %v, want >= 100ms", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("PopFor returned after %v, want ~100ms", elapsed)
	}

	// A stale WritableBlocked tag would make this Push wake a consumer
	// that is gone.
	if err := q.Push(7); err != nil {
		t.Fatalf("Push: %v", err)
	}
	v, err := q.Pop()
	if err != nil || v != 7 {
		t.Fatalf("Pop: got (%d, %v), want (7, nil)", v, err)
	}

	s := q.Stats()
	if s.PopTimeouts != 1 || s.ConsumerParks != 1 || s.ConsumerWakeups != 0 {
		t.Fatalf("stats: got %+v", s)
	}
}

// TestPushForTimeout verifies PushFor on a full queue times out without
// storing the value.
func TestPushForTimeout(t *testing.T) {
	q := parkedQueue[int](1)
	q.Push(1)

	if err := q.PushFor(2, 50*time.Millisecond); !errors.Is(err, spscq.ErrTimeout) {
		t.Fatalf("PushFor: got %v, want ErrTimeout", err)
	}

	v, err := q.Pop()
	if err != nil || v != 1 {
		t.Fatalf("Pop: got (%d, %v), want (1, nil)", v, err)
	}
	if _, err := q.TryPop(); !errors.Is(err, spscq.ErrEmpty) {
		t.Fatalf("TryPop: got %v, want ErrEmpty", err)
	}

	s := q.Stats()
	if s.PushTimeouts != 1 || s.ProducerWakeups != 0 {
		t.Fatalf("stats: got %+v", s)
	}

	// Slot is plainly writable again.
	if err := q.PushFor(3, time.Second); err != nil {
		t.Fatalf("PushFor after timeout: %v", err)
	}
}

// TestTimedReadyPath verifies timed variants return at once when the slot
// is ready.
func TestTimedReadyPath(t *testing.T) {
	q := spscq.New[int](2)

	if err := q.PushFor(1, 0); err != nil {
		t.Fatalf("PushFor: %v", err)
	}
	if err := q.PushContext(context.Background(), 2); err != nil {
		t.Fatalf("PushContext: %v", err)
	}
	v, err := q.PopFor(0)
	if err != nil || v != 1 {
		t.Fatalf("PopFor: got (%d, %v), want (1, nil)", v, err)
	}
	v, err = q.PopContext(context.Background())
	if err != nil || v != 2 {
		t.Fatalf("PopContext: got (%d, %v), want (2, nil)", v, err)
	}
}

func TestPopContextCancel(t *testing.T) {
	q := parkedQueue[int](2)
	ctx, cancel := context.WithCancel(context.Background())

	res := make(chan error, 1)
	go func() {
		_, err := q.PopContext(ctx)
		res <- err
	}()

	retryWithTimeout(t, 5*time.Second, func() bool {
		return q.Stats().ConsumerParks == 1
	}, "consumer never parked")
	cancel()

	select {
	case err := <-res:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("PopContext: got %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("PopContext not released by cancel")
	}

	// Cancellation revoked the registration.
	q.Push(5)
	if s := q.Stats(); s.ConsumerWakeups != 0 {
		t.Fatalf("ConsumerWakeups: got %d, want 0", s.ConsumerWakeups)
	}
}

func TestPushContextDeadline(t *testing.T) {
	q := parkedQueue[int](1)
	q.Push(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := q.PushContext(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("PushContext: got %v, want context.DeadlineExceeded", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", q.Len())
	}
}

// TestTimedPopClosed verifies a closed, drained queue reports ErrClosed
// rather than waiting for the timeout.
func TestTimedPopClosed(t *testing.T) {
	q := spscq.New[int](2)
	q.Close()

	start := time.Now()
	if _, err := q.PopFor(time.Minute); !errors.Is(err, spscq.ErrClosed) {
		t.Fatalf("PopFor: got %v, want ErrClosed", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("PopFor on closed queue waited")
	}
	if err := q.PushFor(1, time.Minute); !errors.Is(err, spscq.ErrClosed) {
		t.Fatalf("PushFor: got %v, want ErrClosed", err)
	}
}

// =============================================================================
// WaitUntilEmpty
// =============================================================================

func TestWaitUntilEmpty(t *testing.T) {
	q := spscq.New[int](4)
	for i := range 3 {
		q.Push(i)
	}

	done := make(chan error, 1)
	go func() {
		done <- q.WaitUntilEmpty(context.Background())
	}()

	for range 3 {
		if _, err := q.Pop(); err != nil {
			t.Fatalf("Pop: %v", err)
		}
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitUntilEmpty: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("WaitUntilEmpty did not return after drain")
	}

	// Already empty
	if err := q.WaitUntilEmpty(context.Background()); err != nil {
		t.Fatalf("WaitUntilEmpty on empty: %v", err)
	}
}

func TestWaitUntilEmptyCancel(t *testing.T) {
	q := spscq.New[int](2)
	q.Push(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := q.WaitUntilEmpty(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WaitUntilEmpty: got %v, want context.DeadlineExceeded", err)
	}
}
