// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spscq

// DefaultSpinLimit is the number of spin iterations a blocking operation
// performs on a not-ready slot before it registers itself and parks.
const DefaultSpinLimit = 64

// Options configures queue creation.
type Options struct {
	// Capacity (exact, not rounded)
	capacity int

	// Spin iterations before parking; 0 parks immediately
	spinLimit int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	q := spscq.Build[Event](spscq.NewBuilder(1024).SpinLimit(128))
//
//	// Park as soon as the peer is not ready
//	q := spscq.Build[Event](spscq.NewBuilder(1024).SpinLimit(0))
type Builder struct {
	opts Options
}

// NewBuilder creates a queue builder with the given capacity.
//
// Capacity is used as given. Power-of-2 capacities index the ring with a
// mask, other capacities with a modulo.
//
// Panics if capacity < 1.
func NewBuilder(capacity int) *Builder {
	if capacity < 1 {
		panic("spscq: capacity must be >= 1")
	}
	return &Builder{opts: Options{capacity: capacity, spinLimit: DefaultSpinLimit}}
}

// SpinLimit sets how many times a blocking Push or Pop re-checks a
// not-ready slot before parking. Negative values are treated as 0.
func (b *Builder) SpinLimit(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.opts.spinLimit = n
	return b
}

// Build creates a Queue[T] from the builder configuration.
func Build[T any](b *Builder) *Queue[T] {
	return newQueue[T](b.opts)
}

// isPow2 reports whether n is a power of 2.
func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
