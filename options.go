// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import "unsafe"

// Options configures node allocation for queue creation.
type Options struct {
	// Node source
	slab int // Slab capacity, 0 selects the Go heap

	// Accounting
	counting bool // Wrap the allocator in Counting
}

// Builder creates queues with fluent configuration.
//
// Builder selects the node allocator; the push/chop protocol is the same
// for every configuration.
//
// Example:
//
//	// Heap-backed queue (same as the zero value)
//	q := fillq.Build[Event](fillq.New())
//
//	// At most 4096 pending values, preallocated
//	q := fillq.Build[Event](fillq.New().Slab(4096))
//
//	// Async bridge with allocation accounting
//	q := fillq.BuildAsync[*Request](fillq.New().Counting())
type Builder struct {
	opts Options
}

// New creates a queue builder with the default configuration: nodes on
// the Go heap, no accounting.
func New() *Builder {
	return &Builder{}
}

// Slab draws nodes from a preallocated [Slab] of the given capacity.
// Push fails with ErrAllocFailed while capacity nodes are pending.
//
// Panics if capacity < 1.
func (b *Builder) Slab(capacity int) *Builder {
	if capacity < 1 {
		panic("fillq: slab capacity must be >= 1")
	}
	b.opts.slab = capacity
	return b
}

// Counting wraps the selected allocator in a [Counting] allocator.
func (b *Builder) Counting() *Builder {
	b.opts.counting = true
	return b
}

// Build creates a FillQueue with the configured allocator.
func Build[T any](b *Builder) *FillQueue[T] {
	return NewFillQueue(BuildAllocator[T](b))
}

// BuildAsync creates an AsyncFillQueue with the configured allocator.
func BuildAsync[T any](b *Builder) *AsyncFillQueue[T] {
	return NewAsyncFillQueue(BuildAllocator[T](b))
}

// BuildAllocator creates the configured allocator on its own, for sharing
// between queues of the same element type.
//
// Returns nil for the default configuration, which queues read as the Go
// heap.
func BuildAllocator[T any](b *Builder) Allocator[T] {
	var a Allocator[T]
	if b.opts.slab > 0 {
		a = NewSlab[T](b.opts.slab)
	}
	if b.opts.counting {
		a = NewCounting(a)
	}
	return a
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
