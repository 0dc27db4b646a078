// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// Slab is a fixed-capacity node allocator.
//
// All nodes are preallocated in one contiguous array. Free cells are
// tracked by a lock-free ring of indices, so Allocate and Deallocate never
// take a lock and never touch the Go allocator after construction.
//
// When every node is in use, Allocate fails with [ErrAllocFailed] and the
// queue's Push reports it to the caller. This bounds memory, not the queue:
// the queue itself has no notion of capacity.
//
// Memory: capacity × NodeLayout[T]().Size plus 16 bytes per free-list slot
type Slab[T any] struct {
	nodes    []Node[T]
	free     *freeList
	allocs   atomix.Uint64
	frees    atomix.Uint64
	failures atomix.Uint64
}

// SlabStats is a snapshot of a Slab's counters.
type SlabStats struct {
	Capacity int
	Allocs   uint64
	Frees    uint64
	Failures uint64
	InUse    int64
}

// NewSlab creates a slab holding capacity nodes.
// Panics if capacity < 1.
func NewSlab[T any](capacity int) *Slab[T] {
	if capacity < 1 {
		panic("fillq: slab capacity must be >= 1")
	}
	s := &Slab[T]{
		nodes: make([]Node[T], capacity),
		free:  newFreeList(capacity),
	}
	for i := range capacity {
		if err := s.free.put(uint64(i)); err != nil {
			panic("fillq: slab free list undersized")
		}
	}
	return s
}

// Allocate takes a free node.
// Returns ErrAllocFailed when all nodes are in use.
func (s *Slab[T]) Allocate() (*Node[T], error) {
	idx, err := s.free.take()
	if err != nil {
		s.failures.AddAcqRel(1)
		return nil, ErrAllocFailed
	}
	s.allocs.AddAcqRel(1)
	return &s.nodes[idx], nil
}

// Deallocate returns n to the slab.
// Panics if n was not allocated from this slab.
// Releasing the same node twice is a caller bug and corrupts the slab.
func (s *Slab[T]) Deallocate(n *Node[T]) {
	idx := s.index(n)
	s.frees.AddAcqRel(1)
	if err := s.free.put(idx); err != nil {
		panic("fillq: slab free list overflow")
	}
}

// Cap returns the number of nodes the slab holds.
func (s *Slab[T]) Cap() int {
	return len(s.nodes)
}

// Stats returns the slab's counters. Under concurrent use the fields are
// read independently and may not be mutually consistent.
func (s *Slab[T]) Stats() SlabStats {
	frees := s.frees.LoadAcquire()
	allocs := s.allocs.LoadAcquire()
	return SlabStats{
		Capacity: len(s.nodes),
		Allocs:   allocs,
		Frees:    frees,
		Failures: s.failures.LoadAcquire(),
		InUse:    int64(allocs) - int64(frees),
	}
}

// index converts a node pointer back to its slot in the slab.
func (s *Slab[T]) index(n *Node[T]) uint64 {
	size := unsafe.Sizeof(*n)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(s.nodes)))
	p := uintptr(unsafe.Pointer(n))
	if p < base || p >= base+uintptr(len(s.nodes))*size || (p-base)%size != 0 {
		panic("fillq: node not owned by slab")
	}
	return uint64((p - base) / size)
}
