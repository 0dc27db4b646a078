// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import "errors"

// Allocator supplies and reclaims node storage for a queue.
//
// The push/chop protocol is identical for every allocator; an allocator
// only decides where node memory comes from. Implementations must be safe
// for concurrent use: Allocate is called from any pushing goroutine and
// Deallocate from whichever goroutine drains a chopped chain.
//
// Allocate returns an error (conventionally wrapping [ErrAllocFailed]) when
// no node can be supplied. Deallocate receives each node exactly once, after
// its value has been cleared.
type Allocator[T any] interface {
	Allocate() (*Node[T], error)
	Deallocate(n *Node[T])
}

// Heap allocates nodes on the Go heap.
//
// Heap never fails and Deallocate is a no-op: the garbage collector
// reclaims released nodes. It is the allocator used by the zero value of
// FillQueue.
type Heap[T any] struct{}

// Allocate returns a fresh node.
func (Heap[T]) Allocate() (*Node[T], error) {
	return new(Node[T]), nil
}

// Deallocate does nothing.
func (Heap[T]) Deallocate(*Node[T]) {}

// allocate draws a node from a, falling back to the heap when a is nil.
// Errors that do not already identify as ErrAllocFailed are joined with it.
func allocate[T any](a Allocator[T]) (*Node[T], error) {
	if a == nil {
		return new(Node[T]), nil
	}
	n, err := a.Allocate()
	if err != nil {
		if !errors.Is(err, ErrAllocFailed) {
			err = errors.Join(ErrAllocFailed, err)
		}
		return nil, err
	}
	if n == nil {
		return nil, ErrAllocFailed
	}
	return n, nil
}

// isHeap reports whether releasing nodes to a has no effect.
func isHeap[T any](a Allocator[T]) bool {
	if a == nil {
		return true
	}
	_, ok := a.(Heap[T])
	return ok
}
