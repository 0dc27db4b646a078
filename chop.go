// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"iter"
	"runtime"
)

// ChopIter is the drain sequence returned by Chop.
//
// It exclusively owns the chain detached from the queue and walks it
// without any synchronization. Each step yields one value and hands its
// node back to the allocator. The sequence is finite and single-pass.
//
// Stopping early is allowed: Close (or breaking out of All) releases every
// remaining node. An iterator that is dropped without either still has its
// nodes released once it is garbage collected.
//
// A ChopIter must be used by one goroutine at a time.
type ChopIter[T any] struct {
	c       *chain[T]
	cleanup runtime.Cleanup
	armed   bool
}

// chain is kept apart from ChopIter so the GC cleanup can reach the
// cursor without keeping the iterator alive.
type chain[T any] struct {
	cursor *Node[T]
	alloc  Allocator[T]
}

func newChopIter[T any](head *Node[T], alloc Allocator[T]) *ChopIter[T] {
	if head == nil {
		return &ChopIter[T]{}
	}
	it := &ChopIter[T]{c: &chain[T]{cursor: head, alloc: alloc}}
	if !isHeap(alloc) {
		it.cleanup = runtime.AddCleanup(it, (*chain[T]).release, it.c)
		it.armed = true
	}
	return it
}

// Next yields the next value. It returns (zero-value, false) once the
// sequence is exhausted, and keeps doing so on later calls.
func (it *ChopIter[T]) Next() (T, bool) {
	c := it.c
	if c == nil || c.cursor == nil {
		var zero T
		return zero, false
	}

	n := c.cursor
	v := n.value
	c.cursor = n.next
	c.free(n)
	if c.cursor == nil {
		it.disarm()
	}
	runtime.KeepAlive(it)
	return v, true
}

// Close releases every node not yet yielded. The values are discarded.
// Close is idempotent and safe on an exhausted iterator.
func (it *ChopIter[T]) Close() {
	if it.c != nil {
		it.c.release()
	}
	it.disarm()
	runtime.KeepAlive(it)
}

// All returns the remaining values as a range-over-func sequence.
// Breaking out of the loop releases whatever was not consumed.
//
//	for v := range q.Chop().All() {
//	    if done(v) {
//	        break
//	    }
//	}
func (it *ChopIter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer it.Close()
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Count consumes the rest of the sequence and returns the number of values.
func (it *ChopIter[T]) Count() int {
	n := 0
	for {
		if _, ok := it.Next(); !ok {
			return n
		}
		n++
	}
}

// Collect consumes the rest of the sequence into a slice, newest first.
func (it *ChopIter[T]) Collect() []T {
	var out []T
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func (it *ChopIter[T]) empty() bool {
	return it.c == nil || it.c.cursor == nil
}

func (it *ChopIter[T]) disarm() {
	if it.armed {
		it.cleanup.Stop()
		it.armed = false
	}
}

// release hands every remaining node back to the allocator.
func (c *chain[T]) release() {
	for c.cursor != nil {
		n := c.cursor
		c.cursor = n.next
		c.free(n)
	}
}

func (c *chain[T]) free(n *Node[T]) {
	n.reset()
	if c.alloc != nil {
		c.alloc.Deallocate(n)
	}
}
