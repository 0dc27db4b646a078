// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"iter"
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// FillQueue is a lock-free multi-producer append/drain queue.
//
// Any number of goroutines may Push concurrently. Any goroutine may Chop,
// which atomically detaches the entire current content and returns it as a
// single-pass [ChopIter]. Values come out newest first (LIFO) within one
// chopped batch; no order is promised across batches.
//
// The zero value is an empty queue backed by the Go heap and is ready to
// use, so a FillQueue can be declared at package scope without any
// initialization:
//
//	var events fillq.FillQueue[Event]
//
// A FillQueue must not be copied after first use.
//
// Memory: one node per pending value (see [NodeLayout])
type FillQueue[T any] struct {
	head  atomic.Pointer[Node[T]] // Newest node, nil when empty
	alloc Allocator[T]            // nil selects Heap
}

// NewFillQueue creates an empty queue whose nodes come from alloc.
// A nil alloc selects the Go heap, the same as the zero value.
func NewFillQueue[T any](alloc Allocator[T]) *FillQueue[T] {
	return &FillQueue[T]{alloc: alloc}
}

// Allocator returns the allocator nodes are drawn from.
func (q *FillQueue[T]) Allocator() Allocator[T] {
	if q.alloc == nil {
		return Heap[T]{}
	}
	return q.alloc
}

// Push inserts v (multiple producers safe, lock-free).
//
// Push never blocks. It fails only when the allocator cannot supply a node,
// in which case it returns an [*AllocError] holding v and the queue is left
// exactly as it was.
func (q *FillQueue[T]) Push(v T) error {
	_, err := q.push(v)
	return err
}

// MustPush inserts v and panics if the allocator fails.
func (q *FillQueue[T]) MustPush(v T) {
	if err := q.Push(v); err != nil {
		panic(err)
	}
}

// PushSeq pushes every value of seq in order and returns how many were
// inserted. It stops at the first allocation failure and returns that error;
// values already pushed stay in the queue.
func (q *FillQueue[T]) PushSeq(seq iter.Seq[T]) (int, error) {
	pushed := 0
	for v := range seq {
		if err := q.Push(v); err != nil {
			return pushed, err
		}
		pushed++
	}
	return pushed, nil
}

// push links a new node for v and reports whether the queue was empty
// immediately before the link succeeded.
func (q *FillQueue[T]) push(v T) (wasEmpty bool, err error) {
	n, err := allocate(q.alloc)
	if err != nil {
		return false, &AllocError[T]{Value: v, Err: err}
	}
	n.value = v

	sw := spin.Wait{}
	for {
		head := q.head.Load()
		n.next = head
		if q.head.CompareAndSwap(head, n) {
			return head == nil, nil
		}
		sw.Once()
	}
}

// Chop atomically takes the entire content of the queue.
//
// The returned iterator owns the detached chain exclusively. A Push racing
// with Chop lands either in this chain or in the fresh chain left behind,
// never both. Chop never retries and never fails; on an empty queue it
// returns an empty iterator.
func (q *FillQueue[T]) Chop() *ChopIter[T] {
	return newChopIter(q.head.Swap(nil), q.alloc)
}

// IsEmpty reports whether the queue held no values at some instant during
// the call. The result may be stale by the time the caller observes it.
func (q *FillQueue[T]) IsEmpty() bool {
	return q.head.Load() == nil
}
