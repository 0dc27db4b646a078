// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"context"
	"iter"
	"sync/atomic"
)

// Waker is an opaque wake handle. Wake resumes whatever suspended consumer
// the handle stands for; the queue does not know how.
//
// Wake may be called from any goroutine, including a pushing producer, so
// it must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the Waker interface.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// Waiter is a registration record for AsyncFillQueue.Poll.
//
// A Waiter may be reused across polls and across queues, but it must not be
// registered on two queues at once.
type Waiter struct {
	waker      Waker
	superseded atomic.Bool
}

// NewWaiter creates a waiter that invokes w when woken.
// Panics if w is nil.
func NewWaiter(w Waker) *Waiter {
	if w == nil {
		panic("fillq: nil waker")
	}
	return &Waiter{waker: w}
}

// Superseded reports whether the waiter's last registration was displaced
// by a newer waiter before any producer took it.
func (w *Waiter) Superseded() bool {
	return w.superseded.Load()
}

// AsyncFillQueue is a FillQueue with a "wait until non-empty, then chop"
// bridge for a suspended consumer.
//
// The bridge is a two-state machine:
//
//	Idle     no waiter registered
//	Waiting  one waiter registered; the queue was empty when it registered
//
// A consumer polls: if the queue holds values it chops them immediately.
// Otherwise it registers its [Waiter] and suspends. The Push that moves the
// queue from empty to non-empty takes the registration and wakes it exactly
// once, returning the bridge to Idle; the woken consumer then polls again.
//
// At most one waiter is tracked. When a second waiter registers while one is
// pending, the newer one wins: the displaced waiter is marked superseded and
// woken once so it can observe that (Wait returns [ErrSuperseded]). It is
// treated as cancelled. Registrations are never queued; use [Notify] to wake
// any number of listeners.
//
// Wake delivery is at-least-once per empty to non-empty transition observed
// while a waiter is registered. A consumer may see a spurious wake and must
// simply poll again.
//
// The zero value is an empty, Idle queue backed by the Go heap, ready to use.
//
// An AsyncFillQueue must not be copied after first use.
type AsyncFillQueue[T any] struct {
	queue  FillQueue[T]
	_      pad
	waiter atomic.Pointer[Waiter]
	_      padPtr
}

// NewAsyncFillQueue creates an empty queue whose nodes come from alloc.
// A nil alloc selects the Go heap.
func NewAsyncFillQueue[T any](alloc Allocator[T]) *AsyncFillQueue[T] {
	q := &AsyncFillQueue[T]{}
	q.queue.alloc = alloc
	return q
}

// Allocator returns the allocator nodes are drawn from.
func (q *AsyncFillQueue[T]) Allocator() Allocator[T] {
	return q.queue.Allocator()
}

// Push inserts v (multiple producers safe, lock-free) and wakes the
// registered waiter if this push made the queue non-empty.
//
// On allocation failure Push returns an [*AllocError] holding v; the queue
// and the waiter slot are left unchanged.
func (q *AsyncFillQueue[T]) Push(v T) error {
	wasEmpty, err := q.queue.push(v)
	if err != nil {
		return err
	}
	if wasEmpty {
		q.wake()
	}
	return nil
}

// MustPush inserts v and panics if the allocator fails.
func (q *AsyncFillQueue[T]) MustPush(v T) {
	if err := q.Push(v); err != nil {
		panic(err)
	}
}

// PushSeq pushes every value of seq in order and returns how many were
// inserted. It stops at the first allocation failure.
func (q *AsyncFillQueue[T]) PushSeq(seq iter.Seq[T]) (int, error) {
	pushed := 0
	for v := range seq {
		if err := q.Push(v); err != nil {
			return pushed, err
		}
		pushed++
	}
	return pushed, nil
}

// Chop atomically takes the entire content of the queue.
// It does not touch the waiter slot.
func (q *AsyncFillQueue[T]) Chop() *ChopIter[T] {
	return q.queue.Chop()
}

// IsEmpty reports whether the queue held no values at some instant during
// the call. The result may be stale by the time the caller observes it.
func (q *AsyncFillQueue[T]) IsEmpty() bool {
	return q.queue.IsEmpty()
}

// Waiting reports whether a waiter was registered at some instant during
// the call. Like IsEmpty, the result may be stale.
func (q *AsyncFillQueue[T]) Waiting() bool {
	return q.waiter.Load() != nil
}

// Poll is the non-blocking step of the wait protocol.
//
// If the queue holds values, Poll chops them and returns a non-empty
// iterator. Otherwise it registers w and returns (nil, ErrWouldBlock); w's
// waker is invoked once a later Push makes the queue non-empty, after which
// the caller polls again. Registering w displaces any other pending waiter.
//
// Poll never returns an empty iterator.
func (q *AsyncFillQueue[T]) Poll(w *Waiter) (*ChopIter[T], error) {
	for {
		if !q.queue.IsEmpty() {
			if it := q.queue.Chop(); !it.empty() {
				return it, nil
			}
		}

		q.register(w)

		// A push that landed before the registration saw no waiter.
		if q.queue.IsEmpty() {
			return nil, ErrWouldBlock
		}
		if !q.waiter.CompareAndSwap(w, nil) && w.Superseded() {
			// The newer waiter owns the slot; re-registering would
			// displace it in turn.
			return nil, ErrWouldBlock
		}
	}
}

// Cancel withdraws w if it is still registered and reports whether it was.
//
// After Cancel returns, no later Push invokes w's waker for that
// registration. A wake that already fired is not undone; the values that
// triggered it stay in the queue for any later Chop.
func (q *AsyncFillQueue[T]) Cancel(w *Waiter) bool {
	return q.waiter.CompareAndSwap(w, nil)
}

// Wait blocks until the queue is non-empty, then chops it.
//
// Wait returns ctx.Err() if ctx is done first, after withdrawing its
// registration, and [ErrSuperseded] if a newer waiter displaced it. In both
// cases no value is lost: anything pushed stays in the queue.
//
// Panics if ctx is nil.
func (q *AsyncFillQueue[T]) Wait(ctx context.Context) (*ChopIter[T], error) {
	if ctx == nil {
		panic("fillq: nil context")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chanWaker, 1)
	w := NewWaiter(ch)
	for {
		it, err := q.Poll(w)
		if err == nil {
			return it, nil
		}

		select {
		case <-ctx.Done():
			q.Cancel(w)
			return nil, ctx.Err()
		case <-ch:
			if w.Superseded() {
				return nil, ErrSuperseded
			}
		}
	}
}

// register installs w in the waiter slot, displacing any previous waiter.
func (q *AsyncFillQueue[T]) register(w *Waiter) {
	w.superseded.Store(false)
	old := q.waiter.Swap(w)
	if old != nil && old != w {
		old.superseded.Store(true)
		old.waker.Wake()
	}
}

// wake takes the registered waiter, if any, and invokes it.
func (q *AsyncFillQueue[T]) wake() {
	if q.waiter.Load() == nil {
		return
	}
	if w := q.waiter.Swap(nil); w != nil {
		w.waker.Wake()
	}
}

// chanWaker signals a buffered channel without blocking.
type chanWaker chan struct{}

func (c chanWaker) Wake() {
	select {
	case c <- struct{}{}:
	default:
	}
}
