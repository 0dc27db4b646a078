// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fillq provides a lock-free append/drain queue.
//
// Many producers Push concurrently; any goroutine may Chop, which removes
// the entire current content in one atomic step and hands it over as a
// lazily consumed, single-pass sequence. Use it where values are collected
// in bulk rather than dequeued one at a time and where retrieval order does
// not matter.
//
//   - FillQueue: lock-free Push, atomic Chop
//   - AsyncFillQueue: FillQueue plus "wait until non-empty, then chop"
//   - Notify: wake any number of listeners at once
//
// # Quick Start
//
// The zero value is ready to use, including at package scope:
//
//	var pending fillq.FillQueue[Event]
//
//	// Producers (any number of goroutines)
//	pending.Push(ev)
//
//	// Consumer: take everything pushed so far
//	for ev := range pending.Chop().All() {
//	    handle(ev)
//	}
//
// # Ordering
//
// Push links each node in front of the previous head, so a chopped batch
// yields values newest first (LIFO). Chop is a single atomic exchange: a
// concurrent Push lands either in the chopped batch or in the next one,
// never both and never neither. No order is promised across batches.
//
//	q.Push(1)
//	q.Push(2)
//	q.Push(3)
//	q.Chop().Collect() // [3 2 1]
//
// # Drain Sequence
//
// Chop returns a [ChopIter] that exclusively owns the detached nodes. Each
// step yields one value and releases its node to the allocator. Stopping
// early is fine:
//
//	it := q.Chop()
//	first, ok := it.Next()
//	it.Close() // releases the rest
//
// Breaking out of a range over All closes the iterator automatically. An
// iterator that is simply dropped has its remaining nodes released when it
// is garbage collected, so partial consumption never leaks allocator nodes.
//
// # Waiting for Values
//
// AsyncFillQueue lets one consumer suspend until a Push makes the queue
// non-empty:
//
//	q := fillq.NewAsyncFillQueue[Job](nil)
//
//	go func() {
//	    for {
//	        batch, err := q.Wait(ctx)
//	        if err != nil {
//	            return // ctx done, or superseded by another waiter
//	        }
//	        for j := range batch.All() {
//	            j.Run()
//	        }
//	    }
//	}()
//
// Wait is built on Poll, which never blocks and works with any scheduler.
// Poll either returns a non-empty batch or registers a [Waiter] and returns
// [ErrWouldBlock]; the waiter's [Waker] is invoked once a later Push makes
// the queue non-empty:
//
//	w := fillq.NewWaiter(fillq.WakerFunc(func() { scheduler.Ready(task) }))
//	batch, err := q.Poll(w)
//	if fillq.IsWouldBlock(err) {
//	    return // suspended; Ready(task) will be called
//	}
//
// Only one waiter is tracked. A newer registration supersedes the pending
// one, which is woken and (in Wait) returns [ErrSuperseded]. Use [Notify]
// for broadcast wake-ups.
//
// # Allocators
//
// Nodes come from an [Allocator]. The default is the Go heap. [Slab]
// preallocates a fixed number of nodes and fails Push with [ErrAllocFailed]
// when they are exhausted; [Counting] wraps any allocator with accounting:
//
//	a := fillq.NewCounting[int](fillq.NewSlab[int](1024))
//	q := fillq.NewFillQueue[int](a)
//
// Or with the builder:
//
//	q := fillq.Build[int](fillq.New().Slab(1024).Counting())
//
// The allocator never changes the push/chop protocol.
//
// # Error Handling
//
// Push fails only on allocation failure. The returned [*AllocError] carries
// the rejected value back and unwraps to the allocator's error:
//
//	err := q.Push(v)
//	var ae *fillq.AllocError[int]
//	if errors.As(err, &ae) {
//	    retryLater(ae.Value)
//	}
//
// Poll returns [ErrWouldBlock], sourced from [code.hybscloud.com/iox], as a
// control flow signal:
//
//	fillq.IsWouldBlock(err)  // true if registered and waiting
//	fillq.IsSemantic(err)    // true if control flow signal
//	fillq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Snapshots
//
// IsEmpty and Waiting read shared state without synchronization against
// concurrent writers. The answer was true at some instant during the call
// and may be stale by the time the caller looks at it. Length is
// intentionally not provided.
//
// # Thread Safety
//
// Push, Chop, IsEmpty, Poll, Cancel and Wait are safe for concurrent use.
// A ChopIter belongs to the goroutine that holds it and needs no
// synchronization.
//
// # Race Detection
//
// The queue head and the waiter slot use sync/atomic and are fully visible
// to the race detector. The [Slab] free list and allocation counters use
// [code.hybscloud.com/atomix] ordered atomics, which the detector cannot
// observe; concurrent tests of those are excluded via RaceEnabled.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package fillq
