// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

// Queue is the combined producer-chopper interface of a fill queue.
//
// Both [FillQueue] and [AsyncFillQueue] implement it.
//
// The interface intentionally excludes length: a fill queue does not track
// one, and any count would be stale against concurrent Push and Chop.
// Count values while draining instead:
//
//	n := q.Chop().Count()
type Queue[T any] interface {
	Producer[T]
	Chopper[T]

	// IsEmpty reports a possibly stale snapshot of emptiness.
	IsEmpty() bool
}

// Producer is the interface for inserting elements.
type Producer[T any] interface {
	// Push inserts v (multiple producers safe, never blocks).
	// Returns an *AllocError wrapping ErrAllocFailed if no node could be
	// allocated; the queue is then unchanged.
	Push(v T) error
}

// Chopper is the interface for bulk removal.
type Chopper[T any] interface {
	// Chop atomically detaches the whole content as one drain sequence.
	// The sequence may be empty. Chop never blocks and never fails.
	Chop() *ChopIter[T]
}

var (
	_ Queue[int] = (*FillQueue[int])(nil)
	_ Queue[int] = (*AsyncFillQueue[int])(nil)

	_ Allocator[int] = Heap[int]{}
	_ Allocator[int] = (*Slab[int])(nil)
	_ Allocator[int] = (*Counting[int])(nil)
)
