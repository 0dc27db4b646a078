// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import "code.hybscloud.com/atomix"

// Counting wraps an allocator and keeps allocation accounting.
//
// Every successful Allocate, every Deallocate and every failed Allocate is
// counted. After a push/chop/drain cycle has been fully drained or closed,
// Allocs equals Frees: Live reaching zero is the leak check.
//
// Example:
//
//	a := fillq.NewCounting[int](nil)
//	q := fillq.NewFillQueue[int](a)
//	q.Push(1)
//	q.Chop().Close()
//	fmt.Println(a.Live()) // 0
type Counting[T any] struct {
	inner    Allocator[T]
	size     uint64
	allocs   atomix.Uint64
	frees    atomix.Uint64
	failures atomix.Uint64
}

// NewCounting wraps inner. A nil inner counts heap allocations.
func NewCounting[T any](inner Allocator[T]) *Counting[T] {
	if inner == nil {
		inner = Heap[T]{}
	}
	return &Counting[T]{
		inner: inner,
		size:  uint64(NodeLayout[T]().Size),
	}
}

// Allocate delegates to the wrapped allocator.
func (c *Counting[T]) Allocate() (*Node[T], error) {
	n, err := c.inner.Allocate()
	if err != nil {
		c.failures.AddAcqRel(1)
		return nil, err
	}
	c.allocs.AddAcqRel(1)
	return n, nil
}

// Deallocate delegates to the wrapped allocator.
func (c *Counting[T]) Deallocate(n *Node[T]) {
	c.frees.AddAcqRel(1)
	c.inner.Deallocate(n)
}

// Allocs returns the number of successful allocations.
func (c *Counting[T]) Allocs() uint64 { return c.allocs.LoadAcquire() }

// Frees returns the number of deallocations.
func (c *Counting[T]) Frees() uint64 { return c.frees.LoadAcquire() }

// Failures returns the number of failed allocations.
func (c *Counting[T]) Failures() uint64 { return c.failures.LoadAcquire() }

// Live returns the number of nodes allocated and not yet released.
func (c *Counting[T]) Live() int64 {
	frees := c.frees.LoadAcquire()
	return int64(c.allocs.LoadAcquire()) - int64(frees)
}

// LiveBytes returns Live multiplied by the node size.
func (c *Counting[T]) LiveBytes() int64 {
	return c.Live() * int64(c.size)
}

// Inner returns the wrapped allocator.
func (c *Counting[T]) Inner() Allocator[T] {
	return c.inner
}
