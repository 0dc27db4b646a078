// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import "unsafe"

// Node is the storage cell for one pushed value.
//
// Nodes are produced by an [Allocator] and linked newest-to-oldest by Push.
// A node is owned either by the queue's head chain or by exactly one
// [ChopIter]; it is handed back to its allocator exactly once, when the
// iterator yields or releases it.
//
// Node fields are private. Allocators only create and recycle nodes.
type Node[T any] struct {
	next  *Node[T]
	value T
}

// reset clears the node so a recycled cell retains no references.
func (n *Node[T]) reset() {
	var zero T
	n.value = zero
	n.next = nil
}

// Layout describes the memory footprint of a node.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NodeLayout returns the size and alignment of Node[T].
func NodeLayout[T any]() Layout {
	var n Node[T]
	return Layout{
		Size:  unsafe.Sizeof(n),
		Align: unsafe.Alignof(n),
	}
}
