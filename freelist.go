// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// freeList is a CAS-based bounded MPMC ring of slot indices.
//
// Uses per-slot sequence numbers, which give full ABA safety: an index can
// be returned and handed out again any number of times while other
// goroutines race on the same slot.
//
// Memory: n slots (16 bytes per slot) for capacity n rounded to a power of 2
type freeList struct {
	_        pad
	tail     atomix.Uint64 // Producer index
	_        pad
	head     atomix.Uint64 // Consumer index
	_        pad
	buffer   []freeListSlot
	mask     uint64
	capacity uint64
}

type freeListSlot struct {
	seq atomix.Uint64
	idx atomix.Uint64
}

// newFreeList creates a free list able to hold capacity indices.
// The list starts empty.
func newFreeList(capacity int) *freeList {
	n := uint64(roundToPow2(capacity))
	l := &freeList{
		buffer:   make([]freeListSlot, n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		l.buffer[i].seq.StoreRelaxed(i)
	}
	return l
}

// put returns idx to the list.
// Returns ErrWouldBlock if the list is full.
func (l *freeList) put(idx uint64) error {
	sw := spin.Wait{}
	for {
		tail := l.tail.LoadAcquire()
		slot := &l.buffer[tail&l.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if l.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.idx.StoreRelaxed(idx)
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// take removes an index from the list.
// Returns (0, ErrWouldBlock) if the list is empty.
func (l *freeList) take() (uint64, error) {
	sw := spin.Wait{}
	for {
		head := l.head.LoadAcquire()
		slot := &l.buffer[head&l.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if l.head.CompareAndSwapAcqRel(head, head+1) {
				idx := slot.idx.LoadRelaxed()
				slot.seq.StoreRelease(head + l.capacity)
				return idx, nil
			}
		} else if diff < 0 {
			return 0, ErrWouldBlock
		}
		sw.Once()
	}
}
