// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For AsyncFillQueue.Poll: the queue is empty and the waiter is now
// registered; it will be woken by a later Push.
//
// ErrWouldBlock is a control flow signal, not a failure.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrAllocFailed indicates the node allocator could not supply a node.
//
// Push returns it wrapped in an [*AllocError] that carries the rejected
// value back to the caller. The queue is left unchanged.
var ErrAllocFailed = errors.New("fillq: node allocation failed")

// ErrSuperseded is returned by AsyncFillQueue.Wait when a newer waiter
// registered on the same queue and displaced this one.
//
// Only one waiter is tracked at a time; the most recent registration wins.
// A superseded waiter is treated as cancelled. The queue's content is
// unaffected and remains available to any later Chop.
var ErrSuperseded = errors.New("fillq: waiter superseded by a newer registration")

// AllocError reports a failed Push and returns the value that was not
// inserted.
//
// Example:
//
//	var ae *fillq.AllocError[Event]
//	if errors.As(q.Push(ev), &ae) {
//	    retryLater(ae.Value)
//	}
type AllocError[T any] struct {
	Value T
	Err   error
}

func (e *AllocError[T]) Error() string {
	return fmt.Sprintf("fillq: push rejected: %v", e.Err)
}

// Unwrap returns the allocator's error.
func (e *AllocError[T]) Unwrap() error {
	return e.Err
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// IsAllocFailed reports whether err is, or wraps, ErrAllocFailed.
func IsAllocFailed(err error) bool {
	return errors.Is(err, ErrAllocFailed)
}
