// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq

import "context"

// Notify wakes any number of listeners at once.
//
// Each listener pushes a one-shot channel onto an internal FillQueue;
// NotifyAll chops the queue and closes every channel it took. Listeners
// that subscribe after the chop wait for the next NotifyAll.
//
// Where AsyncFillQueue tracks a single waiter, Notify is the broadcast
// counterpart for many.
//
// The zero value is ready to use.
type Notify struct {
	listeners FillQueue[chan struct{}]
}

// Subscribe returns a channel that is closed by the next NotifyAll.
func (n *Notify) Subscribe() <-chan struct{} {
	ch := make(chan struct{})
	n.listeners.MustPush(ch)
	return ch
}

// Listen blocks until the next NotifyAll or until ctx is done.
//
// A cancelled listener's channel stays queued until the next NotifyAll
// releases it.
//
// Panics if ctx is nil.
func (n *Notify) Listen(ctx context.Context) error {
	if ctx == nil {
		panic("fillq: nil context")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-n.Subscribe():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotifyAll wakes every current listener and returns how many there were.
func (n *Notify) NotifyAll() int {
	woken := 0
	for ch := range n.listeners.Chop().All() {
		close(ch)
		woken++
	}
	return woken
}

// Idle reports whether no listener was subscribed at some instant during
// the call. The result may be stale.
func (n *Notify) Idle() bool {
	return n.listeners.IsEmpty()
}
