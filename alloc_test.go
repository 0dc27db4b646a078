// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fillq_test

import (
	"errors"
	"runtime"
	"slices"
	"testing"
	"time"

	"code.hybscloud.com/fillq"
	"code.hybscloud.com/iox"
)

// failAt is an allocator that fails its nth call and succeeds otherwise.
type failAt[T any] struct {
	inner fillq.Allocator[T]
	n     int
	calls int
}

var errInjected = errors.New("injected allocation failure")

func (a *failAt[T]) Allocate() (*fillq.Node[T], error) {
	a.calls++
	if a.calls == a.n {
		return nil, errInjected
	}
	return a.inner.Allocate()
}

func (a *failAt[T]) Deallocate(n *fillq.Node[T]) {
	a.inner.Deallocate(n)
}

// =============================================================================
// Allocation Accounting
// =============================================================================

// TestCountingFullDrain tests that a full push/chop/drain cycle releases
// every node it allocated.
func TestCountingFullDrain(t *testing.T) {
	a := fillq.NewCounting[int](nil)
	q := fillq.NewFillQueue[int](a)

	for i := range 100 {
		q.MustPush(i)
	}
	if a.Allocs() != 100 || a.Live() != 100 {
		t.Fatalf("after push: allocs=%d live=%d, want 100/100", a.Allocs(), a.Live())
	}
	if n := q.Chop().Count(); n != 100 {
		t.Fatalf("Count: got %d, want 100", n)
	}
	if a.Frees() != a.Allocs() {
		t.Fatalf("after drain: frees=%d allocs=%d", a.Frees(), a.Allocs())
	}
	if a.LiveBytes() != 0 {
		t.Fatalf("LiveBytes: got %d, want 0", a.LiveBytes())
	}
}

// TestCountingPartialDrain tests that closing a partially consumed sequence
// releases the rest.
func TestCountingPartialDrain(t *testing.T) {
	const total, consumed = 50, 7

	a := fillq.NewCounting[int](nil)
	q := fillq.NewFillQueue[int](a)
	for i := range total {
		q.MustPush(i)
	}

	it := q.Chop()
	for range consumed {
		if _, ok := it.Next(); !ok {
			t.Fatal("Next: sequence ended early")
		}
	}
	if got := a.Live(); got != total-consumed {
		t.Fatalf("Live mid-drain: got %d, want %d", got, total-consumed)
	}
	it.Close()
	if got := a.Live(); got != 0 {
		t.Fatalf("Live after Close: got %d, want 0", got)
	}
	if a.Allocs() != a.Frees() {
		t.Fatalf("allocs=%d frees=%d", a.Allocs(), a.Frees())
	}
}

// TestCountingAllBreak tests that breaking out of All releases the rest.
func TestCountingAllBreak(t *testing.T) {
	a := fillq.NewCounting[int](nil)
	q := fillq.NewFillQueue[int](a)
	for i := range 20 {
		q.MustPush(i)
	}

	for v := range q.Chop().All() {
		if v == 15 {
			break
		}
	}
	if got := a.Live(); got != 0 {
		t.Fatalf("Live after break: got %d, want 0", got)
	}
}

// TestDroppedIteratorReleased tests that an iterator dropped without Close
// has its nodes released once it is collected.
func TestDroppedIteratorReleased(t *testing.T) {
	if fillq.RaceEnabled {
		t.Skip("skip: cleanup goroutine updates atomix counters")
	}
	a := fillq.NewCounting[int](nil)
	q := fillq.NewFillQueue[int](a)
	for i := range 10 {
		q.MustPush(i)
	}

	func() {
		it := q.Chop()
		it.Next()
		it.Next()
	}()

	deadline := time.Now().Add(5 * time.Second)
	backoff := iox.Backoff{}
	for a.Live() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("dropped iterator not released: live=%d", a.Live())
		}
		runtime.GC()
		backoff.Wait()
	}
}

// =============================================================================
// Allocation Failure
// =============================================================================

// TestAllocFailureIsolation tests that a failure on the Nth push rejects only
// that value and leaves the N-1 earlier values intact.
func TestAllocFailureIsolation(t *testing.T) {
	const n = 6

	a := &failAt[int]{inner: fillq.Heap[int]{}, n: n}
	q := fillq.NewFillQueue[int](a)

	for i := 1; i < n; i++ {
		if err := q.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}

	err := q.Push(n)
	if err == nil {
		t.Fatalf("Push(%d): got nil, want allocation error", n)
	}
	if !fillq.IsAllocFailed(err) {
		t.Fatalf("Push(%d): got %v, want ErrAllocFailed", n, err)
	}
	if !errors.Is(err, errInjected) {
		t.Fatalf("Push(%d): got %v, want wrapped allocator error", n, err)
	}
	var ae *fillq.AllocError[int]
	if !errors.As(err, &ae) {
		t.Fatalf("Push(%d): got %T, want *AllocError", n, err)
	}
	if ae.Value != n {
		t.Fatalf("AllocError.Value: got %d, want %d", ae.Value, n)
	}

	got := q.Chop().Collect()
	if !slices.Equal(got, []int{5, 4, 3, 2, 1}) {
		t.Fatalf("Chop after failure: got %v, want [5 4 3 2 1]", got)
	}

	// The allocator recovers; so does the queue.
	if err := q.Push(n + 1); err != nil {
		t.Fatalf("Push after failure: %v", err)
	}
	if got := q.Chop().Collect(); !slices.Equal(got, []int{n + 1}) {
		t.Fatalf("Chop: got %v, want [%d]", got, n+1)
	}
}

// TestMustPushPanics tests that MustPush surfaces allocation failure.
func TestMustPushPanics(t *testing.T) {
	q := fillq.NewFillQueue[int](fillq.NewSlab[int](1))
	q.MustPush(1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustPush on exhausted slab: expected panic")
		}
		err, ok := r.(error)
		if !ok || !fillq.IsAllocFailed(err) {
			t.Fatalf("panic value: got %v, want ErrAllocFailed", r)
		}
	}()
	q.MustPush(2)
}

// TestPushSeqStopsOnFailure tests that PushSeq reports the partial count.
func TestPushSeqStopsOnFailure(t *testing.T) {
	q := fillq.NewFillQueue[int](fillq.NewSlab[int](3))

	n, err := q.PushSeq(slices.Values([]int{1, 2, 3, 4, 5}))
	if !fillq.IsAllocFailed(err) {
		t.Fatalf("PushSeq: got %v, want ErrAllocFailed", err)
	}
	if n != 3 {
		t.Fatalf("PushSeq: got %d pushed, want 3", n)
	}
	if got := q.Chop().Collect(); !slices.Equal(got, []int{3, 2, 1}) {
		t.Fatalf("Chop: got %v, want [3 2 1]", got)
	}
}

// =============================================================================
// Slab
// =============================================================================

// TestSlabExhaustAndRecycle tests that slab nodes are reused after a drain.
func TestSlabExhaustAndRecycle(t *testing.T) {
	s := fillq.NewSlab[int](4)
	q := fillq.NewFillQueue[int](s)

	for round := range 10 {
		for i := range 4 {
			if err := q.Push(round*10 + i); err != nil {
				t.Fatalf("round %d: Push(%d): %v", round, i, err)
			}
		}
		if err := q.Push(-1); !errors.Is(err, fillq.ErrAllocFailed) {
			t.Fatalf("round %d: Push on exhausted slab: got %v, want ErrAllocFailed", round, err)
		}
		if n := q.Chop().Count(); n != 4 {
			t.Fatalf("round %d: Count: got %d, want 4", round, n)
		}
	}

	st := s.Stats()
	if st.Capacity != 4 {
		t.Fatalf("Capacity: got %d, want 4", st.Capacity)
	}
	if st.Allocs != 40 || st.Frees != 40 || st.InUse != 0 {
		t.Fatalf("Stats: got %+v, want 40 allocs, 40 frees, 0 in use", st)
	}
	if st.Failures != 10 {
		t.Fatalf("Failures: got %d, want 10", st.Failures)
	}
}

// TestSlabForeignNode tests that a node from elsewhere is rejected.
func TestSlabForeignNode(t *testing.T) {
	s := fillq.NewSlab[int](2)
	defer func() {
		if recover() == nil {
			t.Fatal("Deallocate(foreign): expected panic")
		}
	}()
	s.Deallocate(new(fillq.Node[int]))
}

// TestSlabCapacityPanics tests constructor validation.
func TestSlabCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewSlab(0): expected panic")
		}
	}()
	fillq.NewSlab[int](0)
}

// TestCountingOverSlab tests accounting layered on a slab, including
// failures.
func TestCountingOverSlab(t *testing.T) {
	a := fillq.NewCounting[string](fillq.NewSlab[string](2))
	q := fillq.NewFillQueue[string](a)

	q.MustPush("a")
	q.MustPush("b")
	if err := q.Push("c"); err == nil {
		t.Fatal("Push beyond slab: got nil")
	}
	if a.Failures() != 1 {
		t.Fatalf("Failures: got %d, want 1", a.Failures())
	}
	q.Chop().Close()
	if a.Live() != 0 {
		t.Fatalf("Live: got %d, want 0", a.Live())
	}
	if _, ok := a.Inner().(*fillq.Slab[string]); !ok {
		t.Fatalf("Inner: got %T, want *Slab", a.Inner())
	}
}

// =============================================================================
// Builder
// =============================================================================

func TestBuilder(t *testing.T) {
	q := fillq.Build[int](fillq.New())
	if _, ok := q.Allocator().(fillq.Heap[int]); !ok {
		t.Fatalf("default: got %T, want Heap", q.Allocator())
	}

	q = fillq.Build[int](fillq.New().Slab(8))
	if s, ok := q.Allocator().(*fillq.Slab[int]); !ok || s.Cap() != 8 {
		t.Fatalf("Slab(8): got %T", q.Allocator())
	}

	q = fillq.Build[int](fillq.New().Slab(8).Counting())
	c, ok := q.Allocator().(*fillq.Counting[int])
	if !ok {
		t.Fatalf("Slab(8).Counting(): got %T, want *Counting", q.Allocator())
	}
	if _, ok := c.Inner().(*fillq.Slab[int]); !ok {
		t.Fatalf("Counting inner: got %T, want *Slab", c.Inner())
	}

	aq := fillq.BuildAsync[int](fillq.New().Counting())
	if _, ok := aq.Allocator().(*fillq.Counting[int]); !ok {
		t.Fatalf("BuildAsync Counting(): got %T", aq.Allocator())
	}
}

func TestBuilderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Slab(0): expected panic")
		}
	}()
	fillq.New().Slab(0)
}
