package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands still
// until Advance or Set is called.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic TimerClock for tests and trace replay.
//
// AfterFunc callbacks are invoked synchronously during Advance in deadline
// order, with the clock set to the callback's deadline while it runs. A
// callback may register new timers; those fire within the same Advance call
// if their deadline is not past the target time. Do not call Advance from
// within a callback.
type FakeClock struct {
	mu      sync.Mutex
	current Time
	waiters waiterHeap
	seq     uint64
}

type fakeWaiter struct {
	deadline Time
	callback func()

	// seq orders waiters that share a deadline by registration.
	seq uint64

	// index is the position in the heap, or -1 once fired or stopped.
	index int
}

// waiterHeap is a container/heap of pending waiters ordered by deadline, then seq.
type waiterHeap []*fakeWaiter

func (h waiterHeap) Len() int { return len(h) }

func (h waiterHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h waiterHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *waiterHeap) Push(x any) {
	waiter := x.(*fakeWaiter)
	waiter.index = len(*h)
	*h = append(*h, waiter)
}

func (h *waiterHeap) Pop() any {
	old := *h
	n := len(old)
	waiter := old[n-1]
	old[n-1] = nil
	waiter.index = -1
	*h = old[:n-1]
	return waiter
}

// Now returns the current fake time.
func (c *FakeClock) Now() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc schedules f to be called once the clock reaches now + d. If
// d <= 0, f still waits for the next Advance call (including Advance(0)),
// which keeps callers from re-entering themselves.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d < 0 {
		d = 0
	}
	c.seq++
	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		callback: f,
		seq:      c.seq,
	}
	heap.Push(&c.waiters, waiter)
	return &fakeTimer{clock: c, waiter: waiter}
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the new time.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()
	c.advanceTo(target)
}

// Set moves the clock to t, firing every timer whose deadline is at or
// before t. Setting a time in the past only changes Now.
func (c *FakeClock) Set(t Time) {
	c.advanceTo(t)
}

// PendingCount returns the number of timers that are registered and have
// neither fired nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiters.Len()
}

// NextDeadline returns the earliest pending deadline, if any.
func (c *FakeClock) NextDeadline() (Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waiters.Len() == 0 {
		return 0, false
	}
	return c.waiters[0].deadline, true
}

func (c *FakeClock) advanceTo(target Time) {
	for {
		c.mu.Lock()
		if c.waiters.Len() == 0 || c.waiters[0].deadline > target {
			c.current = target
			c.mu.Unlock()
			return
		}
		next := heap.Pop(&c.waiters).(*fakeWaiter)
		if next.deadline > c.current {
			c.current = next.deadline
		}
		c.mu.Unlock()

		next.callback()
	}
}

type fakeTimer struct {
	clock  *FakeClock
	waiter *fakeWaiter
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.waiter.index < 0 {
		return false
	}
	heap.Remove(&t.clock.waiters, t.waiter.index)
	return true
}
