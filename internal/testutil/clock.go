package testutil

import (
	"fmt"
	"sync"
	"time"

	"intake-go/internal/tracker"
)

// StubClock returns a manually advanced time and hands out tickers that
// fire only when Advance crosses their period. Safe for concurrent use.
type StubClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*StubTicker
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker returns a ticker whose first tick is due one period from now.
func (c *StubClock) NewTicker(d time.Duration) tracker.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &StubTicker{
		c:      make(chan time.Time, 1),
		period: d,
		next:   c.now.Add(d),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by d and fires every running ticker
// whose next tick falls within the new time. Like time.Ticker, a tick is
// dropped if the previous one has not been received yet.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	for _, t := range c.tickers {
		t.fire(c.now)
	}
}

// Tickers returns the number of tickers handed out that are still running.
func (c *StubClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// StubTicker is the tracker.Ticker handed out by StubClock.
type StubTicker struct {
	mu      sync.Mutex
	c       chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

func (t *StubTicker) C() <-chan time.Time { return t.c }

func (t *StubTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *StubTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *StubTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.period <= 0 {
		return
	}
	for !t.next.After(now) {
		select {
		case t.c <- t.next:
		default:
		}
		t.next = t.next.Add(t.period)
	}
}

// StubIDGenerator returns sequential IDs: "id-1", "id-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}
