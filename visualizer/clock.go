package visualizer

import (
	"sync"
	"time"
)

// FrameClock delivers frame callbacks to a render session.
type FrameClock interface {
	Frames() <-chan time.Time
	Stop()
}

// TickerClock schedules frames at a fixed rate. It stands in for a display
// refresh when there is no window.
type TickerClock struct {
	ticker *time.Ticker
}

func NewTickerClock(fps int) *TickerClock {
	if fps <= 0 {
		fps = DefaultSettings().FrameRate
	}
	return &TickerClock{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (c *TickerClock) Frames() <-chan time.Time { return c.ticker.C }

func (c *TickerClock) Stop() { c.ticker.Stop() }

// HostClock forwards frame callbacks from a host loop, such as a window's
// per-frame update. A tick arriving while the previous one is still queued
// is merged into it.
type HostClock struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func NewHostClock() *HostClock {
	return &HostClock{c: make(chan time.Time, 1)}
}

func (c *HostClock) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	select {
	case c.c <- time.Now():
	default:
	}
}

func (c *HostClock) Frames() <-chan time.Time { return c.c }

func (c *HostClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	select {
	case <-c.c:
	default:
	}
}
