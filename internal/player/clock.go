package player

import (
	"sync"
	"time"
)

// Clock is the playback time authority. The scheduler never free-runs its own
// timer: every tick reads the clock, so pause/seek/drift all originate here.
type Clock interface {
	Now() float64
	Resume()
	Pause()
	Seek(t float64)
}

// WallClock advances with wall time while resumed and freezes while paused.
// It stands in for an audio device clock: the narration track is started and
// stopped alongside it, and positions stay within a frame of the audio card.
type WallClock struct {
	mu        sync.Mutex
	base      float64
	resumedAt time.Time
	running   bool
}

func NewWallClock() *WallClock {
	return &WallClock{}
}

func (c *WallClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.base
	}
	return c.base + time.Since(c.resumedAt).Seconds()
}

func (c *WallClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.resumedAt = time.Now()
	c.running = true
}

func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.base += time.Since(c.resumedAt).Seconds()
	c.running = false
}

func (c *WallClock) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t < 0 {
		t = 0
	}
	c.base = t
	c.resumedAt = time.Now()
}
