package player

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sseedwings2026/0114-shortform/internal/compositor"
	"github.com/sseedwings2026/0114-shortform/internal/system"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

// ErrNoMedia is returned by Play when no snapshot has been loaded.
var ErrNoMedia = errors.New("no media loaded")

// State is the scheduler's playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Snapshot is one immutable synchronized session: the caption timeline, the
// decoded scene stills and the measured narration duration. Regeneration
// builds a fresh snapshot and swaps it in whole, so a tick never observes a
// half-updated timeline.
type Snapshot struct {
	Title     string
	Captions  []timeline.TimedCaption
	Scenes    []image.Image
	Duration  float64
	AudioPath string
}

// FrameSink receives every composited frame together with its timeline
// position. The capture recorder is one such sink.
type FrameSink interface {
	WriteFrame(frame *image.RGBA, t float64)
}

// Player is the cooperative playback scheduler. A single goroutine ticks at
// the frame interval while Playing; each tick reads the clock, selects the
// active caption and scene, renders one frame and hands it to the sinks.
// Ticks are strictly sequential and stop after the in-flight frame when the
// state leaves Playing.
type Player struct {
	comp  *compositor.Compositor
	clock Clock
	pool  *system.FramePool
	fps   int

	snap atomic.Pointer[Snapshot]

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	loopDone chan struct{}
	sinks    []FrameSink
	timeSubs map[int]chan float64
	haltSubs map[int]func()
	nextID   int
}

func New(comp *compositor.Compositor, clock Clock, fps int) *Player {
	b := comp.Bounds()
	return &Player{
		comp:     comp,
		clock:    clock,
		pool:     system.NewFramePool(b.Dx(), b.Dy()),
		fps:      fps,
		timeSubs: make(map[int]chan float64),
		haltSubs: make(map[int]func()),
	}
}

// Load swaps in a new synchronized session and resets playback to
// {stopped, t=0}. Safe to call between sessions; an in-flight tick finishes
// against the old snapshot before the loop observes the halt.
func (p *Player) Load(snap *Snapshot) {
	p.haltLoop()

	p.mu.Lock()
	p.state = Stopped
	p.mu.Unlock()

	p.snap.Store(snap)
	p.clock.Pause()
	p.clock.Seek(0)
}

// Snapshot returns the current session, or nil before the first Load.
func (p *Player) Snapshot() *Snapshot {
	return p.snap.Load()
}

// Play starts or resumes playback. Playing while already playing is a no-op.
func (p *Player) Play() error {
	snap := p.snap.Load()
	if snap == nil || len(snap.Captions) == 0 {
		return ErrNoMedia
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Playing {
		return nil
	}

	p.clock.Resume()
	p.state = Playing

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.loopDone = done
	go p.run(ctx, done)
	return nil
}

// Pause halts playback after the in-flight frame. Idempotent. Any capture
// sink attached to the player is resolved through the halt subscribers.
func (p *Player) Pause() {
	p.haltLoop()
	p.notifyHalt()
}

// Seek moves the clock, clamped into the current session's span. Allowed in
// any state; while paused the next tick after resume picks the new position.
func (p *Player) Seek(t float64) {
	if t < 0 {
		t = 0
	}
	if snap := p.snap.Load(); snap != nil && t > snap.Duration {
		t = snap.Duration
	}
	p.clock.Seek(t)
}

// CurrentTime returns the clock position.
func (p *Player) CurrentTime() float64 {
	return p.clock.Now()
}

// State returns the scheduler state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// AttachSink registers a frame sink; the returned function detaches it.
func (p *Player) AttachSink(sink FrameSink) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, sink)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i := range p.sinks {
			if p.sinks[i] == sink {
				p.sinks = append(p.sinks[:i], p.sinks[i+1:]...)
				return
			}
		}
	}
}

// SubscribeTime returns a read-only stream of playback positions, one value
// per rendered frame, and a cancel function. Slow consumers miss values
// rather than stalling the tick loop.
func (p *Player) SubscribeTime() (<-chan float64, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	ch := make(chan float64, 1)
	p.timeSubs[id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.timeSubs, id)
	}
}

// onHalt registers a callback fired whenever playback leaves Playing, both on
// an explicit pause and on end-of-media. Returns an unsubscribe function.
func (p *Player) onHalt(fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.haltSubs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.haltSubs, id)
	}
}

// haltLoop cancels the pending tick and waits for the loop goroutine so no
// render can run against stale state after the transition.
func (p *Player) haltLoop() {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.state = Paused
	p.clock.Pause()
	cancel := p.cancel
	done := p.loopDone
	p.cancel = nil
	p.loopDone = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (p *Player) notifyHalt() {
	p.mu.Lock()
	subs := make([]func(), 0, len(p.haltSubs))
	for _, fn := range p.haltSubs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ended := p.tick(); ended {
				go p.endOfMedia(done)
				return
			}
		}
	}
}

// endOfMedia performs the Playing→Paused transition when the clock passes the
// narration duration. It runs outside the loop goroutine's select so the halt
// wait does not deadlock on the loop's own done channel.
func (p *Player) endOfMedia(loopDone chan struct{}) {
	<-loopDone

	p.mu.Lock()
	if p.state == Playing {
		p.state = Paused
		p.clock.Pause()
		p.cancel = nil
		p.loopDone = nil
	}
	p.mu.Unlock()

	p.notifyHalt()
}

// tick renders exactly one frame for the current clock position and reports
// whether the end of the narration has been reached.
func (p *Player) tick() bool {
	snap := p.snap.Load()
	if snap == nil {
		return true
	}

	t := p.clock.Now()
	active := timeline.ActiveCaption(snap.Captions, t)
	idx := timeline.SceneIndex(snap.Captions, active, t, len(snap.Scenes))

	var scene image.Image
	if idx >= 0 && idx < len(snap.Scenes) {
		scene = snap.Scenes[idx]
	}

	frame := p.pool.Get()
	p.comp.Render(frame, scene, active)

	p.mu.Lock()
	sinks := make([]FrameSink, len(p.sinks))
	copy(sinks, p.sinks)
	subs := make([]chan float64, 0, len(p.timeSubs))
	for _, ch := range p.timeSubs {
		subs = append(subs, ch)
	}
	p.mu.Unlock()

	for _, sink := range sinks {
		sink.WriteFrame(frame, t)
	}
	p.pool.Put(frame)

	for _, ch := range subs {
		select {
		case ch <- t:
		default:
		}
	}

	return t >= snap.Duration
}
