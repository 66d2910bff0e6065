package player

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/sseedwings2026/0114-shortform/internal/capture"
	"github.com/sseedwings2026/0114-shortform/internal/compositor"
	"github.com/sseedwings2026/0114-shortform/internal/config"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

func testPlayer(t *testing.T) *Player {
	t.Helper()
	comp, err := compositor.New(90, 160, config.DefaultStyle())
	if err != nil {
		t.Fatalf("compositor: %v", err)
	}
	return New(comp, NewWallClock(), 60)
}

func testSnapshot(duration float64) *Snapshot {
	scene := image.NewRGBA(image.Rect(0, 0, 45, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 45; x++ {
			scene.SetRGBA(x, y, color.RGBA{80, 80, 200, 255})
		}
	}
	half := duration / 2
	return &Snapshot{
		Title: "test clip",
		Captions: []timeline.TimedCaption{
			{Text: "hook", Start: 0, End: half, Section: timeline.SectionHook},
			{Text: "outro", Start: half, End: duration, Section: timeline.SectionOutro},
		},
		Scenes:   []image.Image{scene, scene, scene},
		Duration: duration,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not reached in time")
}

type countingSink struct {
	mu     sync.Mutex
	frames int
	lastT  float64
}

func (s *countingSink) WriteFrame(frame *image.RGBA, t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.lastT = t
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func TestPlayWithoutMedia(t *testing.T) {
	p := testPlayer(t)
	if err := p.Play(); err != ErrNoMedia {
		t.Errorf("Expected ErrNoMedia, got %v", err)
	}
}

func TestPlayPauseResume(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(10.0))

	if p.State() != Stopped {
		t.Fatalf("Fresh session must be stopped, got %s", p.State())
	}
	if p.CurrentTime() != 0 {
		t.Fatalf("Fresh session must start at 0, got %f", p.CurrentTime())
	}

	sink := &countingSink{}
	detach := p.AttachSink(sink)
	defer detach()

	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := p.Play(); err != nil {
		t.Errorf("Play while playing must be a no-op, got %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return sink.count() >= 3 })

	p.Pause()
	if p.State() != Paused {
		t.Errorf("Expected paused, got %s", p.State())
	}
	frozen := p.CurrentTime()
	paused := sink.count()

	// Idempotent pause, and no rendering while paused
	p.Pause()
	time.Sleep(60 * time.Millisecond)
	if got := sink.count(); got != paused {
		t.Errorf("Frames rendered while paused: %d -> %d", paused, got)
	}
	if p.CurrentTime() != frozen {
		t.Errorf("Clock advanced while paused: %f -> %f", frozen, p.CurrentTime())
	}

	// Resume continues from the frozen position, no implicit seek
	if err := p.Play(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return sink.count() > paused })
	if p.CurrentTime() < frozen {
		t.Errorf("Resume went backwards: %f < %f", p.CurrentTime(), frozen)
	}
	p.Pause()
}

func TestSeekClamped(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(10.0))

	p.Seek(-5)
	if got := p.CurrentTime(); got != 0 {
		t.Errorf("Negative seek must clamp to 0, got %f", got)
	}
	p.Seek(99)
	if got := p.CurrentTime(); got != 10.0 {
		t.Errorf("Seek past the end must clamp to duration, got %f", got)
	}
	p.Seek(3.5)
	if got := p.CurrentTime(); got < 3.49 || got > 3.51 {
		t.Errorf("Expected ~3.5, got %f", got)
	}
}

func TestEndOfMediaPausesPlayback(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(0.15))

	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return p.State() == Paused })

	if got := p.CurrentTime(); got < 0.15 {
		t.Errorf("Clock stopped before the end: %f", got)
	}
}

func TestLoadResetsSession(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(10.0))
	p.Play()
	waitFor(t, 2*time.Second, func() bool { return p.CurrentTime() > 0.02 })

	// Regenerated assets swap in as a whole new session
	p.Load(testSnapshot(5.0))
	if p.State() != Stopped {
		t.Errorf("New session must be stopped, got %s", p.State())
	}
	if p.CurrentTime() != 0 {
		t.Errorf("New session must rewind to 0, got %f", p.CurrentTime())
	}
	if p.Snapshot().Duration != 5.0 {
		t.Errorf("Snapshot not swapped, duration %f", p.Snapshot().Duration)
	}
}

func TestSubscribeTime(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(10.0))

	times, cancel := p.SubscribeTime()
	defer cancel()

	p.Play()
	defer p.Pause()

	select {
	case tm := <-times:
		if tm < 0 || tm > 10.0 {
			t.Errorf("Time value out of range: %f", tm)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No time value published")
	}
}

type memMuxer struct {
	mu     sync.Mutex
	frames int
}

func (m *memMuxer) Start(opts capture.Options) error { return nil }
func (m *memMuxer) WriteFrame(frame *image.RGBA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames++
	return nil
}
func (m *memMuxer) Finish() error { return nil }

func TestExportRunsToCompletion(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(0.15))

	mux := &memMuxer{}
	rec := capture.NewRecorder(mux)

	path, err := p.Export(rec, capture.Options{
		Width: 90, Height: 160, FPS: 60,
		OutputPath: "/tmp/export.mp4", Encoder: "libx264", Quality: 23,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if path != "/tmp/export.mp4" {
		t.Errorf("Unexpected path %q", path)
	}
	if mux.frames == 0 {
		t.Error("Export produced no frames")
	}
	if p.State() != Paused {
		t.Errorf("Playback must pause at end of media, got %s", p.State())
	}
	if rec.Active() {
		t.Error("Capture left unresolved after export")
	}
}

func TestPauseResolvesCapture(t *testing.T) {
	p := testPlayer(t)
	p.Load(testSnapshot(30.0))

	mux := &memMuxer{}
	rec := capture.NewRecorder(mux)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Export(rec, capture.Options{
			Width: 90, Height: 160, FPS: 60,
			OutputPath: "/tmp/cancel.mp4", Encoder: "libx264", Quality: 23,
		})
	}()

	waitFor(t, 2*time.Second, func() bool { return rec.Active() })
	waitFor(t, 2*time.Second, func() bool {
		mux.mu.Lock()
		defer mux.mu.Unlock()
		return mux.frames > 0
	})

	// Stopping playback must force the capture to stop too
	p.Pause()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Export left hanging after pause")
	}
	if rec.Active() {
		t.Error("Capture still active after pause")
	}
}
