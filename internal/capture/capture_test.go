package capture

import (
	"errors"
	"image"
	"testing"
)

type fakeMuxer struct {
	started  int
	frames   int
	finished int
	writeErr error
	startErr error
}

func (m *fakeMuxer) Start(opts Options) error { m.started++; return m.startErr }
func (m *fakeMuxer) WriteFrame(frame *image.RGBA) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.frames++
	return nil
}
func (m *fakeMuxer) Finish() error { m.finished++; return nil }

func testOptions() Options {
	return Options{Width: 720, Height: 1280, FPS: 30, OutputPath: "/tmp/out.mp4", Encoder: "libx264", Quality: 23}
}

func frame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 720, 1280))
}

func TestRecorderSingleFlight(t *testing.T) {
	mux := &fakeMuxer{}
	rec := NewRecorder(mux)

	if err := rec.Start(testOptions()); err != nil {
		t.Fatalf("First capture rejected: %v", err)
	}

	// A second capture while one is active must be rejected
	err := rec.Start(testOptions())
	if !errors.Is(err, ErrActive) {
		t.Fatalf("Expected ErrActive, got %v", err)
	}
	if mux.started != 1 {
		t.Errorf("Rejected capture must not touch the muxer (started %d times)", mux.started)
	}

	// The original capture is unaffected
	rec.WriteFrame(frame(), 0.0)
	path, err := rec.Stop()
	if err != nil {
		t.Fatalf("Original capture broken by rejected request: %v", err)
	}
	if path != "/tmp/out.mp4" {
		t.Errorf("Unexpected output path %q", path)
	}
}

func TestRecorderCountsFrames(t *testing.T) {
	mux := &fakeMuxer{}
	rec := NewRecorder(mux)

	rec.Start(testOptions())
	for i := 0; i < 5; i++ {
		rec.WriteFrame(frame(), float64(i)/30.0)
	}
	rec.Stop()

	if mux.frames != 5 {
		t.Errorf("Expected 5 frames in the muxer, got %d", mux.frames)
	}
	if mux.finished != 1 {
		t.Errorf("Expected 1 finish, got %d", mux.finished)
	}
}

func TestRecorderDropsFramesOutsideSession(t *testing.T) {
	mux := &fakeMuxer{}
	rec := NewRecorder(mux)

	// Playback may keep ticking while no capture is active
	rec.WriteFrame(frame(), 0.0)
	if mux.frames != 0 {
		t.Errorf("Frame outside a session reached the muxer")
	}

	rec.Start(testOptions())
	rec.WriteFrame(frame(), 0.0)
	rec.Stop()
	rec.WriteFrame(frame(), 1.0)
	if mux.frames != 1 {
		t.Errorf("Expected exactly 1 accepted frame, got %d", mux.frames)
	}
}

func TestRecorderStopIdempotent(t *testing.T) {
	mux := &fakeMuxer{}
	rec := NewRecorder(mux)

	if path, err := rec.Stop(); err != nil || path != "" {
		t.Errorf("Stopping an inactive recorder must be a no-op, got (%q, %v)", path, err)
	}

	rec.Start(testOptions())
	rec.WriteFrame(frame(), 0.0)
	rec.Stop()
	if path, err := rec.Stop(); err != nil || path != "" {
		t.Errorf("Second stop must be a no-op, got (%q, %v)", path, err)
	}
	if mux.finished != 1 {
		t.Errorf("Expected 1 finish, got %d", mux.finished)
	}
}

func TestRecorderSurfacesWriteFailure(t *testing.T) {
	writeErr := errors.New("pipe closed")
	mux := &fakeMuxer{writeErr: writeErr}
	rec := NewRecorder(mux)

	rec.Start(testOptions())
	rec.WriteFrame(frame(), 0.0)

	if _, err := rec.Stop(); !errors.Is(err, writeErr) {
		t.Errorf("Expected the write failure at Stop, got %v", err)
	}

	// The failed session must release the single-flight slot
	if err := rec.Start(testOptions()); err != nil {
		t.Errorf("Recorder stuck after failed session: %v", err)
	}
}

func TestRecorderEmptyCapture(t *testing.T) {
	mux := &fakeMuxer{}
	rec := NewRecorder(mux)

	rec.Start(testOptions())
	if _, err := rec.Stop(); err == nil {
		t.Error("A capture with zero frames must fail")
	}
}
