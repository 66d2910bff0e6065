package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrActive возвращается при попытке начать запись, пока предыдущая не
// завершена. Одновременно может идти только один захват.
var ErrActive = errors.New("capture already active")

// Options describes one capture session.
type Options struct {
	Width, Height int
	FPS           int
	AudioPath     string  // Дорожка озвучки; пустая строка — кадры без звука
	OutputPath    string
	Encoder       string  // libx264 / h264_nvenc / h264_videotoolbox
	Quality       int
	MaxDuration   float64 // Страховочный таймаут, используется только без аудио
}

// Muxer encodes a stream of frames plus an audio track into a container.
type Muxer interface {
	Start(opts Options) error
	WriteFrame(frame *image.RGBA) error
	Finish() error
}

// Recorder гоняет кадры из планировщика в муксер. Протокол: Start — пока
// запись активна, новые запросы отклоняются; запись завершается тем же
// сигналом конца дорожки, которым планировщик уходит из Playing.
type Recorder struct {
	mu     sync.Mutex
	mux    Muxer
	active bool
	opts   Options
	frames int
	failed error
}

func NewRecorder(mux Muxer) *Recorder {
	return &Recorder{mux: mux}
}

// Start begins a capture session. Returns ErrActive while one is in flight.
func (r *Recorder) Start(opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrActive
	}
	if err := r.mux.Start(opts); err != nil {
		return fmt.Errorf("start muxer: %w", err)
	}
	r.active = true
	r.opts = opts
	r.frames = 0
	r.failed = nil
	return nil
}

// WriteFrame feeds one composited frame into the session. Satisfies the
// scheduler's frame sink. Frames arriving outside a session are dropped:
// playback may keep ticking after capture stopped.
func (r *Recorder) WriteFrame(frame *image.RGBA, t float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || r.failed != nil {
		return
	}
	if err := r.mux.WriteFrame(frame); err != nil {
		// Запись сломалась — фиксируем ошибку, остальные кадры не шлём
		r.failed = err
		return
	}
	r.frames++
}

// Stop finalizes the session and returns the output path. Idempotent:
// stopping an inactive recorder is a no-op.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return "", nil
	}
	r.active = false

	finishErr := r.mux.Finish()
	if r.failed != nil {
		return "", r.failed
	}
	if finishErr != nil {
		return "", finishErr
	}
	if r.frames == 0 {
		return "", fmt.Errorf("capture produced no frames")
	}
	return r.opts.OutputPath, nil
}

// Active reports whether a capture session is in flight.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
