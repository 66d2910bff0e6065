package player

import (
	"sync"

	"github.com/sseedwings2026/0114-shortform/internal/capture"
)

// Export records one full pass of the current session into the recorder:
// seek to zero, play, feed every composited frame to the capture sink, and
// resolve when playback halts, whether that is the natural end of media or
// an explicit pause. A cancelled playback therefore never leaves the capture
// hanging.
// A capture already in flight is rejected by the recorder.
func (p *Player) Export(rec *capture.Recorder, opts capture.Options) (string, error) {
	snap := p.snap.Load()
	if snap == nil || len(snap.Captions) == 0 {
		return "", ErrNoMedia
	}

	if err := rec.Start(opts); err != nil {
		return "", err
	}

	halted := make(chan struct{})
	var once sync.Once
	unsubscribe := p.onHalt(func() {
		once.Do(func() { close(halted) })
	})
	defer unsubscribe()

	detach := p.AttachSink(rec)
	defer detach()

	p.Seek(0)
	if err := p.Play(); err != nil {
		rec.Stop()
		return "", err
	}

	<-halted
	return rec.Stop()
}
