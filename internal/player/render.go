package player

import (
	"image"
	"math"

	"github.com/sseedwings2026/0114-shortform/internal/compositor"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

// Render walks a session offline, one frame per timeline position at the
// given FPS, feeding each composited frame to the sink in order. It produces
// the same artifact as a realtime export without waiting out the narration.
func Render(comp *compositor.Compositor, snap *Snapshot, sink FrameSink, fps int, progress func(done, total int)) {
	total := int(math.Ceil(snap.Duration * float64(fps)))
	if total < 1 {
		total = 1
	}

	b := comp.Bounds()
	frame := image.NewRGBA(b)

	for i := 0; i < total; i++ {
		t := float64(i) / float64(fps)
		active := timeline.ActiveCaption(snap.Captions, t)
		idx := timeline.SceneIndex(snap.Captions, active, t, len(snap.Scenes))

		var scene image.Image
		if idx >= 0 && idx < len(snap.Scenes) {
			scene = snap.Scenes[idx]
		}

		comp.Render(frame, scene, active)
		sink.WriteFrame(frame, t)

		if progress != nil {
			progress(i+1, total)
		}
	}
}
