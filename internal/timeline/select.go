package timeline

import "math"

// ActiveCaption finds the caption whose interval contains t. Past the final
// interval (the audio clock may drift beyond the measured duration) the last
// caption is returned instead of nil so the final frame never goes blank.
// Returns nil only for an empty timeline.
func ActiveCaption(captions []TimedCaption, t float64) *TimedCaption {
	if len(captions) == 0 {
		return nil
	}
	for i := range captions {
		if t >= captions[i].Start && t < captions[i].End {
			return &captions[i]
		}
	}
	if t < captions[0].Start {
		return &captions[0]
	}
	return &captions[len(captions)-1]
}

// SceneIndex picks the still image for the current playback position.
// Index 0 is reserved for the hook scene and the last index for the outro;
// interior indices are spread evenly across body progress. The result is
// always clamped into [0, sceneCount-1], so degenerate scene counts are safe.
func SceneIndex(captions []TimedCaption, active *TimedCaption, t float64, sceneCount int) int {
	if sceneCount <= 0 {
		return 0
	}
	last := sceneCount - 1
	if active == nil {
		return 0
	}

	switch active.Section {
	case SectionHook:
		return 0
	case SectionOutro:
		return last
	}

	// Body: map normalized progress onto the interior scenes.
	bodyStart, bodyEnd, ok := bodyBounds(captions)
	bodyCount := sceneCount - 2
	if !ok || bodyCount < 1 {
		return clamp(1, 0, last)
	}

	prog := 0.0
	if bodyEnd > bodyStart {
		prog = (t - bodyStart) / (bodyEnd - bodyStart)
	}
	idx := 1 + int(math.Floor(prog*float64(bodyCount)))
	return clamp(idx, clamp(1, 0, last), clamp(sceneCount-2, 0, last))
}

// bodyBounds returns the first start and last end of body-tagged intervals.
func bodyBounds(captions []TimedCaption) (start, end float64, ok bool) {
	for i := range captions {
		if captions[i].Section != SectionBody {
			continue
		}
		if !ok {
			start = captions[i].Start
			ok = true
		}
		end = captions[i].End
	}
	return start, end, ok
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
