package timeline

import "testing"

// hook [0,2), body [2,6) and [6,9), outro [9,12)
func sceneTimeline() []TimedCaption {
	return []TimedCaption{
		{Text: "hook", Start: 0, End: 2, Section: SectionHook},
		{Text: "body one", Start: 2, End: 6, Section: SectionBody},
		{Text: "body two", Start: 6, End: 9, Section: SectionBody},
		{Text: "outro", Start: 9, End: 12, Section: SectionOutro},
	}
}

func TestActiveCaption(t *testing.T) {
	tl := sceneTimeline()

	tests := []struct {
		time     float64
		expected string
	}{
		{0.0, "hook"},
		{1.9, "hook"},
		{2.0, "body one"},
		{8.5, "body two"},
		{11.0, "outro"},
		{12.0, "outro"}, // clock drift past measured duration
		{99.0, "outro"},
	}

	for _, tt := range tests {
		got := ActiveCaption(tl, tt.time)
		if got == nil {
			t.Fatalf("t=%.1f: expected %q, got nil", tt.time, tt.expected)
		}
		if got.Text != tt.expected {
			t.Errorf("t=%.1f: expected %q, got %q", tt.time, tt.expected, got.Text)
		}
	}

	if ActiveCaption(nil, 1.0) != nil {
		t.Error("Empty timeline must select nothing")
	}
}

func TestSceneIndexSections(t *testing.T) {
	tl := sceneTimeline()

	if idx := SceneIndex(tl, ActiveCaption(tl, 1.0), 1.0, 5); idx != 0 {
		t.Errorf("Hook must select scene 0, got %d", idx)
	}
	if idx := SceneIndex(tl, ActiveCaption(tl, 10.0), 10.0, 5); idx != 4 {
		t.Errorf("Outro must select the last scene, got %d", idx)
	}

	// Body at half progress: prog = (5.5-2)/(9-2) = 0.5, 1+floor(0.5*3) = 2
	if idx := SceneIndex(tl, ActiveCaption(tl, 5.5), 5.5, 5); idx != 2 {
		t.Errorf("Body midpoint must select scene 2, got %d", idx)
	}
}

func TestSceneIndexDegenerateCounts(t *testing.T) {
	tl := sceneTimeline()

	// A single scene serves every section
	for _, tm := range []float64{0, 4, 11} {
		if idx := SceneIndex(tl, ActiveCaption(tl, tm), tm, 1); idx != 0 {
			t.Errorf("sceneCount=1, t=%.0f: expected 0, got %d", tm, idx)
		}
	}

	if idx := SceneIndex(tl, ActiveCaption(tl, 4), 4, 2); idx < 0 || idx > 1 {
		t.Errorf("sceneCount=2: index %d out of range", idx)
	}

	if idx := SceneIndex(tl, nil, 0, 5); idx != 0 {
		t.Errorf("No active caption must fall back to scene 0, got %d", idx)
	}
}

func TestSceneIndexAlwaysInRange(t *testing.T) {
	tl := sceneTimeline()

	for sceneCount := 1; sceneCount <= 7; sceneCount++ {
		for tm := 0.0; tm <= 12.0; tm += 0.25 {
			active := ActiveCaption(tl, tm)
			idx := SceneIndex(tl, active, tm, sceneCount)
			if idx < 0 || idx >= sceneCount {
				t.Fatalf("sceneCount=%d, t=%.2f: index %d out of [0,%d)", sceneCount, tm, idx, sceneCount)
			}
		}
	}
}

func TestSceneIndexZeroLengthBody(t *testing.T) {
	// Body bounds coincide: progress treated as 0
	tl := []TimedCaption{
		{Text: "hook", Start: 0, End: 5, Section: SectionHook},
		{Text: "outro", Start: 5, End: 10, Section: SectionOutro},
	}
	active := &TimedCaption{Text: "phantom", Start: 5, End: 5, Section: SectionBody}
	if idx := SceneIndex(tl, active, 5, 5); idx != 1 {
		t.Errorf("Zero-length body must select the first interior scene, got %d", idx)
	}
}
