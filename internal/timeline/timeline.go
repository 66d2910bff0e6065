package timeline

import (
	"github.com/sseedwings2026/0114-shortform/internal/script"
)

// Section names one of the three structural parts of a short-form script.
type Section string

const (
	SectionHook  Section = "hook"
	SectionBody  Section = "body"
	SectionOutro Section = "outro"
)

// TimedCaption is one caption chunk placed onto the narration time axis.
// Intervals are half-open [Start, End); across a timeline they are contiguous
// and the last End equals the total narration duration.
type TimedCaption struct {
	Text    string
	Start   float64
	End     float64
	Section Section
}

// Map builds the caption timeline for a script and a measured narration
// duration. Each section is segmented independently and every chunk receives
// a share of the duration proportional to its character count. Pure: the same
// (script, duration, maxChars) always yields the same timeline. An all-empty
// script yields an empty timeline rather than dividing by zero.
func Map(content script.Content, totalDuration float64, maxChars int) []TimedCaption {
	type tagged struct {
		text    string
		section Section
	}

	var chunks []tagged
	for _, part := range []struct {
		text    string
		section Section
	}{
		{content.Hook, SectionHook},
		{content.Body, SectionBody},
		{content.Outro, SectionOutro},
	} {
		for _, c := range script.Segment(part.text, maxChars) {
			chunks = append(chunks, tagged{text: c, section: part.section})
		}
	}

	totalChars := 0
	for _, c := range chunks {
		totalChars += len([]rune(c.text))
	}
	if totalChars == 0 {
		return nil
	}

	captions := make([]TimedCaption, 0, len(chunks))
	accumulated := 0
	for _, c := range chunks {
		start := float64(accumulated) / float64(totalChars) * totalDuration
		accumulated += len([]rune(c.text))
		end := float64(accumulated) / float64(totalChars) * totalDuration
		captions = append(captions, TimedCaption{
			Text:    c.text,
			Start:   start,
			End:     end,
			Section: c.section,
		})
	}
	return captions
}

// Duration returns the total span of the timeline.
func Duration(captions []TimedCaption) float64 {
	if len(captions) == 0 {
		return 0
	}
	return captions[len(captions)-1].End
}
