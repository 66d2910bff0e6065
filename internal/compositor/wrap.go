package compositor

import (
	"strings"

	"golang.org/x/image/math/fixed"
)

const maxCaptionLines = 2

// wrapText greedily packs words into lines that stay under maxWidth as
// measured by the compositor's font face. Only the first two lines are kept;
// any overflow beyond them is dropped.
func (c *Compositor) wrapText(text string, maxWidth fixed.Int26_6) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if c.measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		if len(lines) == maxCaptionLines {
			// Третья строка никогда не показывается
			return lines
		}
	}
	lines = append(lines, current)
	if len(lines) > maxCaptionLines {
		lines = lines[:maxCaptionLines]
	}
	return lines
}
