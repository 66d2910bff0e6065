package script

import (
	"strings"
	"unicode"
)

// Segment splits narration text into caption-sized chunks. Sentences are kept
// whole when they fit into maxChars; longer sentences are split on comma
// boundaries, greedily packing clauses. The length bound is advisory: a single
// clause longer than maxChars is emitted whole rather than truncated.
// Deterministic for a given input.
func Segment(text string, maxChars int) []string {
	var chunks []string
	for _, sentence := range splitSentences(text) {
		if runeLen(sentence) <= maxChars {
			chunks = append(chunks, sentence)
			continue
		}
		chunks = append(chunks, packClauses(sentence, maxChars)...)
	}
	return chunks
}

// splitSentences breaks text on sentence terminators followed by whitespace.
// A trailing sentence without terminal punctuation is normalized to end with
// a period.
func splitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// Absorb a run of terminators ("?!", "...")
		end := i
		for end+1 < len(runes) && isTerminator(runes[end+1]) {
			end++
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			// Mid-token punctuation (e.g. "3.5") is not a boundary
			i = end
			continue
		}
		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = end + 1
		i = end
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, normalizeSentence(rest))
	}
	return sentences
}

// packClauses splits an oversized sentence on commas and greedily accumulates
// clauses into chunks, never flushing an empty buffer.
func packClauses(sentence string, maxChars int) []string {
	clauses := strings.SplitAfter(sentence, ",")
	for i := range clauses {
		clauses[i] = strings.TrimSpace(clauses[i])
	}

	var chunks []string
	var buf string
	for _, clause := range clauses {
		if clause == "" {
			continue
		}
		if buf == "" {
			buf = clause
			continue
		}
		if runeLen(buf)+1+runeLen(clause) > maxChars {
			chunks = append(chunks, buf)
			buf = clause
			continue
		}
		buf = buf + " " + clause
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}

func normalizeSentence(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	if isTerminator(runes[len(runes)-1]) {
		return s
	}
	return s + "."
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func runeLen(s string) int {
	return len([]rune(s))
}
