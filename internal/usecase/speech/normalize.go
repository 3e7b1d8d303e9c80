package speech

import (
	"regexp"
	"strings"
)

// Script text arrives with markdown emphasis, math shorthand, and
// interruption dashes that TTS voices read literally. These rules rewrite
// them into speakable text while leaving legitimate symbols (like the
// asterisk in function(*args)) alone.
var (
	boldStarRe  = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnderRe = regexp.MustCompile(`__([^_]+)__`)
	// Italic stars only open after whitespace or line start, so code
	// asterisks in the middle of a word never pair across the line.
	emStarRe    = regexp.MustCompile(`(^|\s)\*([^*\n]+)\*`)
	emUnderRe   = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	mathTimesRe = regexp.MustCompile(`(\d)\s*\*\s*(\d)`)
	dashBreakRe = regexp.MustCompile(`—|--`)
)

// CleanTextForTTS normalizes dialogue text before synthesis. It is
// idempotent: cleaning already-clean text returns it unchanged.
func CleanTextForTTS(text string) string {
	// Math first so "2 * 3" is not mistaken for emphasis. Chains like
	// "2*3*4" need another pass for the overlapping pair.
	for {
		next := mathTimesRe.ReplaceAllString(text, "$1 times $2")
		if next == text {
			break
		}
		text = next
	}

	text = boldStarRe.ReplaceAllString(text, "$1")
	text = boldUnderRe.ReplaceAllString(text, "$1")
	text = emStarRe.ReplaceAllString(text, "$1$2")
	text = emUnderRe.ReplaceAllString(text, "$1")

	// Interruption dashes read as pauses.
	text = dashBreakRe.ReplaceAllString(text, ", ")

	// Drop stray marker-only tokens and collapse whitespace.
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if strings.Trim(w, "*_") == "" {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
