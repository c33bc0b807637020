package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Thresholds holds the tunable constants for the heuristic content checks.
// The values in DefaultThresholds were chosen empirically against real form
// submissions, not derived from a model; validate against a labeled sample
// before relying on tighter values in production.
type Thresholds struct {
	// VowelRatioMin and VowelRatioMax bound the acceptable vowel fraction
	// of a string's letters. Natural English sits near 0.35-0.45.
	VowelRatioMin float64
	VowelRatioMax float64

	// MaxConsonantRun is the consecutive-consonant run length at which a
	// string is flagged.
	MaxConsonantRun int

	// RepeatCount is the number of immediate repetitions of a short
	// fragment (2-4 letters) at which a string is flagged.
	RepeatCount int

	// CaseTransitionRatio is the fraction of adjacent-letter case flips
	// above which a string is flagged, e.g. "TkRiYvXe".
	CaseTransitionRatio float64

	// MinLetters is the letter count below which a string is too short to
	// judge and is never flagged.
	MinLetters int

	// CaseCheckMinLetters is the letter count below which the case
	// transition check is skipped.
	CaseCheckMinLetters int

	// MinAlphaPartRatio is the minimum alphabetic fraction of each name
	// part.
	MinAlphaPartRatio float64

	// GibberishPartLength is the name part length above which the part is
	// run through gibberish detection.
	GibberishPartLength int

	// LongWordLength is the alphabetic length above which a message word
	// counts as a long word.
	LongWordLength int

	// LongWordGibberishFraction is the fraction of gibberish long words at
	// which a message is rejected.
	LongWordGibberishFraction float64

	// MinMessageWords is the default minimum word count for messages.
	MinMessageWords int
}

// DefaultThresholds returns the thresholds used in production
func DefaultThresholds() Thresholds {
	return Thresholds{
		VowelRatioMin:             0.15,
		VowelRatioMax:             0.65,
		MaxConsonantRun:           5,
		RepeatCount:               3,
		CaseTransitionRatio:       0.6,
		MinLetters:                4,
		CaseCheckMinLetters:       6,
		MinAlphaPartRatio:         0.8,
		GibberishPartLength:       4,
		LongWordLength:            6,
		LongWordGibberishFraction: 0.5,
		MinMessageWords:           3,
	}
}

// Detector flags strings that are statistically inconsistent with natural
// language: extreme vowel ratios, long consonant runs, repeated fragments
// and erratic capitalization. It is pure and safe for concurrent use.
type Detector struct {
	t Thresholds
}

// NewDetector creates a detector with the given thresholds
func NewDetector(t Thresholds) *Detector {
	return &Detector{t: t}
}

// IsGibberish reports whether s looks auto-generated or keyboard-mashed.
// Strings with fewer than MinLetters letters are never flagged.
func (d *Detector) IsGibberish(s string) bool {
	normalized := norm.NFKC.String(s)

	letters := asciiLetters(normalized)
	lower := strings.ToLower(letters)

	if len(lower) < d.t.MinLetters {
		return false
	}

	vowels := 0
	for _, r := range lower {
		if isVowel(r) {
			vowels++
		}
	}
	ratio := float64(vowels) / float64(len(lower))
	if ratio < d.t.VowelRatioMin || ratio > d.t.VowelRatioMax {
		return true
	}

	if longestConsonantRun(lower) >= d.t.MaxConsonantRun {
		return true
	}

	if hasRepeatedFragment(lower, d.t.RepeatCount) {
		return true
	}

	// Case pattern check runs on the original casing.
	if len(letters) >= d.t.CaseCheckMinLetters &&
		caseTransitionRatio(letters) > d.t.CaseTransitionRatio {
		return true
	}

	return false
}

// asciiLetters keeps only a-z and A-Z, dropping digits, punctuation and
// non-Latin characters. The heuristics below are English-specific.
func asciiLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func longestConsonantRun(lower string) int {
	longest, run := 0, 0
	for _, r := range lower {
		if isVowel(r) {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}
	return longest
}

// hasRepeatedFragment reports whether a fragment of 2-4 letters repeats
// immediately at least count times in a row ("abab ab" style padding).
// RE2 has no backreferences, so this is a linear scan rather than a regexp.
func hasRepeatedFragment(lower string, count int) bool {
	n := len(lower)
	for size := 2; size <= 4; size++ {
		for start := 0; start+size*count <= n; start++ {
			fragment := lower[start : start+size]
			repeats := 1
			for next := start + size; next+size <= n; next += size {
				if lower[next:next+size] != fragment {
					break
				}
				repeats++
				if repeats >= count {
					return true
				}
			}
		}
	}
	return false
}

func caseTransitionRatio(letters string) float64 {
	runes := []rune(letters)
	if len(runes) < 2 {
		return 0
	}
	transitions := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) != unicode.IsUpper(runes[i-1]) {
			transitions++
		}
	}
	return float64(transitions) / float64(len(runes)-1)
}
