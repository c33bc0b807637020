package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGibberish(t *testing.T) {
	detector := NewDetector(DefaultThresholds())

	tests := []struct {
		name      string
		input     string
		gibberish bool
	}{
		{"too short to judge", "hi", false},
		{"empty string", "", false},
		{"three letters", "abc", false},
		{"plain english", "hello there", false},
		{"ordinary name", "Johnson", false},
		{"no vowels", "xkcdbzzqpwn", true},
		{"all vowels", "aeiouaeiou", true},
		{"long consonant run", "catastrzphkncally", true},
		{"repeated fragment", "ababab", true},
		{"repeated fragment padded", "hey nonononono there", true},
		{"case toggled", "TkRiYvXe", true},
		{"case toggled longer", "TkRiYvXeQrLm", true},
		{"mixed case but normal", "McDonald", false},
		{"sentence with punctuation", "We'd like a quote, please.", false},
		{"digits ignored", "call me at 5551234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.gibberish, detector.IsGibberish(tt.input),
				"input %q", tt.input)
		})
	}
}

func TestIsGibberishVowelRatioBounds(t *testing.T) {
	detector := NewDetector(DefaultThresholds())

	// Ratio well inside the bounds with no other trigger must pass.
	assert.False(t, detector.IsGibberish("remodel"))

	// 1 vowel in 9 letters = 0.111 < 0.15 with no consonant run of 5,
	// so the ratio alone flags it.
	assert.True(t, detector.IsGibberish("brgsatrgs"))
}

func TestIsGibberishCustomThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.MinLetters = 10
	detector := NewDetector(thresholds)

	// Raising the minimum letter count exempts short junk.
	assert.False(t, detector.IsGibberish("xkcdbzzq"))
}

func TestLongestConsonantRun(t *testing.T) {
	assert.Equal(t, 0, longestConsonantRun("aeiou"))
	assert.Equal(t, 2, longestConsonantRun("hello"))
	assert.Equal(t, 5, longestConsonantRun("bcdfga"))
	assert.Equal(t, 11, longestConsonantRun("xkcdbzzqpwn"))
}

func TestHasRepeatedFragment(t *testing.T) {
	tests := []struct {
		input    string
		repeated bool
	}{
		{"ababab", true},
		{"abcabcabc", true},
		{"abab", false},
		{"mississippi", false},
		{"banana", false},
		{"nononono", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.repeated, hasRepeatedFragment(tt.input, 3),
			"input %q", tt.input)
	}
}

func TestCaseTransitionRatio(t *testing.T) {
	assert.InDelta(t, 1.0, caseTransitionRatio("TkRiYvXe"), 0.001)
	assert.InDelta(t, 0.0, caseTransitionRatio("lowercase"), 0.001)
	// Single leading capital: one transition.
	assert.InDelta(t, 1.0/7.0, caseTransitionRatio("Portland"), 0.001)
}
