package content

import (
	"strings"
	"unicode"
)

// Field names used as keys in validation results.
const (
	FieldName    = "name"
	FieldMessage = "message"
	FieldCity    = "city"
)

// Input names the free-text fields to validate. Fields whose Check flag is
// false are ignored, so each form endpoint validates only the fields it has.
type Input struct {
	Name         string
	CheckName    bool
	Message      string
	CheckMessage bool
	// MinMessageWords overrides the configured minimum when > 0.
	MinMessageWords int
	City            string
	CheckCity       bool
}

// Result maps each failing field to its first failure reason. Valid is true
// when every checked field passed.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// Validator applies the heuristic checks to submission fields. It is pure:
// identical input always yields an identical result.
type Validator struct {
	detector *Detector
	t        Thresholds
}

// NewValidator creates a validator with the given thresholds
func NewValidator(t Thresholds) *Validator {
	return &Validator{
		detector: NewDetector(t),
		t:        t,
	}
}

// Validate runs every applicable field validator and collects failures
func (v *Validator) Validate(input Input) Result {
	errors := make(map[string]string)

	if input.CheckName {
		if reason := v.ValidateName(input.Name); reason != "" {
			errors[FieldName] = reason
		}
	}
	if input.CheckMessage {
		minWords := input.MinMessageWords
		if minWords <= 0 {
			minWords = v.t.MinMessageWords
		}
		if reason := v.ValidateMessage(input.Message, minWords); reason != "" {
			errors[FieldMessage] = reason
		}
	}
	if input.CheckCity {
		if reason := v.ValidateCity(input.City); reason != "" {
			errors[FieldCity] = reason
		}
	}

	return Result{Valid: len(errors) == 0, Errors: errors}
}

// ValidateName checks that the value resolves to at least a first and last
// name and that each part looks like a plausible name. It returns an empty
// string when the name is acceptable, otherwise a user-correctable reason.
func (v *Validator) ValidateName(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "please enter your first and last name"
	}

	for _, part := range parts {
		if alphaRatio(part) < v.t.MinAlphaPartRatio {
			return "name contains too many non-letter characters"
		}
		if len([]rune(part)) > v.t.GibberishPartLength && v.detector.IsGibberish(part) {
			return "please enter a valid name"
		}
	}
	return ""
}

// ValidateMessage checks the word count, the message as a whole, and the
// proportion of junk among its long words. Long-word sampling catches
// messages that pad real words with generated tokens.
func (v *Validator) ValidateMessage(message string, minWords int) string {
	words := strings.Fields(message)
	if len(words) < minWords {
		return "please write a few more words about your project"
	}

	if v.detector.IsGibberish(message) {
		return "message does not appear to be valid text"
	}

	longWords := 0
	gibberishLongWords := 0
	for _, word := range words {
		if len(asciiLetters(word)) <= v.t.LongWordLength {
			continue
		}
		longWords++
		if v.detector.IsGibberish(word) {
			gibberishLongWords++
		}
	}
	if longWords > 0 {
		fraction := float64(gibberishLongWords) / float64(longWords)
		if fraction > v.t.LongWordGibberishFraction {
			return "message does not appear to be valid text"
		}
	}

	return ""
}

// ValidateCity checks the city value as a single token
func (v *Validator) ValidateCity(city string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, city)

	if v.detector.IsGibberish(stripped) {
		return "please enter a valid city"
	}
	return ""
}

func alphaRatio(part string) float64 {
	runes := []rune(part)
	if len(runes) == 0 {
		return 0
	}
	alpha := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(len(runes))
}
