package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	validator := NewValidator(DefaultThresholds())

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"first and last", "John Smith", true},
		{"three parts", "Mary Anne Walker", true},
		{"apostrophe surname", "Sean O'Brien", true},
		{"single token", "John", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"gibberish parts", "Xqzjk Vbnml", false},
		{"digits in part", "John123 Smith", false},
		{"short parts skip gibberish check", "Ng Wu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := validator.ValidateName(tt.input)
			if tt.valid {
				assert.Empty(t, reason, "input %q", tt.input)
			} else {
				assert.NotEmpty(t, reason, "input %q", tt.input)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	validator := NewValidator(DefaultThresholds())

	t.Run("meets word count", func(t *testing.T) {
		assert.Empty(t, validator.ValidateMessage("hi there you", 3))
	})

	t.Run("below word count", func(t *testing.T) {
		assert.NotEmpty(t, validator.ValidateMessage("hi there", 3))
	})

	t.Run("real words with a number pass", func(t *testing.T) {
		msg := "we need help with our kitchen remodel in area 51"
		assert.Empty(t, validator.ValidateMessage(msg, 3))
	})

	t.Run("keyboard mash rejected", func(t *testing.T) {
		assert.NotEmpty(t, validator.ValidateMessage("xkcdbzzqpwn qqpwmznnbv kkjhgfdmzx", 3))
	})

	t.Run("mostly junk long words rejected", func(t *testing.T) {
		// Each junk token survives the whole-message checks but fails the
		// case transition check individually.
		msg := "we would love to help you with this XaKeLoMiTu BaRuJoMeKi"
		assert.NotEmpty(t, validator.ValidateMessage(msg, 3))
	})

	t.Run("higher minimum enforced", func(t *testing.T) {
		assert.NotEmpty(t, validator.ValidateMessage("short but real text", 10))
	})
}

func TestValidateCity(t *testing.T) {
	validator := NewValidator(DefaultThresholds())

	assert.Empty(t, validator.ValidateCity("Portland"))
	assert.Empty(t, validator.ValidateCity("New York"))
	assert.Empty(t, validator.ValidateCity("Rio"))
	assert.NotEmpty(t, validator.ValidateCity("Xkjfq"))
	assert.NotEmpty(t, validator.ValidateCity("zzqwk mmtbv"))
}

func TestValidate(t *testing.T) {
	validator := NewValidator(DefaultThresholds())

	t.Run("all fields pass", func(t *testing.T) {
		result := validator.Validate(Input{
			Name:         "John Smith",
			CheckName:    true,
			Message:      "looking for a quote on a bathroom renovation",
			CheckMessage: true,
			City:         "Denver",
			CheckCity:    true,
		})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("unchecked fields are ignored", func(t *testing.T) {
		result := validator.Validate(Input{
			Name:      "John Smith",
			CheckName: true,
			Message:   "zz", // would fail if checked
		})
		assert.True(t, result.Valid)
	})

	t.Run("failures keyed by field", func(t *testing.T) {
		result := validator.Validate(Input{
			Name:         "John",
			CheckName:    true,
			Message:      "hi there",
			CheckMessage: true,
		})
		require.False(t, result.Valid)
		assert.Contains(t, result.Errors, FieldName)
		assert.Contains(t, result.Errors, FieldMessage)
		assert.NotContains(t, result.Errors, FieldCity)
	})

	t.Run("idempotent", func(t *testing.T) {
		input := Input{
			Name:         "Xqzjk Vbnml",
			CheckName:    true,
			Message:      "hi there you",
			CheckMessage: true,
			City:         "Austin",
			CheckCity:    true,
		}
		first := validator.Validate(input)
		second := validator.Validate(input)
		assert.Equal(t, first, second)
	})
}
