package escalation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldEscalateDefaultPhrases(t *testing.T) {
	for _, phrase := range DefaultPhrases {
		t.Run(phrase, func(t *testing.T) {
			assert.True(t, ShouldEscalate(phrase))
			assert.True(t, ShouldEscalate(strings.ToUpper(phrase)))
			assert.True(t, ShouldEscalate("lately I "+phrase+" a lot"))
		})
	}
}

func TestShouldEscalateCases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"mixed case", "I want to DIE", true},
		{"homophone", "I want to dye my hair", false},
		{"unrelated", "When does the leadership programme start?", false},
		{"self harm hyphen", "thinking about Self-Harm again", true},
		{"self harm without hyphen", "self harm", false},
		{"embedded substring", "the suicidesquad screening", true},
		{"multiline", "hello\nI might hurt myself\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldEscalate(tt.text))
		})
	}
}

func TestClassifierExtraPhrases(t *testing.T) {
	c := New("  No Reason To Live ", "", "suicide")

	assert.True(t, c.ShouldEscalate("there is no reason to live"))
	assert.Len(t, c.Phrases(), len(DefaultPhrases)+1)
	assert.False(t, c.ShouldEscalate("   "))
}

func TestClassifierMatches(t *testing.T) {
	c := New()

	assert.Equal(t, []string{"want to die", "end my life"}, c.Matches("I want to die, I want to end my life"))
	assert.Nil(t, c.Matches("good morning"))
	assert.Nil(t, c.Matches(""))
}
