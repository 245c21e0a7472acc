// Package escalation flags crisis-risk text with a keyword check.
//
// Matching is a case-insensitive substring test, not a word-boundary test.
// A phrase embedded in a longer word still matches.
package escalation

import "strings"

// DefaultPhrases is the fixed risk phrase list.
var DefaultPhrases = []string{
	"suicide",
	"kill myself",
	"want to die",
	"end my life",
	"self-harm",
	"hurt myself",
	"harm myself",
}

// Classifier checks text against a set of lower-cased phrases.
type Classifier struct {
	phrases []string
}

// New returns a Classifier over DefaultPhrases plus any extra phrases.
// Blank and duplicate phrases are dropped.
func New(extra ...string) *Classifier {
	seen := make(map[string]bool, len(DefaultPhrases)+len(extra))
	phrases := make([]string, 0, len(DefaultPhrases)+len(extra))
	for _, p := range append(append([]string(nil), DefaultPhrases...), extra...) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		phrases = append(phrases, p)
	}
	return &Classifier{phrases: phrases}
}

// Phrases returns a copy of the configured phrases.
func (c *Classifier) Phrases() []string {
	return append([]string(nil), c.phrases...)
}

// ShouldEscalate reports whether text contains any risk phrase.
func (c *Classifier) ShouldEscalate(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Matches returns every phrase found in text, in phrase-list order.
func (c *Classifier) Matches(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var out []string
	for _, p := range c.phrases {
		if strings.Contains(lower, p) {
			out = append(out, p)
		}
	}
	return out
}

var defaultClassifier = New()

// ShouldEscalate checks text against DefaultPhrases.
func ShouldEscalate(text string) bool {
	return defaultClassifier.ShouldEscalate(text)
}
