// Package sanitize turns untrusted HTML or user text into plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips every tag using bluemonday's strict policy. A
// Sanitizer is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a strict sanitizer
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes markup and decodes entities, keeping line structure.
func (s *Sanitizer) Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(input)))
}

// Inline is Text with all whitespace runs collapsed to one space.
func (s *Sanitizer) Inline(input string) string {
	return strings.Join(strings.Fields(s.Text(input)), " ")
}

// Strings applies Inline to every item and drops empty results.
func (s *Sanitizer) Strings(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if v := s.Inline(in); v != "" {
			out = append(out, v)
		}
	}
	return out
}
