// Package sanitize detects and optionally strips markup in model-generated text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Text inspects generated task text with a policy that allows no elements.
type Text struct {
	policy *bluemonday.Policy
}

// New returns a Text sanitizer that allows no elements at all.
func New() *Text {
	return &Text{policy: bluemonday.StrictPolicy()}
}

// ContainsMarkup reports whether the strict policy would change s.
// Plain comparisons such as "x<y" may be reported too.
func (t *Text) ContainsMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	return t.plain(s) != s
}

// Clean removes every HTML element from s and trims surrounding space.
// The result is plain text, so entities bluemonday escapes are decoded again.
func (t *Text) Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(t.plain(s))
}

func (t *Text) plain(s string) string {
	return html.UnescapeString(t.policy.Sanitize(s))
}
