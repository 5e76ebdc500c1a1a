package validation

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy     *bluemonday.Policy
	strictPolicyOnce sync.Once
)

// maxUnescapeRounds bounds how many layers of entity encoding are peeled.
const maxUnescapeRounds = 4

// PlainText strips every HTML element from s and returns trimmed plain text.
// Entities are decoded so "Rock & Roll" round-trips unchanged, and the result
// is sanitized again until stable so encoded markup such as "&lt;b&gt;" cannot
// come back as a tag. Clients must still escape on render.
func PlainText(s string) string {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	out := s
	for range maxUnescapeRounds {
		sanitized := strictPolicy.Sanitize(out)
		next := html.UnescapeString(sanitized)
		if next == out {
			return strings.TrimSpace(next)
		}
		out = next
	}
	// Still nesting after every round: keep the escaped form.
	return strings.TrimSpace(html.EscapeString(strictPolicy.Sanitize(out)))
}
