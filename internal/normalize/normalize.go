// Package normalize provides the pure text and URL canonicalisation used for
// fuzzy comparison and deduplication. Every function is total and stable
// across process restarts: the outputs feed fingerprints that must not drift.
package normalize

import (
	"net/url"
	"strings"
	"unicode"
)

// Whitespace collapses runs of whitespace to single spaces and trims.
func Whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text lower-cases, replaces every non-alphanumeric rune with a space and
// collapses whitespace. Used for fuzzy equality on titles, companies and
// locations.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return Whitespace(b.String())
}

// URL reduces a URL to a lower-cased host plus path with any trailing slash
// removed. Scheme, query and fragment are deliberately ignored so trivial
// variants of the same link collapse to one identity signal. Returns the
// empty string for missing or unparseable input.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// Tokens returns the set of words in the given texts after Text
// normalisation. The zero-value map is never returned; an empty set is.
func Tokens(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range texts {
		for _, w := range strings.Fields(Text(t)) {
			set[w] = struct{}{}
		}
	}
	return set
}
