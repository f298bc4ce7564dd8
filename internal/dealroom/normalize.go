// Package dealroom joins an externally exported Dealroom table onto the
// processed companies table by website domain, falling back to normalized
// company name. Join-key collisions are reported and excluded, never merged
// silently.
package dealroom

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// foldDiacritics strips combining marks so "Müller" and "Muller" normalize
// to the same key.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormName reduces a company name to a comparable join key.
func NormName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// Domain extracts the registrable host from a URL or bare domain, dropping a
// leading www. Empty when no host can be derived.
func Domain(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !schemeRe.MatchString(u) {
		u = "https://" + u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	return host
}
