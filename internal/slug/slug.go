// Package slug derives URL slugs from post titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugRe   = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRunRe = regexp.MustCompile(`-{2,}`)
)

// Make lowercases s, strips accents, turns whitespace into hyphens and drops
// everything else that is not [a-z0-9-].
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)

	out = strings.ToLower(out)
	out = strings.Join(strings.Fields(out), "-")
	out = nonSlugRe.ReplaceAllString(out, "")
	out = hyphenRunRe.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
