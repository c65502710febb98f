package location

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	repeatHyphens = regexp.MustCompile(`-{2,}`)

	// German umlauts transliterate to digraphs rather than losing the
	// diaeresis, so "Büro" becomes "buero", not "buro".
	umlauts = strings.NewReplacer(
		"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
		"Ä", "ae", "Ö", "oe", "Ü", "ue",
	)

	// stripMarks removes combining marks left over after NFD decomposition,
	// turning "é" into "e", "å" into "a", and so on.
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify derives a URL-safe identifier from a display name.
//
// The result is lowercase ASCII with single hyphens between words. Umlauts
// map to their digraph form, other accented characters lose their marks,
// and anything still outside [a-z0-9] collapses to a hyphen. An empty or
// fully non-ASCII name yields "unnamed".
//
// The mapping is deterministic: equal names always produce equal slugs.
// Distinct names may collide ("Büro" and "Buero" both slugify to "buero");
// collisions are accepted rather than deduplicated.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = umlauts.Replace(s)

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = nonSlugChars.ReplaceAllString(s, "-")
	s = repeatHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return "unnamed"
	}
	return s
}
