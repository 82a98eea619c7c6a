package services

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRE      = regexp.MustCompile("[\t\f\v\r\n \u00a0\u2007\u202f]+")
	multiSpaceRE = regexp.MustCompile(` {2,}`)

	ligatures = strings.NewReplacer(
		"\ufb00", "ff",
		"\ufb01", "fi",
		"\ufb02", "fl",
		"\ufb03", "ffi",
		"\ufb04", "ffl",
	)
)

// cleanText normalisiert Unicode (NFC), löst Ligaturen auf und reduziert
// Whitespace inklusive geschützter Leerzeichen auf ein einzelnes Leerzeichen.
func cleanText(s string) string {
	if s == "" {
		return s
	}
	s = ligatures.Replace(s)
	if normalized, _, err := transform.String(norm.NFC, s); err == nil {
		s = normalized
	}
	s = spaceRE.ReplaceAllString(s, " ")
	s = multiSpaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
