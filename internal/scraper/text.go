package scraper

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanText trims each line and the whole string and normalizes to NFC, so
// offers typed with combining marks compare equal to precomposed ones.
func CleanText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return norm.NFC.String(strings.TrimSpace(strings.Join(lines, "\n")))
}

// stroked letters carry no combining mark to strip.
var strokeFolder = strings.NewReplacer("ł", "l", "đ", "d", "ø", "o")

// FoldText lowercases and strips diacritics ("Łódź" -> "lodz").
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strokeFolder.Replace(strings.ToLower(strings.TrimSpace(result)))
}
