// Package textutil holds the small text helpers shared by the class list
// manager and the class selector: class-name normalization, hex colour
// extraction for swatch previews, and the release changelog formatter.
package textutil

import (
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

// ExtractHexColor returns the first "#RGB" or "#RRGGBB" token in text.
// The match is returned exactly as written; it is only ever used to
// colour a preview swatch.
func ExtractHexColor(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	m := hexColorRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// NormalizeClassName trims raw, replaces every character outside
// [A-Za-z0-9_-] with '-' and lowercases the result. It never fails and
// NormalizeClassName(NormalizeClassName(x)) == NormalizeClassName(x).
func NormalizeClassName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Tokens splits a class attribute on whitespace, dropping empty tokens.
func Tokens(classString string) []string {
	return strings.Fields(classString)
}
