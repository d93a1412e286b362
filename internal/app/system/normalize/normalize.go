// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quickclass/internal/app/system/textutil"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// ClassName returns the canonical form of a class token.
func ClassName(s string) string {
	return textutil.NormalizeClassName(s)
}

// Description strips markup, collapses runs of whitespace and trims.
func Description(s string) string {
	return strings.Join(strings.Fields(htmlsanitize.StripTags(s)), " ")
}

// Entries canonicalizes a class list the way the server stores it.
// Entries whose class normalizes to empty are dropped; order is kept.
// The result is never nil.
func Entries(in []models.ClassEntry) []models.ClassEntry {
	out := make([]models.ClassEntry, 0, len(in))
	for _, e := range in {
		cls := ClassName(e.Class)
		if cls == "" {
			continue
		}
		out = append(out, models.ClassEntry{Class: cls, Description: Description(e.Description)})
	}
	return out
}

// LoginID trims a login id. Case is kept for display; use LoginIDCI for lookups.
func LoginID(s string) string {
	return strings.TrimSpace(s)
}

// LoginIDCI is the case- and diacritic-insensitive lookup key for a login id.
func LoginIDCI(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Name trims a display name.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lower-cases and trims a role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lower-cases and trims a status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
