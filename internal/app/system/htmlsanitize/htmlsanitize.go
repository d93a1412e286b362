// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc is the policy for admin-authored rich content (block bodies).
	ugc = newUGCPolicy()

	// strict removes every tag; used for single-line text fields.
	strict = bluemonday.StrictPolicy()

	// changelog allows only what the changelog formatter emits.
	changelog = newChangelogPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	return p
}

func newChangelogPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "ul", "li")
	return p
}

// Sanitize removes scripts, event handlers and unsafe URLs from s while
// keeping ordinary formatting markup.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// maxStripPasses bounds StripTags on pathological nested entity encodings.
const maxStripPasses = 8

// StripTags removes all markup from s and returns plain text. Entities are
// decoded so "a & b" survives unchanged; decoding that reveals new tags is
// stripped again until the text stops changing, so
// StripTags(StripTags(s)) == StripTags(s).
func StripTags(s string) string {
	for i := 0; i < maxStripPasses && s != ""; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// SanitizeChangelog restricts s to the small tag set the changelog
// renderer produces.
func SanitizeChangelog(s string) template.HTML {
	return template.HTML(changelog.Sanitize(s))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay accepts either plain text or HTML and returns safe HTML.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
