package textutil

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/htmlsanitize"
)

var (
	strongEmRe = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	boldRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.+?)\*`)
	listItemRe = regexp.MustCompile(`^- (.+)$`)
)

// EmptyChangelog is shown when a release carries no body.
const EmptyChangelog = "<p>No changelog provided.</p>"

// RenderChangelog converts a release body written in a small markdown
// subset to HTML. Text is escaped first, **bold** and *italic* spans are
// converted, runs of "- item" lines become one <ul>, and the remaining
// line breaks become <br>. Anything else passes through escaped.
func RenderChangelog(body string) template.HTML {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if strings.TrimSpace(body) == "" {
		return template.HTML(EmptyChangelog)
	}

	var b strings.Builder
	inList := false
	needBreak := false

	for _, line := range strings.Split(body, "\n") {
		line = inline(template.HTMLEscapeString(strings.TrimRight(line, " \t")))

		if m := listItemRe.FindStringSubmatch(line); m != nil {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			b.WriteString(m[1])
			b.WriteString("</li>")
			needBreak = false
			continue
		}

		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		if needBreak {
			b.WriteString("<br>\n")
		}
		b.WriteString(line)
		needBreak = true
	}
	if inList {
		b.WriteString("</ul>")
	}

	return htmlsanitize.SanitizeChangelog(b.String())
}

// inline converts emphasis markers. Each pattern only sees the text between
// matches of the one before it, so the emitted tags always nest.
func inline(s string) string {
	return spans(s, strongEmRe, "<strong><em>", "</em></strong>", noop, bold)
}

func bold(s string) string {
	return spans(s, boldRe, "<strong>", "</strong>", italic, italic)
}

func italic(s string) string {
	return italicRe.ReplaceAllString(s, "<em>$1</em>")
}

func noop(s string) string { return s }

// spans wraps every match of re in pre and post, passing the match's text
// through inner and the text between matches through outer.
func spans(s string, re *regexp.Regexp, pre, post string, inner, outer func(string) string) string {
	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(outer(s[last:m[0]]))
		b.WriteString(pre)
		b.WriteString(inner(s[m[2]:m[3]]))
		b.WriteString(post)
		last = m[1]
	}
	b.WriteString(outer(s[last:]))
	return b.String()
}
