// Package importfmt parses the plain-text bulk import format for class
// lists: one `class<SEP>description` entry per line.
package importfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/normalize"
	"github.com/dalemusser/quickclass/internal/domain/models"
)

// Limits for a single import.
const (
	MaxBytes = 1 << 20 // 1 MB
	MaxRows  = 2000
)

// ErrTooManyRows is returned when the text holds more than MaxRows entries.
var ErrTooManyRows = fmt.Errorf("import exceeds %d rows", MaxRows)

// ErrTooLarge is returned when the text is larger than MaxBytes.
var ErrTooLarge = errors.New("import text is too large")

// separators in the order they are tried when two share a position.
const separators = "\t,;|"

const bom = "\ufeff"

// RowError describes a line that could not be turned into an entry.
type RowError struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Result is the outcome of Parse.
type Result struct {
	Entries []models.ClassEntry
	Errors  []RowError
}

// Skipped is the number of data lines that produced no entry.
func (r Result) Skipped() int { return len(r.Errors) }

// Message is the summary line shown after an import.
func (r Result) Message() string {
	return Message(len(r.Entries), r.Skipped())
}

// Message formats the import summary.
func Message(imported, skipped int) string {
	return fmt.Sprintf("Imported %d classes (%d skipped).", imported, skipped)
}

// Parse reads raw import text. Entries come back canonicalized and in
// input order. Blank lines, `#` comments, a leading BOM and a
// `class,description` header line are ignored.
func Parse(raw string) (Result, error) {
	if len(raw) > MaxBytes {
		return Result{}, ErrTooLarge
	}
	raw = strings.TrimPrefix(raw, bom)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var res Result
	headerChecked := false
	rows := 0

	for i, line := range strings.Split(raw, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		class, desc, err := splitLine(trimmed)
		if !headerChecked {
			headerChecked = true
			if err == nil && isHeader(class, desc) {
				continue
			}
		}

		rows++
		if rows > MaxRows {
			return Result{}, ErrTooManyRows
		}

		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: lineNo, Raw: trimmed, Reason: "malformed quoting"})
			continue
		}
		cls := normalize.ClassName(class)
		if cls == "" {
			res.Errors = append(res.Errors, RowError{Line: lineNo, Raw: trimmed, Reason: "missing class name"})
			continue
		}
		res.Entries = append(res.Entries, models.ClassEntry{
			Class:       cls,
			Description: normalize.Description(desc),
		})
	}

	return res, nil
}

// splitLine splits one line at its separator, honouring CSV quoting.
// Everything after the first separator belongs to the description.
func splitLine(line string) (class, desc string, err error) {
	sep := separatorFor(line)
	if sep == 0 {
		return unquote(line), "", nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rec, err := r.Read()
	if err != nil {
		return "", "", err
	}
	if len(rec) == 0 {
		return "", "", nil
	}
	return rec[0], strings.Join(rec[1:], string(sep)), nil
}

// separatorFor returns the separator that occurs first on the line,
// ignoring anything inside double quotes. Zero means none.
func separatorFor(line string) rune {
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes && strings.ContainsRune(separators, r) {
			return r
		}
	}
	return 0
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

func isHeader(class, desc string) bool {
	return strings.EqualFold(strings.TrimSpace(class), "class") &&
		strings.EqualFold(strings.TrimSpace(desc), "description")
}

// ErrorsHTML formats the first few row errors for display.
func ErrorsHTML(errs []RowError) template.HTML {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Some lines were skipped:<br>")

	max := 5
	if len(errs) < max {
		max = len(errs)
	}
	for i := 0; i < max; i++ {
		e := errs[i]
		b.WriteString("• line ")
		fmt.Fprintf(&b, "%d", e.Line)
		b.WriteString(": ")
		b.WriteString(template.HTMLEscapeString(e.Raw))
		b.WriteString(" → ")
		b.WriteString(template.HTMLEscapeString(e.Reason))
		b.WriteString("<br>")
	}
	if len(errs) > max {
		fmt.Fprintf(&b, "…and %d more.<br>", len(errs)-max)
	}
	return template.HTML(b.String())
}
