package importfmt

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dalemusser/quickclass/internal/domain/models"
)

func TestParse_Separators(t *testing.T) {
	tests := []struct {
		name string
		line string
		want models.ClassEntry
	}{
		{"tab", "hero\tBig title", models.ClassEntry{Class: "hero", Description: "Big title"}},
		{"comma", "hero,Big title", models.ClassEntry{Class: "hero", Description: "Big title"}},
		{"semicolon", "hero; Big title", models.ClassEntry{Class: "hero", Description: "Big title"}},
		{"pipe", "hero|Big title", models.ClassEntry{Class: "hero", Description: "Big title"}},
		{"no separator", "hero", models.ClassEntry{Class: "hero"}},
		{"earliest wins", "hero|Red, bold", models.ClassEntry{Class: "hero", Description: "Red, bold"}},
		{"rest kept", "hero,Red,bold", models.ClassEntry{Class: "hero", Description: "Red,bold"}},
		{"quoted", `"Hero Title","Red, bold"`, models.ClassEntry{Class: "hero-title", Description: "Red, bold"}},
		{"normalized", "Hero Title!,<b>x</b>", models.ClassEntry{Class: "hero-title-", Description: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(res.Entries) != 1 {
				t.Fatalf("got %d entries, want 1 (errors %+v)", len(res.Entries), res.Errors)
			}
			if res.Entries[0] != tt.want {
				t.Errorf("entry = %+v, want %+v", res.Entries[0], tt.want)
			}
		})
	}
}

func TestParse_SkipsNoise(t *testing.T) {
	raw := "\ufeffclass,description\r\n\n# comment\nbtn,Button\n   \nlink\n"
	res, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []models.ClassEntry{
		{Class: "btn", Description: "Button"},
		{Class: "link"},
	}
	if !reflect.DeepEqual(res.Entries, want) {
		t.Errorf("Entries = %+v, want %+v", res.Entries, want)
	}
	if res.Skipped() != 0 {
		t.Errorf("Skipped = %d, want 0", res.Skipped())
	}
}

func TestParse_HeaderOnlyOnFirstLine(t *testing.T) {
	res, err := Parse("btn,Button\nclass,description")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Errorf("got %d entries, want 2", len(res.Entries))
	}
}

func TestParse_RowErrors(t *testing.T) {
	res, err := Parse("btn,Button\n!!!x\n ,orphan description")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(res.Entries))
	}
	if res.Entries[1].Class != "---x" {
		t.Errorf("second class = %q", res.Entries[1].Class)
	}
	if res.Skipped() != 1 {
		t.Fatalf("Skipped = %d, want 1", res.Skipped())
	}
	if res.Errors[0].Line != 3 || res.Errors[0].Reason != "missing class name" {
		t.Errorf("row error = %+v", res.Errors[0])
	}
	if got := res.Message(); got != "Imported 2 classes (1 skipped)." {
		t.Errorf("Message = %q", got)
	}
}

func TestParse_TooManyRows(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= MaxRows; i++ {
		b.WriteString("c\n")
	}
	_, err := Parse(b.String())
	if !errors.Is(err, ErrTooManyRows) {
		t.Errorf("err = %v, want ErrTooManyRows", err)
	}
}

func TestParse_TooLarge(t *testing.T) {
	_, err := Parse(strings.Repeat("a", MaxBytes+1))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestParse_Empty(t *testing.T) {
	res, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Entries) != 0 || res.Skipped() != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestErrorsHTML(t *testing.T) {
	if got := ErrorsHTML(nil); got != "" {
		t.Errorf("ErrorsHTML(nil) = %q", got)
	}
	errs := make([]RowError, 7)
	for i := range errs {
		errs[i] = RowError{Line: i + 1, Raw: "<x>", Reason: "missing class name"}
	}
	got := string(ErrorsHTML(errs))
	if strings.Contains(got, "<x>") {
		t.Error("raw line was not escaped")
	}
	if !strings.Contains(got, "and 2 more") {
		t.Errorf("missing overflow note: %s", got)
	}
}
