package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/dalemusser/quickclass/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	result := htmlsanitize.Sanitize("")
	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	result := htmlsanitize.Sanitize("Hello, World!")
	if result != "Hello, World!" {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	result := htmlsanitize.Sanitize(input)
	if result != input {
		t.Errorf("expected safe HTML preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	result := htmlsanitize.Sanitize(input)
	if result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ul><li>Item 1</li><li>Item 2</li></ul>"
	result := htmlsanitize.Sanitize(input)
	if result != input {
		t.Errorf("expected list preserved, got %q", result)
	}
}

func TestSanitize_RemovesOnError(t *testing.T) {
	input := `<img src="x" onerror="alert('xss')">`
	result := htmlsanitize.Sanitize(input)
	if strings.Contains(result, "onerror") {
		t.Error("expected onerror attribute to be removed")
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{"<b>bold</b> text", "bold text"},
		{"red & blue", "red & blue"},
		{"<script>alert(1)</script>ok", "ok"},
		{"a &lt;b&gt; c", "a  c"},
		{"5 < 6 & 7 > 3", "5 < 6 & 7 > 3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := htmlsanitize.StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeChangelog_DropsUnexpectedTags(t *testing.T) {
	got := string(htmlsanitize.SanitizeChangelog(`<ul><li><strong>x</strong></li></ul><a href="https://example.com">y</a>`))
	if !strings.Contains(got, "<ul><li><strong>x</strong></li></ul>") {
		t.Errorf("expected list markup preserved, got %q", got)
	}
	if strings.Contains(got, "<a") {
		t.Errorf("expected link removed, got %q", got)
	}
}

func TestPlainTextToHTML_NewlinesConverted(t *testing.T) {
	result := htmlsanitize.PlainTextToHTML("Line 1\nLine 2\nLine 3")
	expected := "<p>Line 1<br>Line 2<br>Line 3</p>"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestPlainTextToHTML_AmpersandEscaped(t *testing.T) {
	result := htmlsanitize.PlainTextToHTML("A & B")
	expected := "<p>A &amp; B</p>"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestPrepareForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  template.HTML
	}{
		{"empty", "", ""},
		{"plain", "Hello, World!", "<p>Hello, World!</p>"},
		{"html", "<p>Hello</p>", "<p>Hello</p>"},
		{"dangerous", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PrepareForDisplay(tt.input); got != tt.want {
				t.Errorf("PrepareForDisplay(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripTags_Idempotent(t *testing.T) {
	inputs := []string{
		"a &lt;b&gt; c",
		"&amp;lt;em&amp;gt;nested&amp;lt;/em&amp;gt; entities",
		"<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>",
		"Tom &amp; Jerry",
		"5 < 6 & 7 > 3",
	}
	for _, in := range inputs {
		once := htmlsanitize.StripTags(in)
		if twice := htmlsanitize.StripTags(once); twice != once {
			t.Errorf("StripTags not stable for %q: %q then %q", in, once, twice)
		}
	}
}
