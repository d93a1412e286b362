// Package selector is the editor-side control that attaches predefined
// classes to a block's class attribute.
//
// The widget never owns the class string: it reads the block's current
// value, and every change is reported through the onChange callback so the
// host can store it. Tokens that are not predefined classes are left
// exactly where they are.
package selector

import (
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/textutil"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Config is the startup input shared by every widget in an editor session.
type Config struct {
	Classes []models.ClassEntry
	Strings Strings
}

// State is the open/closed state of the option menu.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Widget is one selector instance bound to one block.
type Widget struct {
	classes  []models.ClassEntry
	known    map[string]struct{}
	str      Strings
	state    State
	search   string
	current  string
	onChange func(string)
}

// New creates a closed widget for classString. onChange may be nil.
func New(cfg Config, classString string, onChange func(string)) *Widget {
	known := make(map[string]struct{}, len(cfg.Classes))
	for _, c := range cfg.Classes {
		known[c.Class] = struct{}{}
	}
	return &Widget{
		classes:  cfg.Classes,
		known:    known,
		str:      cfg.Strings.withDefaults(),
		state:    Closed,
		current:  classString,
		onChange: onChange,
	}
}

// State returns the current menu state.
func (w *Widget) State() State { return w.state }

// IsOpen reports whether the option menu is showing.
func (w *Widget) IsOpen() bool { return w.state == Open }

// SearchTerm returns the active filter text.
func (w *Widget) SearchTerm() string { return w.search }

// ClassString returns the class attribute as last written.
func (w *Widget) ClassString() string { return w.current }

// Activate handles a click on the trigger: it opens a closed menu and
// closes an open one.
func (w *Widget) Activate() {
	if w.state == Open {
		w.close()
		return
	}
	w.state = Open
}

// Dismiss closes the menu, e.g. after a pointer interaction outside it.
func (w *Widget) Dismiss() {
	if w.state == Open {
		w.close()
	}
}

func (w *Widget) close() {
	w.state = Closed
	w.search = ""
}

// Search sets the filter text. It has no effect while the menu is closed.
func (w *Widget) Search(term string) {
	if w.state != Open {
		return
	}
	w.search = term
}

// SelectedTokens returns the predefined classes present in the class
// string, in predefined order. Duplicate predefined classes collapse into
// one token.
func (w *Widget) SelectedTokens() []string {
	present := make(map[string]struct{})
	for _, t := range textutil.Tokens(w.current) {
		present[t] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, c := range w.classes {
		if _, ok := present[c.Class]; !ok {
			continue
		}
		if _, dup := seen[c.Class]; dup {
			continue
		}
		seen[c.Class] = struct{}{}
		out = append(out, c.Class)
	}
	return out
}

// IsSelected reports whether token is present in the class string.
func (w *Widget) IsSelected(token string) bool {
	for _, t := range textutil.Tokens(w.current) {
		if t == token {
			return true
		}
	}
	return false
}

// VisibleOptions returns the predefined classes matching the search term
// case-insensitively against class or description. An empty term matches
// everything.
func (w *Widget) VisibleOptions() []models.ClassEntry {
	return filter(w.classes, w.search)
}

func filter(classes []models.ClassEntry, term string) []models.ClassEntry {
	term = text.Fold(strings.TrimSpace(term))
	if term == "" {
		return classes
	}
	var out []models.ClassEntry
	for _, c := range classes {
		if strings.Contains(text.Fold(c.Class), term) ||
			strings.Contains(text.Fold(c.Description), term) {
			out = append(out, c)
		}
	}
	return out
}

// Toggle removes every occurrence of token if present, otherwise appends
// it once. Other tokens keep their order.
func (w *Widget) Toggle(token string) {
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return
	}

	tokens := textutil.Tokens(w.current)
	kept := tokens[:0:0]
	removed := false
	for _, t := range tokens {
		if t == token {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		kept = append(kept, token)
	}
	w.set(strings.Join(kept, " "))
}

// ClearAll removes every predefined class and keeps the rest in order.
func (w *Widget) ClearAll() {
	tokens := textutil.Tokens(w.current)
	kept := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := w.known[t]; ok {
			continue
		}
		kept = append(kept, t)
	}
	w.set(strings.Join(kept, " "))
}

func (w *Widget) set(classString string) {
	w.current = classString
	if w.onChange != nil {
		w.onChange(classString)
	}
}
