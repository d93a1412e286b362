package classstore

import (
	"html/template"
	"time"
)

// StatusTTL is how long a status message stays visible.
const StatusTTL = 3 * time.Second

// StatusKind distinguishes success from failure messages.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the transient outcome of the last save or import.
type Status struct {
	Kind    StatusKind
	Message string
	At      time.Time

	// Details is optional pre-escaped detail shown under the message,
	// such as the rows an import skipped.
	Details template.HTML
}

// Visible reports whether the status should still be shown at now.
func (st Status) Visible(now time.Time) bool {
	return st.Kind != StatusNone && now.Before(st.At.Add(StatusTTL))
}

// OK reports whether the status records a success.
func (st Status) OK() bool { return st.Kind == StatusSuccess }

// Strings are the user-facing texts a Store produces.
type Strings struct {
	Saved         string
	Error         string
	ConfirmDelete string
	NothingToSave string
	ImportEmpty   string
	Busy          string
}

// DefaultStrings are used for any field left empty.
var DefaultStrings = Strings{
	Saved:         "Saved!",
	Error:         "Something went wrong.",
	ConfirmDelete: "Are you sure you want to delete this class?",
	NothingToSave: "Saved! The list is empty.",
	ImportEmpty:   "Paste at least one line to import.",
	Busy:          "Still working on the previous request.",
}

func (s Strings) withDefaults() Strings {
	d := DefaultStrings
	if s.Saved != "" {
		d.Saved = s.Saved
	}
	if s.Error != "" {
		d.Error = s.Error
	}
	if s.ConfirmDelete != "" {
		d.ConfirmDelete = s.ConfirmDelete
	}
	if s.NothingToSave != "" {
		d.NothingToSave = s.NothingToSave
	}
	if s.ImportEmpty != "" {
		d.ImportEmpty = s.ImportEmpty
	}
	if s.Busy != "" {
		d.Busy = s.Busy
	}
	return d
}
