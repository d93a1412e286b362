package selector

import (
	"fmt"

	"github.com/dalemusser/quickclass/internal/app/system/textutil"
)

// Strings are the texts shown by the widget.
type Strings struct {
	Label             string
	Placeholder       string
	SelectedOne       string
	SelectedMany      string // fmt verb %d receives the count
	ClearAll          string
	SearchPlaceholder string
	NoMatches         string
	Close             string
}

// DefaultStrings are used for any field left empty.
var DefaultStrings = Strings{
	Label:             "Quick Classes",
	Placeholder:       "Select classes...",
	SelectedOne:       "1 class selected",
	SelectedMany:      "%d classes selected",
	ClearAll:          "Clear all",
	SearchPlaceholder: "Search classes...",
	NoMatches:         "No matching classes.",
	Close:             "Close",
}

func (s Strings) withDefaults() Strings {
	d := DefaultStrings
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&d.Label, s.Label},
		{&d.Placeholder, s.Placeholder},
		{&d.SelectedOne, s.SelectedOne},
		{&d.SelectedMany, s.SelectedMany},
		{&d.ClearAll, s.ClearAll},
		{&d.SearchPlaceholder, s.SearchPlaceholder},
		{&d.NoMatches, s.NoMatches},
		{&d.Close, s.Close},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return d
}

// Option is one row of the open menu.
type Option struct {
	Class       string
	Description string
	Swatch      string
	Selected    bool
}

// Tag is one selected class shown under the trigger.
type Tag struct {
	Class  string
	Swatch string
}

// ViewModel describes the widget for a renderer. It carries no behaviour.
type ViewModel struct {
	Label       string
	TriggerText string
	IsOpen      bool
	SearchTerm  string
	ShowClear   bool
	Options     []Option
	NoMatches   bool
	Tags        []Tag
	ClassString string
	Strings     Strings
}

// SelectionState is the per-instance UI state a host keeps between renders.
type SelectionState struct {
	IsOpen     bool
	SearchTerm string
}

// Render is the pure form of the widget: given the predefined classes,
// the current class string and the UI state, it returns what to show.
func Render(cfg Config, classString string, st SelectionState) ViewModel {
	w := New(cfg, classString, nil)
	if st.IsOpen {
		w.Activate()
		w.Search(st.SearchTerm)
	}
	return w.View()
}

// View builds the render model for the widget's current state.
func (w *Widget) View() ViewModel {
	selected := w.SelectedTokens()

	vm := ViewModel{
		Label:       w.str.Label,
		TriggerText: w.triggerText(len(selected)),
		IsOpen:      w.state == Open,
		SearchTerm:  w.search,
		ShowClear:   len(selected) > 0,
		ClassString: w.current,
		Strings:     w.str,
	}

	descByClass := make(map[string]string, len(w.classes))
	for _, c := range w.classes {
		if _, ok := descByClass[c.Class]; !ok {
			descByClass[c.Class] = c.Description
		}
	}
	for _, cls := range selected {
		swatch, _ := textutil.ExtractHexColor(descByClass[cls])
		vm.Tags = append(vm.Tags, Tag{Class: cls, Swatch: swatch})
	}

	if vm.IsOpen {
		isSel := make(map[string]bool, len(selected))
		for _, cls := range selected {
			isSel[cls] = true
		}
		for _, c := range w.VisibleOptions() {
			swatch, _ := textutil.ExtractHexColor(c.Description)
			vm.Options = append(vm.Options, Option{
				Class:       c.Class,
				Description: c.Description,
				Swatch:      swatch,
				Selected:    isSel[c.Class],
			})
		}
		vm.NoMatches = len(vm.Options) == 0
	}

	return vm
}

func (w *Widget) triggerText(n int) string {
	switch n {
	case 0:
		return w.str.Placeholder
	case 1:
		return w.str.SelectedOne
	default:
		return fmt.Sprintf(w.str.SelectedMany, n)
	}
}
