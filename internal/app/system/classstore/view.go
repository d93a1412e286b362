package classstore

import (
	"github.com/dalemusser/quickclass/internal/app/system/paging"
	"github.com/dalemusser/quickclass/internal/app/system/textutil"
)

// Row is one editable line of the current page.
type Row struct {
	Index       int // global position in the list
	Local       int // position within the page
	Class       string
	Description string
	Swatch      string // hex colour found in the description, if any
	First       bool
	Last        bool
}

// View is everything needed to render the current page of the manager.
type View struct {
	Rows          []Row
	Range         paging.Range
	Status        Status
	StatusVisible bool
	Saving        bool
	Importing     bool
	ConfirmDelete string
}

// View builds the render model for the current page.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := paging.Clamp(s.currentPage, len(s.entries))
	s.currentPage = page
	start, end := paging.Bounds(page, len(s.entries))

	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		e := s.entries[i]
		swatch, _ := textutil.ExtractHexColor(e.Description)
		rows = append(rows, Row{
			Index:       i,
			Local:       i - start,
			Class:       e.Class,
			Description: e.Description,
			Swatch:      swatch,
			First:       i == start,
			Last:        i == end-1,
		})
	}

	return View{
		Rows:          rows,
		Range:         paging.ComputeRange(page, len(s.entries)),
		Status:        s.status,
		StatusVisible: s.status.Visible(s.now()),
		Saving:        s.saving,
		Importing:     s.importing,
		ConfirmDelete: s.str.ConfirmDelete,
	}
}
