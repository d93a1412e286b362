// Package classstore is the admin-side list manager for predefined classes.
//
// A Store owns the authoritative in-memory copy of the class list for one
// editing session. Edits are made a page at a time (paging.PageSize rows)
// and flushed into the list before any navigation, add, delete or save, so
// an edit is never lost by moving around the list. The list only becomes
// durable when Save or Import round-trips through the Gateway, whose
// canonical answer then replaces the in-memory copy.
package classstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/importfmt"
	"github.com/dalemusser/quickclass/internal/app/system/paging"
	"github.com/dalemusser/quickclass/internal/app/system/textutil"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrInFlight is returned when the same network action is already running.
	ErrInFlight = errors.New("classstore: request already in flight")
	// ErrClosed is returned once the store has been closed.
	ErrClosed = errors.New("classstore: store closed")
)

// Gateway persists and retrieves the class list. Implementations must
// re-sanitize everything they receive and answer with the canonical list.
type Gateway interface {
	LoadInitial(ctx context.Context) ([]models.ClassEntry, error)
	Save(ctx context.Context, candidate []models.ClassEntry) ([]models.ClassEntry, error)
	BatchImport(ctx context.Context, raw string, mode ImportMode) (ImportResult, error)
}

// ImportMode selects whether imported rows extend or replace the list.
type ImportMode string

const (
	ImportAppend  ImportMode = "append"
	ImportReplace ImportMode = "replace"
)

// ParseImportMode maps user input to a mode, defaulting to append.
func ParseImportMode(s string) ImportMode {
	if ImportMode(s) == ImportReplace {
		return ImportReplace
	}
	return ImportAppend
}

// ImportResult is the structured answer to a batch import.
type ImportResult struct {
	Message string               `json:"message"`
	Classes []models.ClassEntry  `json:"classes"`
	Skipped []importfmt.RowError `json:"skipped,omitempty"`
}

// PageEdits are the rows of one page as currently shown in the form, in
// display order. A nil value means there is nothing to flush.
type PageEdits []models.ClassEntry

// Config is the startup input for a Store.
type Config struct {
	Classes []models.ClassEntry
	Strings Strings
}

// Store is the list manager for one editing session. It is safe for
// concurrent use; network calls run without holding the lock.
type Store struct {
	mu  sync.Mutex
	gw  Gateway
	log *zap.Logger
	str Strings
	now func() time.Time

	entries     []models.ClassEntry
	currentPage int

	saving    bool
	importing bool
	closed    bool
	status    Status
}

// New creates a Store seeded with cfg.Classes.
func New(cfg Config, gw Gateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		gw:  gw,
		log: logger,
		str: cfg.Strings.withDefaults(),
		now: time.Now,
	}
	s.Load(cfg.Classes)
	return s
}

// Open loads the initial list from gw and returns a Store around it.
func Open(ctx context.Context, gw Gateway, str Strings, logger *zap.Logger) (*Store, error) {
	initial, err := gw.LoadInitial(ctx)
	if err != nil {
		return nil, err
	}
	return New(Config{Classes: initial, Strings: str}, gw, logger), nil
}

// Load replaces the list wholesale and returns to page 1.
func (s *Store) Load(initial []models.ClassEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = models.CloneEntries(initial)
	s.currentPage = 1
}

// Len returns the number of entries, including unsaved blank rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the full list.
func (s *Store) Entries() []models.ClassEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneEntries(s.entries)
}

// CurrentPage returns the page currently shown.
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// TotalPages returns max(1, ceil(Len()/paging.PageSize)).
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paging.TotalPages(len(s.entries))
}

// Page clamps page into range, makes it the current page and returns a
// copy of its window.
func (s *Store) Page(page int) []models.ClassEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage = paging.Clamp(page, len(s.entries))
	return s.window(s.currentPage)
}

// SyncPage overwrites page's window with edits. The list length never
// changes: surplus edits are ignored and missing ones leave rows as they are.
func (s *Store) SyncPage(edits PageEdits, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(edits, page)
}

// AddEntry flushes edits for the current page, appends a blank entry and
// moves to the last page so the new row is visible.
func (s *Store) AddEntry(edits PageEdits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(edits, s.currentPage)
	s.entries = append(s.entries, models.ClassEntry{})
	s.currentPage = paging.TotalPages(len(s.entries))
}

// DeleteEntry removes the entry at globalIndex. Callers flush the current
// page with SyncPage first. Out-of-range indexes are ignored and reported
// as false. If the deletion empties the last page, the current page moves
// back.
func (s *Store) DeleteEntry(globalIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if globalIndex < 0 || globalIndex >= len(s.entries) {
		return false
	}
	s.entries = append(s.entries[:globalIndex], s.entries[globalIndex+1:]...)
	s.currentPage = paging.Clamp(s.currentPage, len(s.entries))
	return true
}

// NextPage flushes edits and moves forward one page, stopping at the last.
func (s *Store) NextPage(edits PageEdits) int {
	return s.GoToPage(edits, s.CurrentPage()+1)
}

// PrevPage flushes edits and moves back one page, stopping at the first.
func (s *Store) PrevPage(edits PageEdits) int {
	return s.GoToPage(edits, s.CurrentPage()-1)
}

// GoToPage flushes edits for the current page and jumps to page (clamped).
func (s *Store) GoToPage(edits PageEdits, page int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(edits, s.currentPage)
	s.currentPage = paging.Clamp(page, len(s.entries))
	return s.currentPage
}

// Reorder permutes the rows of page: order[i] is the in-page index of the
// row that should end up at position i. Anything that is not a
// permutation of the page is ignored and reported as false. Rows never
// move across pages.
func (s *Store) Reorder(page int, order []int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderLocked(paging.Clamp(page, len(s.entries)), order)
}

// Move flushes edits and shifts the row at in-page index from to in-page
// index to on the current page.
func (s *Store) Move(edits PageEdits, from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	page := s.currentPage
	s.syncLocked(edits, page)
	start, end := paging.Bounds(page, len(s.entries))
	n := end - start
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != from {
			order = append(order, i)
		}
	}
	order = append(order[:to], append([]int{from}, order[to:]...)...)
	return s.reorderLocked(page, order)
}

// CollectForSave flushes edits for the current page and returns the
// payload for the gateway: entries with an empty normalized class are
// dropped, class names are normalized and descriptions trimmed.
func (s *Store) CollectForSave(edits PageEdits) []models.ClassEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(edits, s.currentPage)
	return collect(s.entries)
}

// ReplaceAfterSave installs the canonical list returned by the backend and
// keeps the current page in range.
func (s *Store) ReplaceAfterSave(canonical []models.ClassEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(canonical)
}

// Close marks the store dead. Results of requests still in flight are
// discarded when they arrive.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) syncLocked(edits PageEdits, page int) {
	if edits == nil {
		return
	}
	start, end := paging.Bounds(page, len(s.entries))
	for i := 0; i < len(edits) && start+i < end; i++ {
		s.entries[start+i] = edits[i]
	}
}

func (s *Store) replaceLocked(canonical []models.ClassEntry) {
	s.entries = models.CloneEntries(canonical)
	s.currentPage = paging.Clamp(s.currentPage, len(s.entries))
}

func (s *Store) reorderLocked(page int, order []int) bool {
	start, end := paging.Bounds(page, len(s.entries))
	if len(order) != end-start || !isPermutation(order) {
		return false
	}
	window := s.window(page)
	for i, from := range order {
		s.entries[start+i] = window[from]
	}
	return true
}

func (s *Store) window(page int) []models.ClassEntry {
	start, end := paging.Bounds(page, len(s.entries))
	return models.CloneEntries(s.entries[start:end])
}

func collect(entries []models.ClassEntry) []models.ClassEntry {
	out := make([]models.ClassEntry, 0, len(entries))
	for _, e := range entries {
		name := textutil.NormalizeClassName(e.Class)
		if name == "" {
			continue
		}
		out = append(out, models.ClassEntry{
			Class:       name,
			Description: strings.TrimSpace(e.Description),
		})
	}
	return out
}

func isPermutation(order []int) bool {
	seen := make([]bool, len(order))
	for _, v := range order {
		if v < 0 || v >= len(order) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
