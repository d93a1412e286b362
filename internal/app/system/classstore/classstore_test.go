package classstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/importfmt"
	"github.com/dalemusser/quickclass/internal/app/system/paging"
	"github.com/dalemusser/quickclass/internal/domain/models"
)

// fakeGateway records calls and answers with canned results.
type fakeGateway struct {
	initial   []models.ClassEntry
	saveErr   error
	importErr error
	importRes ImportResult

	saved    [][]models.ClassEntry
	imported []string

	// when non-nil, calls block until release is closed
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGateway) wait() {
	if g.release == nil {
		return
	}
	g.entered <- struct{}{}
	<-g.release
}

func (g *fakeGateway) LoadInitial(ctx context.Context) ([]models.ClassEntry, error) {
	return models.CloneEntries(g.initial), nil
}

func (g *fakeGateway) Save(ctx context.Context, candidate []models.ClassEntry) ([]models.ClassEntry, error) {
	g.saved = append(g.saved, candidate)
	g.wait()
	if g.saveErr != nil {
		return nil, g.saveErr
	}
	return models.CloneEntries(candidate), nil
}

func (g *fakeGateway) BatchImport(ctx context.Context, raw string, mode ImportMode) (ImportResult, error) {
	g.imported = append(g.imported, raw)
	g.wait()
	if g.importErr != nil {
		return ImportResult{}, g.importErr
	}
	return g.importRes, nil
}

func entries(n int) []models.ClassEntry {
	out := make([]models.ClassEntry, n)
	for i := range out {
		out[i] = models.ClassEntry{Class: fmt.Sprintf("c%d", i), Description: fmt.Sprintf("d%d", i)}
	}
	return out
}

func newStore(initial []models.ClassEntry, gw Gateway) *Store {
	return New(Config{Classes: initial}, gw, nil)
}

func TestLoad_ResetsPage(t *testing.T) {
	s := newStore(entries(60), &fakeGateway{})
	s.GoToPage(nil, 3)
	if s.CurrentPage() != 3 {
		t.Fatalf("CurrentPage() = %d, want 3", s.CurrentPage())
	}
	s.Load(entries(5))
	if s.CurrentPage() != 1 || s.Len() != 5 {
		t.Errorf("after Load: page=%d len=%d", s.CurrentPage(), s.Len())
	}
}

func TestLoad_CopiesInput(t *testing.T) {
	in := entries(2)
	s := newStore(in, &fakeGateway{})
	in[0].Class = "mutated"
	if s.Entries()[0].Class != "c0" {
		t.Error("store shares backing array with caller")
	}
}

func TestPage_ClampsCurrentPage(t *testing.T) {
	s := newStore(entries(30), &fakeGateway{})

	win := s.Page(99)
	if s.CurrentPage() != 2 {
		t.Errorf("CurrentPage() = %d, want 2", s.CurrentPage())
	}
	if len(win) != 5 || win[0].Class != "c25" {
		t.Errorf("window = %v", win)
	}

	s.Page(-1)
	if s.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d, want 1", s.CurrentPage())
	}
}

func TestPages_ReconstructList(t *testing.T) {
	for _, n := range []int{0, 1, 25, 26, 77} {
		s := newStore(entries(n), &fakeGateway{})
		if got, want := s.TotalPages(), paging.TotalPages(n); got != want {
			t.Fatalf("n=%d: TotalPages() = %d, want %d", n, got, want)
		}
		var all []models.ClassEntry
		for p := 1; p <= s.TotalPages(); p++ {
			w := s.Page(p)
			if len(w) > paging.PageSize {
				t.Fatalf("n=%d: page %d has %d rows", n, p, len(w))
			}
			all = append(all, w...)
		}
		if len(all) != n || (n > 0 && !reflect.DeepEqual(all, entries(n))) {
			t.Errorf("n=%d: pages do not reconstruct list", n)
		}
	}
}

func TestSyncPage_PreservesLength(t *testing.T) {
	s := newStore(entries(30), &fakeGateway{})

	s.SyncPage(PageEdits{{Class: "x"}, {Class: "y"}, {Class: "z"}, {Class: "w"}, {Class: "v"}, {Class: "extra"}}, 2)
	if s.Len() != 30 {
		t.Fatalf("Len() = %d, want 30", s.Len())
	}
	got := s.Entries()
	if got[25].Class != "x" || got[29].Class != "v" {
		t.Errorf("page 2 not overwritten: %v", got[25:])
	}

	s.SyncPage(PageEdits{{Class: "first"}}, 1)
	got = s.Entries()
	if got[0].Class != "first" || got[1].Class != "c1" {
		t.Errorf("short edits should only touch leading rows: %v", got[:2])
	}
}

func TestAddThenDelete(t *testing.T) {
	s := newStore(nil, &fakeGateway{})

	s.AddEntry(nil)
	if s.Len() != 1 || s.CurrentPage() != 1 {
		t.Fatalf("after AddEntry: len=%d page=%d", s.Len(), s.CurrentPage())
	}
	if e := s.Entries()[0]; e.Class != "" || e.Description != "" {
		t.Errorf("new entry = %+v, want blank", e)
	}

	s.SyncPage(PageEdits{{Class: ""}}, s.CurrentPage())
	if !s.DeleteEntry(0) {
		t.Fatal("DeleteEntry(0) = false")
	}
	if s.Len() != 0 || s.CurrentPage() != 1 {
		t.Errorf("after delete: len=%d page=%d", s.Len(), s.CurrentPage())
	}
}

func TestAddEntry_FlushesAndJumpsToLastPage(t *testing.T) {
	s := newStore(entries(25), &fakeGateway{})
	edits := PageEdits(s.Page(1))
	edits[3].Description = "edited"

	s.AddEntry(edits)
	if s.CurrentPage() != 2 {
		t.Errorf("CurrentPage() = %d, want 2", s.CurrentPage())
	}
	got := s.Entries()
	if got[3].Description != "edited" {
		t.Error("edit on page 1 lost by AddEntry")
	}
	if len(got) != 26 || got[25] != (models.ClassEntry{}) {
		t.Errorf("expected blank 26th entry, got %v", got[len(got)-1])
	}
}

func TestDeleteEntry_ClampsPageWhenLastPageEmptied(t *testing.T) {
	s := newStore(entries(26), &fakeGateway{})
	s.GoToPage(nil, 2)

	if !s.DeleteEntry(25) {
		t.Fatal("DeleteEntry(25) = false")
	}
	if s.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d, want 1", s.CurrentPage())
	}
}

func TestDeleteEntry_OutOfRangeIgnored(t *testing.T) {
	s := newStore(entries(3), &fakeGateway{})
	if s.DeleteEntry(3) || s.DeleteEntry(-1) {
		t.Error("expected out-of-range delete to be ignored")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestPrevPage_FlushesEdits(t *testing.T) {
	s := newStore(entries(30), &fakeGateway{})
	s.GoToPage(nil, 2)

	edits := PageEdits(s.Page(2))
	edits[1] = models.ClassEntry{Class: "Edited Name", Description: " changed "}

	if got := s.NextPage(nil); got != 2 {
		t.Errorf("NextPage on last page = %d, want 2", got)
	}
	if got := s.PrevPage(edits); got != 1 {
		t.Fatalf("PrevPage() = %d, want 1", got)
	}

	payload := s.CollectForSave(nil)
	if payload[26].Class != "edited-name" || payload[26].Description != "changed" {
		t.Errorf("edit at index 26 missing after flush: %+v", payload[26])
	}
}

func TestCollectForSave(t *testing.T) {
	s := newStore([]models.ClassEntry{
		{Class: " Foo Bar ", Description: " red #ff0000 "},
		{Class: "", Description: "x"},
	}, &fakeGateway{})

	got := s.CollectForSave(nil)
	want := []models.ClassEntry{{Class: "foo-bar", Description: "red #ff0000"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectForSave() = %+v, want %+v", got, want)
	}
	if s.Len() != 2 {
		t.Error("CollectForSave must not drop entries from the store")
	}
}

func TestReorder(t *testing.T) {
	s := newStore(entries(27), &fakeGateway{})

	if !s.Reorder(2, []int{1, 0}) {
		t.Fatal("Reorder() = false")
	}
	got := s.Entries()
	if got[25].Class != "c26" || got[26].Class != "c25" {
		t.Errorf("page 2 not permuted: %v", got[25:])
	}
	if got[24].Class != "c24" {
		t.Error("reorder leaked into another page")
	}

	if s.Reorder(2, []int{0, 0}) || s.Reorder(2, []int{0}) {
		t.Error("expected non-permutations to be rejected")
	}
}

func TestMove(t *testing.T) {
	s := newStore(entries(4), &fakeGateway{})

	if !s.Move(nil, 0, 2) {
		t.Fatal("Move() = false")
	}
	var classes []string
	for _, e := range s.Entries() {
		classes = append(classes, e.Class)
	}
	if want := []string{"c1", "c2", "c0", "c3"}; !reflect.DeepEqual(classes, want) {
		t.Errorf("after Move: %v, want %v", classes, want)
	}
	if s.Move(nil, 0, 9) {
		t.Error("expected out-of-range move to be rejected")
	}
}

func TestSave_Success(t *testing.T) {
	gw := &fakeGateway{}
	s := newStore([]models.ClassEntry{{Class: "A b", Description: " d "}, {Class: " "}}, gw)

	st, err := s.Save(context.Background(), nil)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !st.OK() || st.Message != DefaultStrings.Saved {
		t.Errorf("status = %+v", st)
	}
	want := []models.ClassEntry{{Class: "a-b", Description: "d"}}
	if !reflect.DeepEqual(gw.saved[0], want) {
		t.Errorf("payload = %+v, want %+v", gw.saved[0], want)
	}
	if !reflect.DeepEqual(s.Entries(), want) {
		t.Errorf("entries not replaced by canonical list: %+v", s.Entries())
	}
}

func TestSave_FailureLeavesEntriesUntouched(t *testing.T) {
	gw := &fakeGateway{saveErr: errors.New("backend down")}
	initial := []models.ClassEntry{{Class: "Keep Me", Description: " spaced "}, {Class: ""}}
	s := newStore(initial, gw)
	before := s.Entries()

	st, err := s.Save(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if st.Kind != StatusError || st.Message != DefaultStrings.Error {
		t.Errorf("status = %+v", st)
	}
	if !reflect.DeepEqual(s.Entries(), before) {
		t.Errorf("entries changed: %+v, want %+v", s.Entries(), before)
	}
}

func TestSave_AtMostOneInFlight(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	s := newStore(entries(2), gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background(), nil)
		done <- err
	}()
	<-gw.entered

	if saving, _ := s.Busy(); !saving {
		t.Error("Busy() should report saving")
	}
	if _, err := s.Save(context.Background(), nil); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Save() error = %v, want ErrInFlight", err)
	}

	close(gw.release)
	if err := <-done; err != nil {
		t.Errorf("first Save() error = %v", err)
	}
	if len(gw.saved) != 1 {
		t.Errorf("gateway saw %d saves, want 1", len(gw.saved))
	}
}

func TestSave_ResultDiscardedAfterClose(t *testing.T) {
	gw := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	s := newStore([]models.ClassEntry{{Class: "Mixed Case"}}, gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background(), nil)
		done <- err
	}()
	<-gw.entered
	s.Close()
	close(gw.release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Save() error = %v, want ErrClosed", err)
	}
	if s.Entries()[0].Class != "Mixed Case" {
		t.Error("result applied to a closed store")
	}
	if _, err := s.Save(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Save() on closed store error = %v", err)
	}
}

func TestImport_Success(t *testing.T) {
	gw := &fakeGateway{importRes: ImportResult{
		Message: "Imported 2 classes (0 skipped).",
		Classes: []models.ClassEntry{{Class: "a"}, {Class: "b"}},
	}}
	s := newStore(nil, gw)

	st, err := s.Import(context.Background(), nil, "a\nb", ImportAppend)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if st.Message != "Imported 2 classes (0 skipped)." {
		t.Errorf("status message = %q", st.Message)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if gw.imported[0] != "a\nb" {
		t.Errorf("raw text not forwarded verbatim: %q", gw.imported[0])
	}
}

func TestImport_SkippedRowsInStatusDetails(t *testing.T) {
	gw := &fakeGateway{importRes: ImportResult{
		Message: "Imported 1 classes (1 skipped).",
		Classes: []models.ClassEntry{{Class: "a"}},
		Skipped: []importfmt.RowError{{Line: 2, Raw: "<b>,x,y", Reason: "too many fields"}},
	}}
	s := newStore(nil, gw)

	st, err := s.Import(context.Background(), nil, "a\n<b>,x,y", ImportAppend)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	d := string(st.Details)
	if !strings.Contains(d, "line 2") || !strings.Contains(d, "too many fields") {
		t.Errorf("Details = %q, want the skipped line and reason", d)
	}
	if strings.Contains(d, "<b>,") {
		t.Errorf("Details = %q, raw line not escaped", d)
	}
	if got := s.View().Status.Details; got != st.Details {
		t.Errorf("View().Status.Details = %q, want %q", got, st.Details)
	}

	// A later save clears the details along with the message.
	st, err = s.Save(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Details != "" {
		t.Errorf("Details after save = %q, want empty", st.Details)
	}
}

func TestImport_FailureLeavesEntriesUntouched(t *testing.T) {
	gw := &fakeGateway{importErr: errors.New("unauthorized")}
	s := newStore(entries(3), gw)
	before := s.Entries()

	st, err := s.Import(context.Background(), nil, "x", ImportReplace)
	if err == nil || st.Kind != StatusError {
		t.Fatalf("Import() = %+v, %v", st, err)
	}
	if !reflect.DeepEqual(s.Entries(), before) {
		t.Error("entries changed after failed import")
	}
}

func TestImport_EmptyTextSkipsGateway(t *testing.T) {
	gw := &fakeGateway{}
	s := newStore(nil, gw)

	st, err := s.Import(context.Background(), nil, "  \n ", ImportAppend)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if st.Kind != StatusError || len(gw.imported) != 0 {
		t.Errorf("status = %+v, gateway calls = %d", st, len(gw.imported))
	}
}

func TestStatus_Expires(t *testing.T) {
	gw := &fakeGateway{}
	s := newStore(entries(1), gw)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return base }

	if _, err := s.Save(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if !s.View().StatusVisible {
		t.Error("status should be visible right after save")
	}
	s.now = func() time.Time { return base.Add(StatusTTL + time.Millisecond) }
	if s.View().StatusVisible {
		t.Error("status should have expired")
	}
}

func TestView_Rows(t *testing.T) {
	s := newStore([]models.ClassEntry{
		{Class: "accent", Description: "accent #1A2b3C box"},
		{Class: "plain", Description: "no colour"},
	}, &fakeGateway{})

	v := s.View()
	if len(v.Rows) != 2 {
		t.Fatalf("rows = %d", len(v.Rows))
	}
	if v.Rows[0].Swatch != "#1A2b3C" || v.Rows[1].Swatch != "" {
		t.Errorf("swatches = %q, %q", v.Rows[0].Swatch, v.Rows[1].Swatch)
	}
	if !v.Rows[0].First || !v.Rows[1].Last {
		t.Error("first/last markers wrong")
	}
}

func TestOpen_LoadsInitial(t *testing.T) {
	gw := &fakeGateway{initial: entries(3)}
	s, err := Open(context.Background(), gw, Strings{Saved: "Opgeslagen!"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if _, err := s.Save(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if s.Status().Message != "Opgeslagen!" {
		t.Errorf("custom string not used: %q", s.Status().Message)
	}
}
