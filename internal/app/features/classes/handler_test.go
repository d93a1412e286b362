package classes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/quickclass/internal/app/features/classes"
	uierrors "github.com/dalemusser/quickclass/internal/app/features/errors"
	classsetstore "github.com/dalemusser/quickclass/internal/app/store/classsets"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/editsessions"
	"github.com/dalemusser/quickclass/internal/app/system/gateway"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/quickclass/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h        *classes.Handler
	db       *mongo.Database
	fx       *testutil.Fixtures
	sm       *auth.SessionManager
	registry *editsessions.Registry
	admin    testutil.TestUser
	cookies  []*http.Cookie
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	gw := gateway.NewLocal(db, nil, logger)
	registry := editsessions.New(func(ctx context.Context) (*classstore.Store, error) {
		return classstore.Open(ctx, gw, classstore.Strings{}, logger)
	}, logger)
	t.Cleanup(registry.CloseAll)

	return &env{
		h:        classes.NewHandler(gw, registry, sm, uierrors.NewErrorLogger(logger), logger),
		db:       db,
		fx:       testutil.NewFixtures(t, db),
		sm:       sm,
		registry: registry,
		admin:    testutil.AdminUser(),
	}
}

// post sends a manager form as the admin, carrying cookies between calls.
func (e *env) post(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/classes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	req = testutil.WithUser(req, e.admin)
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		e.h.HandleAction(rec, req)
	}()

	if cs := rec.Result().Cookies(); len(cs) > 0 {
		e.cookies = cs
	}
	return rec
}

// store returns the admin's live list store.
func (e *env) store(t *testing.T) *classstore.Store {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	sess, err := e.sm.GetSession(req)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	id, _ := sess.Values[auth.EditSessionKey].(string)
	st, ok := e.registry.Get(id, e.admin.ID)
	if !ok {
		t.Fatalf("no edit session for id %q", id)
	}
	return st
}

func seed(t *testing.T, e *env, n int) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	entries := make([]models.ClassEntry, n)
	for i := range entries {
		entries[i] = models.ClassEntry{Class: "c" + string(rune('a'+i%26)) + strings.Repeat("x", i/26)}
	}
	e.fx.SeedClasses(ctx, entries)
}

func TestHandleAction_AddRedirectsToLastPage(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 25)

	rec := e.post(t, url.Values{"action": {"add"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/classes?page=2" {
		t.Errorf("Location: got %q, want %q", loc, "/classes?page=2")
	}
	if n := e.store(t).Len(); n != 26 {
		t.Errorf("Len = %d, want 26", n)
	}
}

func TestHandleAction_ReusesEditSession(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 3)

	e.post(t, url.Values{"action": {"add"}})
	e.post(t, url.Values{"action": {"add"}})

	if n := e.registry.Len(); n != 1 {
		t.Errorf("registry.Len = %d, want 1", n)
	}
	if n := e.store(t).Len(); n != 5 {
		t.Errorf("Len = %d, want 5", n)
	}
}

func TestHandleAction_FlushesEditsBeforeDelete(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 3)

	e.post(t, url.Values{
		"page":        {"1"},
		"class":       {"first", "second", "third"},
		"description": {"one", "two", "three"},
		"action":      {"delete:1"},
	})

	got := e.store(t).Entries()
	want := []string{"first", "third"}
	if len(got) != len(want) {
		t.Fatalf("entries = %+v", got)
	}
	for i, w := range want {
		if got[i].Class != w {
			t.Errorf("entry %d = %q, want %q", i, got[i].Class, w)
		}
	}
	if got[1].Description != "three" {
		t.Errorf("description = %q, want %q", got[1].Description, "three")
	}
}

func TestHandleAction_MoveDown(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 3)

	e.post(t, url.Values{"action": {"down:0"}})

	got := e.store(t).Entries()
	if got[0].Class != "cb" || got[1].Class != "ca" {
		t.Errorf("entries after move = %+v", got)
	}
}

func TestHandleAction_DefaultButtonKeepsRowsInPlace(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 30)
	e.post(t, url.Values{"action": {"next"}})

	// What a browser sends when Enter is pressed in a description field on page 2.
	rows := e.store(t).Page(2)
	classesField := make([]string, len(rows))
	descs := make([]string, len(rows))
	for i, r := range rows {
		classesField[i] = r.Class
	}
	descs[0] = "typed then Enter"
	rec := e.post(t, url.Values{
		"page":        {"2"},
		"action":      {"goto"},
		"goto":        {"2"},
		"class":       classesField,
		"description": descs,
	})
	if loc := rec.Header().Get("Location"); loc != "/classes?page=2" {
		t.Errorf("Location = %q, want /classes?page=2", loc)
	}

	got := e.store(t).Entries()
	if len(got) != 30 {
		t.Fatalf("entries = %d, want 30", len(got))
	}
	if got[25].Class != rows[0].Class || got[25].Description != "typed then Enter" {
		t.Errorf("row 25 = %+v, want edit applied in place", got[25])
	}
	if got[26].Class != rows[1].Class {
		t.Errorf("row 26 = %+v, rows must not move", got[26])
	}
}

func TestHandleAction_GotoWithoutPageStays(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 30)
	e.post(t, url.Values{"action": {"next"}})

	rec := e.post(t, url.Values{"page": {"2"}, "action": {"goto"}, "goto": {""}})
	if loc := rec.Header().Get("Location"); loc != "/classes?page=2" {
		t.Errorf("Location = %q, want /classes?page=2", loc)
	}
}

func TestHandleAction_Paging(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 60)

	rec := e.post(t, url.Values{"action": {"next"}})
	if loc := rec.Header().Get("Location"); loc != "/classes?page=2" {
		t.Errorf("after next: Location %q", loc)
	}

	rec = e.post(t, url.Values{"action": {"goto"}, "goto": {"99"}})
	if loc := rec.Header().Get("Location"); loc != "/classes?page=3" {
		t.Errorf("after goto 99: Location %q", loc)
	}

	rec = e.post(t, url.Values{"action": {"prev"}, "page": {"3"}})
	if loc := rec.Header().Get("Location"); loc != "/classes?page=2" {
		t.Errorf("after prev: Location %q", loc)
	}
}

func TestHandleAction_SavePersistsCanonicalList(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 2)

	e.post(t, url.Values{
		"page":        {"1"},
		"class":       {"Hero Title", "   "},
		"description": {"<b>Big</b> #ff0000", "gone"},
		"action":      {"save"},
	})

	st := e.store(t)
	if status := st.Status(); !status.OK() {
		t.Fatalf("status = %+v, want success", status)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	saved, err := classsetstore.New(e.db).Entries(ctx, models.DefaultClassSet)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(saved) != 1 || saved[0].Class != "hero-title" || saved[0].Description != "Big #ff0000" {
		t.Errorf("saved = %+v", saved)
	}
	if st.Len() != 1 {
		t.Errorf("store Len = %d, want canonical 1", st.Len())
	}
}

func TestHandleAction_ImportAppends(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 1)

	e.post(t, url.Values{
		"action":      {"import"},
		"import_text": {"alpha,First\nbeta\tSecond"},
		"import_mode": {"append"},
	})

	st := e.store(t)
	if st.Len() != 3 {
		t.Errorf("Len = %d, want 3", st.Len())
	}
	if msg := st.Status().Message; msg != "Imported 2 classes (0 skipped)." {
		t.Errorf("status message = %q", msg)
	}
}

func TestHandleAction_EmptyImportIsRejectedLocally(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 1)

	e.post(t, url.Values{"action": {"import"}, "import_text": {"  \n "}})

	st := e.store(t)
	if st.Status().OK() || st.Status().Message != classstore.DefaultStrings.ImportEmpty {
		t.Errorf("status = %+v", st.Status())
	}
}

func TestHandleAction_UnknownAction(t *testing.T) {
	e := newEnv(t)

	rec := e.post(t, url.Values{"action": {"explode"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| JSON API                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func callAPI(t *testing.T, e *env, method, target, body string, fn http.HandlerFunc) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, e.admin)
	rec := httptest.NewRecorder()
	fn(rec, req)

	var out envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec.Code, out
}

func TestServeList(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 2)

	code, out := callAPI(t, e, "GET", "/api/classes", "", e.h.ServeList)
	if code != http.StatusOK || !out.Success {
		t.Fatalf("code=%d success=%v", code, out.Success)
	}
	var payload gateway.ClassesPayload
	if err := json.Unmarshal(out.Data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(payload.Classes) != 2 || payload.Classes[0].Class != "ca" {
		t.Errorf("classes = %+v", payload.Classes)
	}
}

func TestServeList_EmptyIsArray(t *testing.T) {
	e := newEnv(t)

	_, out := callAPI(t, e, "GET", "/api/classes", "", e.h.ServeList)
	if !strings.Contains(string(out.Data), `"classes":[]`) {
		t.Errorf("data = %s, want an empty classes array", out.Data)
	}
}

func TestHandleSave_Canonicalizes(t *testing.T) {
	e := newEnv(t)

	code, out := callAPI(t, e, "POST", "/api/classes",
		`{"classes":[{"class":"Big Red","description":" x "},{"class":"","description":"y"}]}`, e.h.HandleSave)
	if code != http.StatusOK || !out.Success {
		t.Fatalf("code=%d success=%v data=%s", code, out.Success, out.Data)
	}
	var payload gateway.ClassesPayload
	_ = json.Unmarshal(out.Data, &payload)
	if len(payload.Classes) != 1 || payload.Classes[0].Class != "big-red" || payload.Classes[0].Description != "x" {
		t.Errorf("classes = %+v", payload.Classes)
	}
}

func TestHandleSave_BadJSON(t *testing.T) {
	e := newEnv(t)

	code, out := callAPI(t, e, "POST", "/api/classes", `{"classes":`, e.h.HandleSave)
	if code != http.StatusBadRequest || out.Success {
		t.Errorf("code=%d success=%v", code, out.Success)
	}
}

func TestHandleImport(t *testing.T) {
	e := newEnv(t)
	seed(t, e, 1)

	code, out := callAPI(t, e, "POST", "/api/classes/import",
		`{"text":"one\ntwo,Second","mode":"replace"}`, e.h.HandleImport)
	if code != http.StatusOK || !out.Success {
		t.Fatalf("code=%d success=%v data=%s", code, out.Success, out.Data)
	}
	var res classstore.ImportResult
	if err := json.Unmarshal(out.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if res.Message != "Imported 2 classes (0 skipped)." || len(res.Classes) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestHandleImport_RejectedReturnsMessage(t *testing.T) {
	e := newEnv(t)

	code, out := callAPI(t, e, "POST", "/api/classes/import", `{"text":"# only a comment"}`, e.h.HandleImport)
	if code != http.StatusBadRequest || out.Success {
		t.Fatalf("code=%d success=%v", code, out.Success)
	}
	var msg string
	if err := json.Unmarshal(out.Data, &msg); err != nil || msg == "" {
		t.Errorf("data should be a non-empty message, got %s", out.Data)
	}
}
