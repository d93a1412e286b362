// internal/app/features/classes/manager.go
package classes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/importfmt"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type managerData struct {
	viewdata.BaseVM
	classstore.View
	MaxImportRows int
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /classes?page=N                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeManager(w http.ResponseWriter, r *http.Request) {
	st, err := h.editStore(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open class list", err, "Could not load the class list.", "/")
		return
	}
	if query.Get(r, "page") != "" {
		st.GoToPage(nil, pageParam(query.Get(r, "page")))
	}
	h.render(w, r, st, "classes")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /classes                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleAction applies one manager action. The posted page edits are
// always flushed first so nothing typed on the page is lost.
//
// Actions: add, delete:<index>, move:<from>:<to>, up:<row>, down:<row>,
// prev, next, goto, reorder, save, import, reload.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, importfmt.MaxBytes+64<<10)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/classes")
		return
	}

	st, err := h.editStore(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open class list", err, "Could not load the class list.", "/")
		return
	}

	page := st.CurrentPage()
	if v := r.PostFormValue("page"); v != "" {
		page = pageParam(v)
	}
	st.GoToPage(nil, page)
	st.SyncPage(editsFromForm(r), page)

	action := strings.TrimSpace(r.PostFormValue("action"))
	verb, args := splitAction(action)

	switch verb {
	case "add":
		st.AddEntry(nil)
	case "delete":
		if len(args) == 1 {
			st.DeleteEntry(args[0])
		}
	case "move":
		if len(args) == 2 {
			st.Move(nil, args[0], args[1])
		}
	case "up":
		if len(args) == 1 {
			st.Move(nil, args[0], args[0]-1)
		}
	case "down":
		if len(args) == 1 {
			st.Move(nil, args[0], args[0]+1)
		}
	case "prev":
		st.PrevPage(nil)
	case "next":
		st.NextPage(nil)
	case "goto":
		if v := strings.TrimSpace(r.PostFormValue("goto")); v != "" {
			st.GoToPage(nil, pageParam(v))
		}
	case "reorder":
		if order, ok := parseInts(r.PostFormValue("order"), ","); ok {
			st.Reorder(page, order)
		}
	case "save":
		ctx, cancel := actorContext(r, timeouts.Medium())
		defer cancel()
		if _, err := st.Save(ctx, nil); errors.Is(err, classstore.ErrClosed) {
			http.Redirect(w, r, "/classes", http.StatusSeeOther)
			return
		}
	case "import":
		ctx, cancel := actorContext(r, timeouts.Batch())
		defer cancel()
		mode := classstore.ParseImportMode(r.PostFormValue("import_mode"))
		if _, err := st.Import(ctx, nil, r.PostFormValue("import_text"), mode); errors.Is(err, classstore.ErrClosed) {
			http.Redirect(w, r, "/classes", http.StatusSeeOther)
			return
		}
	case "reload":
		ctx, cancel := actorContext(r, timeouts.Short())
		defer cancel()
		if err := st.Reload(ctx); err != nil {
			h.ErrLog.LogServerError(w, r, "reload class list", err, "Could not reload the class list.", "/classes")
			return
		}
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown class list action", nil, "Unknown action.", "/classes")
		return
	}

	h.Log.Debug("class list action", zap.String("action", verb), zap.Int("page", st.CurrentPage()))

	if r.Header.Get("HX-Request") != "" {
		h.render(w, r, st, "classes_panel")
		return
	}
	http.Redirect(w, r, "/classes?page="+strconv.Itoa(st.CurrentPage()), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, st *classstore.Store, name string) {
	data := managerData{
		BaseVM:        viewdata.NewBaseVM(r, "Classes", "/"),
		View:          st.View(),
		MaxImportRows: importfmt.MaxRows,
	}
	if name == "classes_panel" {
		templates.RenderSnippet(w, name, data)
		return
	}
	templates.Render(w, r, name, data)
}

// editsFromForm pairs the posted class[] and description[] fields. A form
// without row fields yields nil, which flushes nothing.
func editsFromForm(r *http.Request) classstore.PageEdits {
	classes, ok := r.PostForm["class"]
	if !ok {
		return nil
	}
	descs := r.PostForm["description"]
	edits := make(classstore.PageEdits, len(classes))
	for i, c := range classes {
		edits[i] = models.ClassEntry{Class: c}
		if i < len(descs) {
			edits[i].Description = descs[i]
		}
	}
	return edits
}

func splitAction(action string) (string, []int) {
	parts := strings.Split(action, ":")
	if len(parts) == 1 {
		return parts[0], nil
	}
	args, ok := parseInts(strings.Join(parts[1:], ":"), ":")
	if !ok {
		return parts[0], nil
	}
	return parts[0], args
}

func parseInts(s, sep string) ([]int, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	fields := strings.Split(s, sep)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func pageParam(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
