// internal/app/features/editor/selector.go
package editor

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/quickclass/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quickclass/internal/app/system/selector"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type blockEditData struct {
	viewdata.BaseVM
	Block       models.Block
	ContentHTML template.HTML
	Selector    selector.ViewModel
	Error    string
}

// loadBlock resolves {id}. It answers the request itself and returns false
// when the block cannot be shown.
func (h *Handler) loadBlock(w http.ResponseWriter, r *http.Request) (models.Block, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogNotFound(w, r, "bad block id", err, "Block not found.", "/blocks")
		return models.Block{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Blocks.GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		h.ErrLog.LogNotFound(w, r, "block not found", err, "Block not found.", "/blocks")
		return models.Block{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load block", err, "Could not load the block.", "/blocks")
		return models.Block{}, false
	}
	return b, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /blocks/{id}?open=1&q=...                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeBlock(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadBlock(w, r)
	if !ok {
		return
	}
	cfg, err := h.selectorConfig(r.Context())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load predefined classes", err, "Could not load the class list.", "/blocks")
		return
	}

	vm := selector.Render(cfg, b.ClassName, selector.SelectionState{
		IsOpen:     query.Get(r, "open") == "1",
		SearchTerm: query.Get(r, "q"),
	})
	templates.Render(w, r, "block_edit", blockEditData{
		BaseVM:      viewdata.NewBaseVM(r, b.Title, "/blocks"),
		Block:       b,
		ContentHTML: htmlsanitize.PrepareForDisplay(b.Content),
		Selector:    vm,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /blocks/{id}/selector                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSelector rebuilds the block's widget from the posted UI state,
// applies op and persists any class string change through onChange.
//
// Ops: activate, dismiss, search, toggle, clear, set.
func (h *Handler) HandleSelector(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/blocks")
		return
	}
	b, ok := h.loadBlock(w, r)
	if !ok {
		return
	}
	cfg, err := h.selectorConfig(r.Context())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load predefined classes", err, "Could not load the class list.", "/blocks")
		return
	}

	ctx, cancel := actorContext(r, timeouts.Short())
	defer cancel()

	var saveErr error
	persist := func(classString string) {
		if saveErr != nil {
			return
		}
		if saveErr = h.Blocks.SetClassName(ctx, b.ID, classString); saveErr != nil {
			return
		}
		b.ClassName = classString
		h.AuditLog.BlockClassesSet(ctx, b.ID, classString)
	}
	state := selector.SelectionState{
		IsOpen:     r.PostFormValue("open") == "1",
		SearchTerm: r.PostFormValue("q"),
	}
	widget := restore(cfg, b.ClassName, state, persist)

	switch op := r.PostFormValue("op"); op {
	case "activate":
		widget.Activate()
	case "dismiss":
		widget.Dismiss()
	case "search":
		widget.Search(r.PostFormValue("q"))
	case "toggle":
		widget.Toggle(r.PostFormValue("class"))
	case "clear":
		widget.ClearAll()
	case "set":
		// The class field itself was edited; the block owns that value.
		next := strings.Join(strings.Fields(r.PostFormValue("class_name")), " ")
		if next != b.ClassName {
			persist(next)
		}
		widget = restore(cfg, b.ClassName, state, persist)
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown selector op", nil, "Unknown operation.", "/blocks/"+b.ID.Hex())
		return
	}

	if saveErr != nil {
		if r.Header.Get("HX-Request") != "" {
			h.ErrLog.HTMXLogServerError(w, r, "save block classes", saveErr, "Could not save the block's classes.")
			return
		}
		h.ErrLog.LogServerError(w, r, "save block classes", saveErr, "Could not save the block's classes.", "/blocks/"+b.ID.Hex())
		return
	}

	if r.Header.Get("HX-Request") != "" {
		templates.RenderSnippet(w, "block_selector", blockEditData{Block: b, Selector: widget.View()})
		return
	}
	http.Redirect(w, r, selectorURL(b.ID.Hex(), widget), http.StatusSeeOther)
}

// restore rebuilds a widget in the UI state a page was rendered with.
func restore(cfg selector.Config, classString string, st selector.SelectionState, onChange func(string)) *selector.Widget {
	w := selector.New(cfg, classString, onChange)
	if st.IsOpen {
		w.Activate()
		w.Search(st.SearchTerm)
	}
	return w
}

func selectorURL(id string, widget *selector.Widget) string {
	u := "/blocks/" + id
	if !widget.IsOpen() {
		return u
	}
	v := url.Values{"open": {"1"}}
	if widget.SearchTerm() != "" {
		v.Set("q", widget.SearchTerm())
	}
	return u + "?" + v.Encode()
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/editor/classes                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeClasses returns the predefined classes an editor session starts with.
func (h *Handler) ServeClasses(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.selectorConfig(r.Context())
	if err != nil {
		h.Log.Error("editor classes: load", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, false, "Something went wrong.")
		return
	}
	writeJSON(w, http.StatusOK, true, map[string]any{"classes": cfg.Classes})
}
