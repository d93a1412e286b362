// internal/app/features/editor/blocks.go
package editor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	blockstore "github.com/dalemusser/quickclass/internal/app/store/blocks"
	"github.com/dalemusser/quickclass/internal/app/system/paging"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type blockListData struct {
	viewdata.BaseVM
	Blocks []models.Block
	Range  paging.Range
	Error  string
	Title  string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /blocks                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "", "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, formErr, title string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	total, err := h.Blocks.Count(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count blocks", err, "Could not load blocks.", "/")
		return
	}
	page := paging.Clamp(paging.ParsePage(r), int(total))
	start, end := paging.Bounds(page, int(total))

	blocks, err := h.Blocks.List(ctx, int64(start), int64(end-start))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list blocks", err, "Could not load blocks.", "/")
		return
	}

	data := blockListData{
		BaseVM: viewdata.NewBaseVM(r, "Blocks", "/"),
		Blocks: blocks,
		Range:  paging.ComputeRange(page, int(total)),
		Error:  formErr,
		Title:  title,
	}
	if formErr != "" {
		w.WriteHeader(http.StatusBadRequest)
	}
	templates.Render(w, r, "blocks_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /blocks                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/blocks")
		return
	}
	title := strings.TrimSpace(r.PostFormValue("title"))
	content := strings.TrimSpace(r.PostFormValue("content"))

	ctx, cancel := actorContext(r, timeouts.Short())
	defer cancel()

	b, err := h.Blocks.Create(ctx, title, content, "")
	if errors.Is(err, blockstore.ErrTitleRequired) {
		h.renderList(w, r, "Please give the block a title.", title)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create block", err, "Could not create the block.", "/blocks")
		return
	}

	h.AuditLog.BlockCreated(ctx, b.ID, b.Title)
	h.Log.Info("block created", zap.String("block_id", b.ID.Hex()))
	http.Redirect(w, r, "/blocks/"+b.ID.Hex(), http.StatusSeeOther)
}
