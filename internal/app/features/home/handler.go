package home

import (
	"context"
	"net/http"

	blockstore "github.com/dalemusser/quickclass/internal/app/store/blocks"
	classsetstore "github.com/dalemusser/quickclass/internal/app/store/classsets"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Classes *classsetstore.Store
	Blocks  *blockstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Classes: classsetstore.New(db),
		Blocks:  blockstore.New(db),
		Log:     logger,
	}
}

type homeData struct {
	viewdata.BaseVM
	ClassCount int
	BlockCount int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	// Counts are a convenience; a failed lookup still shows the page.
	if data.IsLoggedIn {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		if entries, err := h.Classes.Entries(ctx, models.DefaultClassSet); err != nil {
			h.Log.Warn("home: load class count", zap.Error(err))
		} else {
			data.ClassCount = len(entries)
		}
		if n, err := h.Blocks.Count(ctx); err != nil {
			h.Log.Warn("home: load block count", zap.Error(err))
		} else {
			data.BlockCount = n
		}
	}

	templates.Render(w, r, "home", data)
}
