// internal/app/features/editor/handler.go
package editor

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/quickclass/internal/app/features/errors"
	blockstore "github.com/dalemusser/quickclass/internal/app/store/blocks"
	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/selector"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the block editor and its class selector.
type Handler struct {
	Blocks   *blockstore.Store
	Classes  classstore.Gateway
	Strings  selector.Strings
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, classes classstore.Gateway, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Blocks:   blockstore.New(db),
		Classes:  classes,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func actorContext(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := r.Context()
	if u, ok := auth.CurrentUser(r); ok {
		ctx = auditlog.WithActor(ctx, auditlog.ActorFromRequest(r, u.ID, u.Name))
	}
	return context.WithTimeout(ctx, d)
}

// selectorConfig loads the predefined classes every selector on a page
// shares.
func (h *Handler) selectorConfig(ctx context.Context) (selector.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	classes, err := h.Classes.LoadInitial(ctx)
	if err != nil {
		return selector.Config{}, err
	}
	return selector.Config{Classes: models.CloneEntries(classes), Strings: h.Strings}, nil
}
