// internal/app/features/classes/handler.go
package classes

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/quickclass/internal/app/features/errors"
	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/editsessions"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the admin class list manager and the class JSON API.
type Handler struct {
	Gateway    classstore.Gateway
	Sessions   *editsessions.Registry
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(gw classstore.Gateway, registry *editsessions.Registry, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gateway:    gw,
		Sessions:   registry,
		SessionMgr: sm,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// actorContext attaches the signed-in user to a context bounded by d so
// the gateway can attribute audit events.
func actorContext(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := r.Context()
	if u, ok := auth.CurrentUser(r); ok {
		ctx = auditlog.WithActor(ctx, auditlog.ActorFromRequest(r, u.ID, u.Name))
	}
	return context.WithTimeout(ctx, d)
}

// editStore returns the caller's live list store, opening a new one (and
// remembering its id in the cookie session) when there is none.
func (h *Handler) editStore(w http.ResponseWriter, r *http.Request) (*classstore.Store, error) {
	u, _ := auth.CurrentUser(r)
	owner := ""
	if u != nil {
		owner = u.ID
	}

	sess, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session cookie invalid, using fresh session", zap.Error(err))
	}
	id, _ := sess.Values[auth.EditSessionKey].(string)
	if st, ok := h.Sessions.Get(id, owner); ok {
		return st, nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	newID, st, err := h.Sessions.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	sess.Values[auth.EditSessionKey] = newID
	if err := sess.Save(r, w); err != nil {
		h.Log.Error("save edit session id", zap.Error(err))
	}
	return st, nil
}
