// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"go.uber.org/zap"
)

// EditSessionCloser forgets a live class list session.
type EditSessionCloser interface {
	Close(id string)
}

type Handler struct {
	Log          *zap.Logger
	SessionMgr   *auth.SessionManager
	AuditLog     *auditlog.Logger
	EditSessions EditSessionCloser
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, editSessions EditSessionCloser, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		EditSessions: editSessions,
	}
}

// ServeLogout handles GET and POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		// Still clear the cookie below.
		h.Log.Warn("session decode failed during logout", zap.Error(err))
	}

	if id, ok := session.Values[auth.EditSessionKey].(string); ok && id != "" && h.EditSessions != nil {
		h.EditSessions.Close(id)
	}
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, u.ID)
	}

	// The deletion cookie must match the store settings.
	opts := h.SessionMgr.Store().Options
	if opts != nil {
		session.Options.Domain = opts.Domain
		session.Options.Path = opts.Path
		session.Options.Secure = opts.Secure
		session.Options.HttpOnly = opts.HttpOnly
		session.Options.SameSite = opts.SameSite
	}
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
