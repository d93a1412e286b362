// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to sign in

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/quickclass/internal/app/features/errors"
	"github.com/dalemusser/quickclass/internal/app/store/audit"
	userstore "github.com/dalemusser/quickclass/internal/app/store/users"
	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/ratelimit"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger

	// Limiter throttles attempts when set.
	Limiter *ratelimit.LoginLimiter
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	LoginID   string // what the user typed
	ReturnURL string
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && !u.APIToken {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", "/"), http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	loginID := strings.TrimSpace(r.FormValue("login_id"))
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	if loginID == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your login ID and password.", loginID, ret)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, loginID); !ok {
			h.Log.Warn("sign-in throttled", zap.String("login_id", loginID), zap.String("ip", ratelimit.ClientIP(r)))
			h.renderThrottled(w, r, msg, loginID, ret)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, loginID, password)
	switch {
	case err == nil:
		// signed in below
	case errors.Is(err, userstore.ErrDisabled):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserDisabled, &u.ID, loginID)
		h.renderFormWithError(w, r, "Your account is currently disabled. Please contact an administrator.", loginID, ret)
		return
	case errors.Is(err, userstore.ErrBadCredentials):
		if u == nil {
			h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, nil, loginID)
		} else {
			h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, &u.ID, loginID)
		}
		h.renderFormWithError(w, r, "Invalid login ID or password.", loginID, ret)
		return
	default:
		h.ErrLog.LogServerError(w, r, "authenticate user", err, "A server error occurred.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session", err, "A server error occurred.", "/login")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetAccount(loginID)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.LoginID)
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))

	dest := "/blocks"
	if u.Role == models.RoleAdmin {
		dest = "/classes"
	}
	http.Redirect(w, r, urlutil.SafeReturn(ret, "", dest), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, loginID, ret string) {
	h.renderForm(w, r, http.StatusUnauthorized, msg, loginID, ret)
}

func (h *Handler) renderThrottled(w http.ResponseWriter, r *http.Request, msg, loginID, ret string) {
	w.Header().Set("Retry-After", "60")
	h.renderForm(w, r, http.StatusTooManyRequests, msg, loginID, ret)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, msg, loginID, ret string) {
	w.WriteHeader(status)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:     msg,
		LoginID:   loginID,
		ReturnURL: ret,
	})
}
