// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	classesfeature "github.com/dalemusser/quickclass/internal/app/features/classes"
	editorfeature "github.com/dalemusser/quickclass/internal/app/features/editor"
	errorsfeature "github.com/dalemusser/quickclass/internal/app/features/errors"
	healthfeature "github.com/dalemusser/quickclass/internal/app/features/health"
	homefeature "github.com/dalemusser/quickclass/internal/app/features/home"
	loginfeature "github.com/dalemusser/quickclass/internal/app/features/login"
	logoutfeature "github.com/dalemusser/quickclass/internal/app/features/logout"
	updatesfeature "github.com/dalemusser/quickclass/internal/app/features/updates"
	userstore "github.com/dalemusser/quickclass/internal/app/store/users"
	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. QuickClass boots the template engine, applies
// session middleware and mounts the feature routers: the public pages,
// sign-in, the admin class list manager and its JSON API, the block editor
// and the release check.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if services == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on every request, so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))
	sessionMgr.SetAPIToken(appCfg.APIToken)

	// Dev mode enables template reloading.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Loads the SessionUser (cookie or bearer token) into the context.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, services.EditSessions, appCfg.InstalledVersion, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, services.Audit, logger)
	loginHandler.Limiter = services.Logins
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, services.Audit, services.EditSessions, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Class list manager (admin) and its JSON API (admin or API token)
	classesHandler := classesfeature.NewHandler(services.Gateway, services.EditSessions, sessionMgr, errLog, logger)
	r.Mount("/classes", classesfeature.Routes(classesHandler, sessionMgr))
	r.Mount("/api/classes", classesfeature.APIRoutes(classesHandler, sessionMgr))

	// Block editor (admin or editor)
	editorHandler := editorfeature.NewHandler(deps.MongoDatabase, services.Gateway, services.Audit, errLog, logger)
	r.Mount("/blocks", editorfeature.Routes(editorHandler, sessionMgr))
	r.Mount("/api/editor", editorfeature.APIRoutes(editorHandler, sessionMgr))

	// Release check (admin)
	updatesHandler := updatesfeature.NewHandler(services.Releases, logger)
	r.Mount("/updates", updatesfeature.Routes(updatesHandler, sessionMgr))
	r.Mount("/api/updates", updatesfeature.APIRoutes(updatesHandler, sessionMgr))

	return r, nil
}
