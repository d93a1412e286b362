// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/quickclass/internal/app/store/audit"
	"github.com/dalemusser/quickclass/internal/app/system/auditlog"
	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/editsessions"
	"github.com/dalemusser/quickclass/internal/app/system/gateway"
	"github.com/dalemusser/quickclass/internal/app/system/ratelimit"
	"github.com/dalemusser/quickclass/internal/app/system/releasefeed"
	"github.com/dalemusser/quickclass/internal/app/system/workers"
	"go.uber.org/zap"
)

// Services are the long-lived objects built in Startup and shared by
// BuildHandler and Shutdown.
type Services struct {
	Audit        *auditlog.Logger
	Gateway      *gateway.Local
	EditSessions *editsessions.Registry
	Cleanup      *workers.EditSessionCleanup
	Releases     *releasefeed.Feed
	Logins       *ratelimit.LoginLimiter
}

// services is set by Startup. WAFFLE runs the hooks in order on one
// goroutine, so it needs no locking.
var services *Services

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *Services {
	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Content: appCfg.AuditLogContent,
	})
	gw := gateway.NewLocal(deps.MongoDatabase, auditLog, logger)

	registry := editsessions.New(func(ctx context.Context) (*classstore.Store, error) {
		return classstore.Open(ctx, gw, classstore.Strings{}, logger)
	}, logger)

	return &Services{
		Audit:        auditLog,
		Gateway:      gw,
		EditSessions: registry,
		Cleanup:      workers.NewEditSessionCleanup(registry, logger, appCfg.EditSessionSweep, appCfg.EditSessionIdle),
		Releases:     releasefeed.New(appCfg.ReleaseURL, appCfg.InstalledVersion, nil, logger),
		Logins:       ratelimit.NewLoginLimiter(),
	}
}
