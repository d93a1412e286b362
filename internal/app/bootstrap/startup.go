// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/quickclass/internal/app/resources"
	userstore "github.com/dalemusser/quickclass/internal/app/store/users"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: shared
// templates, the bootstrap admin, and the background workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.AdminLoginID != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminLoginID, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}

	services = newServices(appCfg, deps, logger)
	services.Cleanup.Start()
	return nil
}

// ensureAdmin creates the configured admin account when the database has
// no admin yet. An existing account with that login id is left alone.
func ensureAdmin(ctx context.Context, deps DBDeps, loginID, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	n, err := users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		logger.Debug("admin account present; skipping bootstrap admin", zap.Int64("admins", n))
		return nil
	}

	u, err := users.Create(ctx, models.User{
		FullName: "Administrator",
		LoginID:  loginID,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}, password)
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		logger.Warn("bootstrap admin login id is taken by a non-admin account", zap.String("login_id", loginID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", zap.String("user_id", u.ID.Hex()), zap.String("login_id", u.LoginID))
	return nil
}
