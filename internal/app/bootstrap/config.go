// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Version is the running build, set with -ldflags "-X .../bootstrap.Version=1.2.3".
var Version = "dev"

// appConfigKeys defines the configuration keys for QuickClass.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: QUICKCLASS_MONGO_URI, QUICKCLASS_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "quickclass", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "quickclass-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 12h)"},

	{Name: "api_token", Default: "", Desc: "Bearer token accepted by the class API (blank disables)"},

	{Name: "admin_login_id", Default: "", Desc: "Login ID of the bootstrap admin (created when no admin exists)"},
	{Name: "admin_password", Default: "", Desc: "Password of the bootstrap admin"},

	{Name: "release_url", Default: "", Desc: "Latest-release JSON URL (e.g., https://api.github.com/repos/owner/repo/releases/latest)"},
	{Name: "installed_version", Default: "", Desc: "Version reported as installed (defaults to the build version)"},

	{Name: "edit_session_idle", Default: "30m", Desc: "Close class list edit sessions idle this long"},
	{Name: "edit_session_sweep", Default: "1m", Desc: "How often idle edit sessions are swept"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_content", Default: "all", Desc: "Class list and block event logging: 'all', 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, QUICKCLASS_* for app) and
// command-line flags with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "QUICKCLASS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		APIToken: appValues.String("api_token"),

		AdminLoginID:  appValues.String("admin_login_id"),
		AdminPassword: appValues.String("admin_password"),

		ReleaseURL:       appValues.String("release_url"),
		InstalledVersion: appValues.String("installed_version"),

		EditSessionIdle:  appValues.Duration("edit_session_idle", 30*time.Minute),
		EditSessionSweep: appValues.Duration("edit_session_sweep", time.Minute),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogContent: appValues.String("audit_log_content"),
	}
	if appCfg.InstalledVersion == "" {
		appCfg.InstalledVersion = Version
	}

	return coreCfg, appCfg, nil
}

var auditSettings = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}
	if appCfg.APIToken != "" && len(appCfg.APIToken) < 16 {
		return fmt.Errorf("api_token must be at least 16 characters when set")
	}
	if (appCfg.AdminLoginID == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_login_id and admin_password must be set together")
	}

	if appCfg.EditSessionIdle <= 0 || appCfg.EditSessionSweep <= 0 {
		return fmt.Errorf("edit_session_idle and edit_session_sweep must be positive")
	}

	for key, v := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_content": appCfg.AuditLogContent,
	} {
		if !auditSettings[v] {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}
	return nil
}
