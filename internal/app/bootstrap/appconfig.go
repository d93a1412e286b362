// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); AppConfig
// covers everything specific to QuickClass.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: quickclass-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// APIToken lets scripts and qcsctl call the class API without a browser
	// session. Blank disables bearer authentication.
	APIToken string

	// Bootstrap admin account, created on startup when no admin exists.
	AdminLoginID  string
	AdminPassword string

	// Release checks. A blank ReleaseURL hides the updates page content.
	ReleaseURL       string
	InstalledVersion string

	// Class list edit sessions
	EditSessionIdle  time.Duration // close sessions unused this long
	EditSessionSweep time.Duration // how often the cleanup worker runs

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth    string
	AuditLogContent string
}
