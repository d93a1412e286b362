// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires QuickClass into WAFFLE's lifecycle: config from QUICKCLASS_*
// settings, MongoDB for the class list, blocks, users and audit events, and
// the edit-session registry started in Startup and drained in Shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "quickclass",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
