package authz

// Roles known to the app.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// BlockEditorRoles may use the block editor.
var BlockEditorRoles = []string{RoleAdmin, RoleEditor}
