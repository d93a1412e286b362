package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/quickclass/internal/app/system/auth"
	"github.com/dalemusser/quickclass/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	role, name, id, ok := authz.UserCtx(req)
	if ok || role != "visitor" || name != "" || !id.IsZero() {
		t.Errorf("UserCtx = %q %q %v %v", role, name, id, ok)
	}
}

func TestUserCtx_WithUser(t *testing.T) {
	oid := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID: oid.Hex(), Name: "Ada", Role: "Editor",
	})
	role, name, id, ok := authz.UserCtx(req)
	if !ok || role != "editor" || name != "Ada" || id != oid {
		t.Errorf("UserCtx = %q %q %v %v", role, name, id, ok)
	}
	if !authz.CanEditBlocks(req) {
		t.Error("editor should be able to edit blocks")
	}
	if authz.IsAdmin(req) {
		t.Error("editor is not an admin")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "nope", Role: "admin"})
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("malformed id must fail closed")
	}
}

func TestIsAdmin_APIToken(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "api", Role: "admin", APIToken: true})
	if !authz.IsAdmin(req) {
		t.Error("API token caller should count as admin")
	}
	if authz.CanEditBlocks(req) {
		t.Error("API token caller has no block editor identity")
	}
}
