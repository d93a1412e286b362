package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active user with the given role and password.
func (f *Fixtures) CreateUser(ctx context.Context, loginID, password, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     "Test " + loginID,
		LoginID:      loginID,
		LoginIDCI:    text.Fold(loginID),
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateBlock inserts a content block with the given class string.
func (f *Fixtures) CreateBlock(ctx context.Context, title, className string) models.Block {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Block{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		ClassName: className,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("blocks").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test block: %v", err)
	}
	return b
}

// SeedClasses stores entries as the default class set.
func (f *Fixtures) SeedClasses(ctx context.Context, entries []models.ClassEntry) {
	f.t.Helper()

	now := time.Now().UTC()
	set := models.ClassSet{
		ID:        primitive.NewObjectID(),
		Name:      models.DefaultClassSet,
		Entries:   models.CloneEntries(entries),
		UpdatedAt: &now,
	}
	if _, err := f.db.Collection("class_sets").InsertOne(ctx, set); err != nil {
		f.t.Fatalf("failed to seed classes: %v", err)
	}
}
