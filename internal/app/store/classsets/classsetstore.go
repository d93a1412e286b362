// internal/app/store/classsets/classsetstore.go
package classsetstore

import (
	"context"
	"time"

	"github.com/dalemusser/quickclass/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the class_sets collection.
// Each named set is one document holding the whole ordered list.
type Store struct {
	c *mongo.Collection
}

// New creates a new class set store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("class_sets")}
}

// EnsureIndexes creates the unique index on name.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_class_set_name"),
	})
	return err
}

// Get returns the named set. A set that was never saved comes back
// empty, with a non-nil Entries slice.
func (s *Store) Get(ctx context.Context, name string) (models.ClassSet, error) {
	var set models.ClassSet
	err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&set)
	if err == mongo.ErrNoDocuments {
		return models.ClassSet{Name: name, Entries: []models.ClassEntry{}}, nil
	}
	if err != nil {
		return models.ClassSet{}, err
	}
	if set.Entries == nil {
		set.Entries = []models.ClassEntry{}
	}
	return set, nil
}

// Entries is shorthand for Get(...).Entries.
func (s *Store) Entries(ctx context.Context, name string) ([]models.ClassEntry, error) {
	set, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return set.Entries, nil
}

// Replace stores entries as the complete list for the named set.
// Uses upsert so it works whether the set exists or not.
func (s *Store) Replace(ctx context.Context, name string, entries []models.ClassEntry, updatedByName string) (models.ClassSet, error) {
	now := time.Now().UTC()
	entries = models.CloneEntries(entries)

	filter := bson.M{"name": name}
	update := bson.M{
		"$set": bson.M{
			"name":            name,
			"entries":         entries,
			"updated_at":      now,
			"updated_by_name": updatedByName,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var set models.ClassSet
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&set); err != nil {
		return models.ClassSet{}, err
	}
	if set.Entries == nil {
		set.Entries = []models.ClassEntry{}
	}
	return set, nil
}
