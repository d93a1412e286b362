// internal/app/store/blocks/blockstore.go
package blockstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/quickclass/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrTitleRequired is returned by Create for a blank title.
var ErrTitleRequired = errors.New("block title is required")

// Store provides access to the blocks collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new block store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("blocks")}
}

// EnsureIndexes creates the listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("idx_block_title_ci"),
	})
	return err
}

// Create inserts a new block.
func (s *Store) Create(ctx context.Context, title, content, className string) (models.Block, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Block{}, ErrTitleRequired
	}

	now := time.Now().UTC()
	b := models.Block{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Content:   content,
		ClassName: strings.Join(strings.Fields(className), " "),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Block{}, err
	}
	return b, nil
}

// GetByID loads a block. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Block, error) {
	var b models.Block
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.Block{}, err
	}
	return b, nil
}

// List returns blocks ordered by title, skipping skip and returning at most limit.
func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.Block, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Block
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of blocks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// SetClassName stores a block's class attribute.
// Returns mongo.ErrNoDocuments if the block does not exist.
func (s *Store) SetClassName(ctx context.Context, id primitive.ObjectID, className string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"class_name": className,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
