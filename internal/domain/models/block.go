// internal/domain/models/block.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Block is a content block whose class attribute editors decorate with
// predefined classes. ClassName is the space-separated class string and is
// owned by the block, not by the selector that edits it.
type Block struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	TitleCI   string             `bson:"title_ci" json:"-"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	ClassName string             `bson:"class_name" json:"class_name"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
