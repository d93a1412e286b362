// internal/domain/models/classentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassEntry is one predefined CSS class token with an optional description.
// Entries have no identity of their own; their position in the owning list
// is what identifies them.
type ClassEntry struct {
	Class       string `bson:"class" json:"class" toml:"class"`
	Description string `bson:"description" json:"description" toml:"description"`
}

// ClassSet is the persisted, ordered list of predefined classes.
// There is one document per named set; the app uses DefaultClassSet.
type ClassSet struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name string             `bson:"name" json:"name"`

	// Order is significant: it is the display and selection order.
	Entries []ClassEntry `bson:"entries" json:"entries"`

	UpdatedAt     *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedByName string     `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}

// DefaultClassSet is the name of the class set edited on the admin page.
const DefaultClassSet = "default"

// CloneEntries returns a copy of entries that shares no backing array.
// A nil input yields an empty, non-nil slice so JSON encodes it as [].
func CloneEntries(entries []ClassEntry) []ClassEntry {
	out := make([]ClassEntry, len(entries))
	copy(out, entries)
	return out
}
