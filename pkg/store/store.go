// Package store persists computed layouts under generated IDs.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process map for tests and single-instance servers
//   - [FileStore]: one JSON file per layout for local use
//   - [MongoStore]: a MongoDB collection for multi-instance deployments
//
// Usage:
//
//	doc := store.NewDocument(threshold, layout)
//	if err := s.Save(ctx, doc); err != nil {
//	    return err
//	}
//	got, err := s.Get(ctx, doc.ID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown or deleted
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	mstio "github.com/matzehuels/msttree/pkg/io"
)

// ErrNotFound is returned when a layout does not exist.
var ErrNotFound = errors.New("layout not found")

// Document is a stored layout.
type Document struct {
	ID        string           `json:"id" bson:"_id"`
	Created   time.Time        `json:"created" bson:"created"`
	Threshold float64          `json:"threshold" bson:"threshold"`
	Layout    mstio.LayoutData `json:"layout" bson:"layout"`
}

// NewDocument wraps a layout in a document with a fresh random ID.
func NewDocument(threshold float64, layout mstio.LayoutData) *Document {
	return &Document{
		ID:        uuid.NewString(),
		Created:   time.Now().UTC().Truncate(time.Millisecond),
		Threshold: threshold,
		Layout:    layout,
	}
}

// Store is the interface for layout storage backends.
type Store interface {
	// Save inserts or replaces a document.
	Save(ctx context.Context, doc *Document) error
	// Get returns the document with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)
	// Delete removes a document. Missing documents yield ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

// validID reports whether id looks like a generated document ID. Other IDs
// can never be stored, so lookups short-circuit to ErrNotFound.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
