package tracker

import "intake-go/internal/model"

// Store holds the tracker's record collection.
// Implementations must preserve insertion order and never share the
// returned documents with their internal state.
type Store interface {
	// Insert appends a new document. Returns ErrDuplicateID if the ID is taken.
	Insert(doc *model.Document) error

	// Get returns the document with the given ID, or nil if there is none.
	Get(id string) (*model.Document, error)

	// Update replaces the stored document with the same ID.
	// Returns ErrNotFound if no such document exists.
	Update(doc *model.Document) error

	// List returns every document in insertion order.
	List() ([]*model.Document, error)

	// Close releases the store's resources.
	Close() error
}
