// Package ports defines the interfaces the application layer needs from
// infrastructure. Implementations live under infrastructure/.
package ports

import "context"

// Document is one record in a named collection
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// DocumentStore abstracts the remote key-ordered collection/document store.
// Reads used by the catalogue cache are bulk streams; targeted lookups and
// atomic field mutations serve the community services.
//
// GetByID returns a NOT_FOUND AppError when the document is absent.
// Update accepts dotted keys ("rating.overall") to merge into nested maps
// without overwriting sibling keys.
type DocumentStore interface {
	StreamAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (map[string]interface{}, error)
	GetByIDs(ctx context.Context, collection string, ids []string) (map[string]map[string]interface{}, error)
	Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error)

	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Set(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error

	AtomicIncrement(ctx context.Context, collection, id, field string, delta int) error
	AtomicArrayAdd(ctx context.Context, collection, id, field, value string) error
	AtomicArrayRemove(ctx context.Context, collection, id, field, value string) error
}

// EventPublisher announces catalogue mutations to interested consumers
type EventPublisher interface {
	PublishCatalogChanged(ctx context.Context, collection, docID, action string) error
}
