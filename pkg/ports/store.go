package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// DocumentStore defines the interface for persisting page documents.
// A document carries the present tree and its undo/redo history.
type DocumentStore interface {
	// Save persists the document for a given page ID.
	Save(ctx context.Context, pageID string, doc *domain.Document) error

	// Load retrieves the document for a given page ID.
	// Returns domain.ErrDocumentNotFound if the page does not exist.
	Load(ctx context.Context, pageID string) (*domain.Document, error)

	// Delete removes the document for a given page ID.
	// Deleting a missing page is not an error.
	Delete(ctx context.Context, pageID string) error

	// List returns the IDs of all stored pages.
	List(ctx context.Context) ([]string, error)
}
