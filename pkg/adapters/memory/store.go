package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Document),
	}
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := doc.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[pageID] = copied
	return nil
}

// Load retrieves the document from memory.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return doc.Snapshot(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, pageID)
	return nil
}

// List returns the stored page IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]string, 0, len(s.data))
	for id := range s.data {
		pages = append(pages, id)
	}
	sort.Strings(pages)
	return pages, nil
}
