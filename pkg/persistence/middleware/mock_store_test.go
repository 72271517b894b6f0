package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps the pointers it is given so tests can corrupt stored documents.
type MockStore struct {
	data  map[string]*domain.Document
	calls []string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Document),
	}
}

func (s *MockStore) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	s.calls = append(s.calls, "save")
	s.data[pageID] = doc
	return nil
}

func (s *MockStore) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	s.calls = append(s.calls, "load")
	doc, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *MockStore) Delete(ctx context.Context, pageID string) error {
	s.calls = append(s.calls, "delete")
	delete(s.data, pageID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.calls = append(s.calls, "list")
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ ports.DocumentStore = (*MockStore)(nil)
