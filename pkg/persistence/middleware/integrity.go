package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

type integrityMiddleware struct {
	next           ports.DocumentStore
	containerTypes []string
}

// NewIntegrityMiddleware refuses to save or load a document whose present tree
// breaks the tree invariants (see domain.ValidateTree), or whose id does not
// match the page it is stored under. Hand-edited files are the usual culprit.
func NewIntegrityMiddleware(containerTypes []string) Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &integrityMiddleware{next: next, containerTypes: containerTypes}
	}
}

func (m *integrityMiddleware) check(pageID string, doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: page %s has no document", domain.ErrInvalidTree, pageID)
	}
	if doc.ID != pageID {
		return fmt.Errorf("%w: page %s holds document %q", domain.ErrInvalidTree, pageID, doc.ID)
	}
	if err := domain.ValidateTree(doc.Components(), m.containerTypes); err != nil {
		return fmt.Errorf("page %s: %w", pageID, err)
	}
	return nil
}

func (m *integrityMiddleware) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	if err := m.check(pageID, doc); err != nil {
		return err
	}
	return m.next.Save(ctx, pageID, doc)
}

func (m *integrityMiddleware) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	doc, err := m.next.Load(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := m.check(pageID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *integrityMiddleware) Delete(ctx context.Context, pageID string) error {
	return m.next.Delete(ctx, pageID)
}

func (m *integrityMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
