package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.DocumentStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store operation at Debug and failures at Warn.
// A missing page is an expected outcome and is not reported as a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, pageID string, start time.Time, err error) {
	attrs := []any{"op", op, "page_id", pageID, "duration", time.Since(start)}
	if err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		m.logger.WarnContext(ctx, "store operation failed", append(attrs, "err", err)...)
		return
	}
	m.logger.DebugContext(ctx, "store operation", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	start := time.Now()
	err := m.next.Save(ctx, pageID, doc)
	m.log(ctx, "save", pageID, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	start := time.Now()
	doc, err := m.next.Load(ctx, pageID)
	m.log(ctx, "load", pageID, start, err)
	return doc, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, pageID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, pageID)
	m.log(ctx, "delete", pageID, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	pages, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return pages, err
}
