package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed page lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates page document access, serializing edits of the same page.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager with the given document store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(pageID) after unlocking.
func (m *Manager) acquire(pageID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		entry = &lockEntry{}
		m.locks[pageID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, pageID)
	}
}

// Load retrieves an existing page document from the store.
func (m *Manager) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	var doc *domain.Document
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, pageID)
		return err
	})
	return doc, err
}

// LoadOrCreate loads a page document. If the page does not exist it is created
// with tree as its present and persisted immediately.
func (m *Manager) LoadOrCreate(ctx context.Context, pageID string, tree []domain.Component) (*domain.Document, bool, error) {
	var (
		doc     *domain.Document
		created bool
	)
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, pageID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check page existence: %w", err)
		}

		doc = domain.NewDocument(pageID, tree)
		if err := m.store.Save(ctx, pageID, doc); err != nil {
			return fmt.Errorf("failed to initialize page: %w", err)
		}
		created = true
		return nil
	})
	return doc, created, err
}

// Update loads a page, lets fn edit it and saves it back, all under the page lock.
// fn reports whether the document changed; unchanged documents are not written.
func (m *Manager) Update(ctx context.Context, pageID string, fn func(doc *domain.Document) (bool, error)) (*domain.Document, error) {
	var doc *domain.Document
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, pageID)
		if err != nil {
			return err
		}

		changed, err := fn(doc)
		if err != nil || !changed {
			return err
		}

		doc.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, pageID, doc); err != nil {
			return fmt.Errorf("failed to save page: %w", err)
		}
		return nil
	})
	return doc, err
}

// Save persists the page document.
func (m *Manager) Save(ctx context.Context, pageID string, doc *domain.Document) error {
	return m.WithLock(ctx, pageID, func(ctx context.Context) error {
		return m.store.Save(ctx, pageID, doc)
	})
}

// Delete removes the page document from the store.
func (m *Manager) Delete(ctx context.Context, pageID string) error {
	return m.WithLock(ctx, pageID, func(ctx context.Context) error {
		return m.store.Delete(ctx, pageID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes a function while holding the lock for the page.
func (m *Manager) WithLock(ctx context.Context, pageID string, fn func(context.Context) error) error {
	entry := m.acquire(pageID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(pageID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, pageID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"page_id", pageID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
