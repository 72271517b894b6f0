package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/placement"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// ChangeListener is notified after a page document changed and was saved.
// before is nil when the page was just created.
type ChangeListener func(ctx context.Context, before, after *domain.Document)

// Editor is the high-level entry point of the library.
// It resolves drops against stored pages, applies them to the page history and
// persists the result, one mutation per page at a time.
type Editor struct {
	resolver     *placement.Resolver
	sessions     *session.Manager
	store        ports.DocumentStore
	locker       ports.DistributedLocker
	lockTTL      time.Duration
	resolverOpts []placement.Option
	hooks        domain.LifecycleHooks
	listeners    []ChangeListener
	historyLimit int
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithStore sets where page documents are persisted (default: in memory).
func WithStore(store ports.DocumentStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithLocker enables distributed page locks, for editors sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed page locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Editor) {
		e.lockTTL = ttl
	}
}

// WithResolverOptions configures the drop resolver (container types, child rules...).
func WithResolverOptions(opts ...placement.Option) Option {
	return func(e *Editor) {
		e.resolverOpts = append(e.resolverOpts, opts...)
	}
}

// WithHistoryLimit bounds the number of undo steps kept per page.
func WithHistoryLimit(limit int) Option {
	return func(e *Editor) {
		e.historyLimit = limit
	}
}

// WithChangeListener registers a listener for saved changes.
func WithChangeListener(fn ChangeListener) Option {
	return func(e *Editor) {
		if fn != nil {
			e.listeners = append(e.listeners, fn)
		}
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New initializes an Editor. Without options pages live in memory and the
// resolver uses the default container types.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{historyLimit: domain.DefaultHistoryLimit}
	for _, opt := range opts {
		opt(e)
	}

	if e.historyLimit < 0 {
		return nil, fmt.Errorf("history limit cannot be negative: %d", e.historyLimit)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	// The logger goes first so user options can replace it.
	resolverOpts := append([]placement.Option{placement.WithLogger(e.logger)}, e.resolverOpts...)
	e.resolver = placement.New(resolverOpts...)

	sessionOpts := []session.Option{session.WithLogger(e.logger), session.WithLockTTL(e.lockTTL)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	return e, nil
}

// Resolver returns the drop resolver used by the editor.
func (e *Editor) Resolver() *placement.Resolver {
	return e.resolver
}

// Store returns the document store used by the editor.
func (e *Editor) Store() ports.DocumentStore {
	return e.store
}

// Open loads a page, creating it with tree when it does not exist yet.
// The tree is validated before creation; it is ignored when the page exists.
func (e *Editor) Open(ctx context.Context, pageID string, tree []domain.Component) (*domain.Document, error) {
	if pageID == "" {
		return nil, domain.ErrInvalidPageID
	}
	if err := domain.ValidateTree(tree, e.resolver.ContainerTypes()); err != nil {
		return nil, err
	}

	doc, created, err := e.sessions.LoadOrCreate(ctx, pageID, domain.CloneTree(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", pageID, err)
	}
	if created {
		e.logger.Info("page created", "page_id", pageID, "components", domain.Count(doc.Components()))
		e.notify(ctx, nil, doc)
	}
	return doc, nil
}

// Load returns a stored page.
func (e *Editor) Load(ctx context.Context, pageID string) (*domain.Document, error) {
	return e.sessions.Load(ctx, pageID)
}

// List returns the IDs of the stored pages.
func (e *Editor) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Delete removes a page.
func (e *Editor) Delete(ctx context.Context, pageID string) error {
	if err := e.sessions.Delete(ctx, pageID); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", pageID, err)
	}
	e.logger.Info("page deleted", "page_id", pageID)
	return nil
}

// Resolve computes the placement of a gesture against an arbitrary tree without
// touching any page. Hooks fire with an empty page ID.
func (e *Editor) Resolve(ctx context.Context, g domain.Gesture, tree []domain.Component) domain.Placement {
	return e.resolve(ctx, "", g, tree)
}

// Drop resolves a gesture against the present tree of a page and applies the
// resulting placement as a single undoable step.
// A rejected drop returns the None placement and the unchanged document, without error.
func (e *Editor) Drop(ctx context.Context, pageID string, g domain.Gesture) (domain.Placement, *domain.Document, error) {
	var (
		result domain.Placement
		before *domain.Document
	)
	doc, err := e.sessions.Update(ctx, pageID, func(doc *domain.Document) (bool, error) {
		// 1. Resolve against the locked present
		result = e.resolve(ctx, pageID, g, doc.Components())
		if _, rejected := result.Rejected(); rejected {
			return false, nil
		}

		// 2. Apply as one history step
		before = doc.Head()
		return e.apply(ctx, doc, result)
	})
	if err != nil {
		return result, nil, fmt.Errorf("failed to drop on page %s: %w", pageID, err)
	}

	if before != nil && before.Revision != doc.Revision {
		e.notify(ctx, before, doc)
	}
	return result, doc, nil
}

// Dispatch applies a reducer action (remove, update, reorder, set, undo, redo or
// a raw instruction) to a page. changed is false when the tree is left as it was.
func (e *Editor) Dispatch(ctx context.Context, pageID string, action domain.Action) (*domain.Document, bool, error) {
	if set, ok := action.(domain.Set); ok {
		if err := domain.ValidateTree(set.Components, e.resolver.ContainerTypes()); err != nil {
			return nil, false, err
		}
	}

	var before *domain.Document
	changed := false
	doc, err := e.sessions.Update(ctx, pageID, func(doc *domain.Document) (bool, error) {
		before = doc.Head()
		var err error
		changed, err = e.apply(ctx, doc, action)
		return changed, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply %s on page %s: %w", actionName(action), pageID, err)
	}

	if changed {
		e.notify(ctx, before, doc)
	}
	return doc, changed, nil
}

// Undo restores the previous tree of a page.
func (e *Editor) Undo(ctx context.Context, pageID string) (*domain.Document, bool, error) {
	return e.Dispatch(ctx, pageID, domain.Undo{})
}

// Redo re-applies the last undone tree of a page.
func (e *Editor) Redo(ctx context.Context, pageID string) (*domain.Document, bool, error) {
	return e.Dispatch(ctx, pageID, domain.Redo{})
}

func (e *Editor) resolve(ctx context.Context, pageID string, g domain.Gesture, tree []domain.Component) domain.Placement {
	start := time.Now()
	result := e.resolver.Resolve(g, tree)

	evt := &domain.PlacementEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResolve, PageID: pageID},
		Origin:    g.Drag.Origin,
		Kind:      result.Kind(),
		Count:     len(result.Instructions),
		Duration:  time.Since(start),
	}
	if d, rejected := result.Rejected(); rejected {
		evt.Type = domain.EventReject
		evt.Count = 0
		evt.Diagnostic = &d
		if e.hooks.OnReject != nil {
			e.hooks.OnReject(ctx, evt)
		}
		return result
	}
	if e.hooks.OnResolve != nil {
		e.hooks.OnResolve(ctx, evt)
	}
	return result
}

// apply runs action through the history reducer and bumps the revision on change.
func (e *Editor) apply(ctx context.Context, doc *domain.Document, action domain.Action) (bool, error) {
	h, changed, err := runtime.Reduce(doc.History, action, e.historyLimit)
	if err != nil {
		return false, err
	}
	if changed {
		doc.History = h
		doc.Revision++
	}

	if e.hooks.OnApply != nil {
		e.hooks.OnApply(ctx, &domain.ApplyEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventApply, PageID: doc.ID},
			Action:    action.ActionType(),
			Changed:   changed,
			Revision:  doc.Revision,
			Depth:     len(doc.History.Past),
		})
	}
	return changed, nil
}

func (e *Editor) notify(ctx context.Context, before, after *domain.Document) {
	for _, fn := range e.listeners {
		fn(ctx, before, after)
	}
}

func actionName(a domain.Action) string {
	if a == nil {
		return "nil action"
	}
	return string(a.ActionType())
}
