package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every editor event.
// Rejected drops are expected user actions and are logged at Debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.PlacementEvent) {
			logger.InfoContext(ctx, "drop resolved",
				"page_id", e.PageID,
				"origin", e.Origin,
				"kind", e.Kind,
				"count", e.Count,
				"duration", e.Duration,
			)
		},
		OnReject: func(ctx context.Context, e *domain.PlacementEvent) {
			attrs := []any{"page_id", e.PageID, "origin", e.Origin}
			if e.Diagnostic != nil {
				attrs = append(attrs, "code", e.Diagnostic.Code, "message", e.Diagnostic.Message)
			}
			logger.DebugContext(ctx, "drop rejected", attrs...)
		},
		OnApply: func(ctx context.Context, e *domain.ApplyEvent) {
			logger.InfoContext(ctx, "action applied",
				"page_id", e.PageID,
				"action", e.Action,
				"changed", e.Changed,
				"revision", e.Revision,
			)
		},
	}
}

// Combine merges several hook sets; each event is delivered to every set in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var resolve, reject []func(context.Context, *domain.PlacementEvent)
	var apply []func(context.Context, *domain.ApplyEvent)
	for _, s := range sets {
		if s.OnResolve != nil {
			resolve = append(resolve, s.OnResolve)
		}
		if s.OnReject != nil {
			reject = append(reject, s.OnReject)
		}
		if s.OnApply != nil {
			apply = append(apply, s.OnApply)
		}
	}

	if len(resolve) > 0 {
		out.OnResolve = func(ctx context.Context, e *domain.PlacementEvent) {
			for _, fn := range resolve {
				fn(ctx, e)
			}
		}
	}
	if len(reject) > 0 {
		out.OnReject = func(ctx context.Context, e *domain.PlacementEvent) {
			for _, fn := range reject {
				fn(ctx, e)
			}
		}
	}
	if len(apply) > 0 {
		out.OnApply = func(ctx context.Context, e *domain.ApplyEvent) {
			for _, fn := range apply {
				fn(ctx, e)
			}
		}
	}
	return out
}
