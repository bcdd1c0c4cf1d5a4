package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/naas/pkg/domain"
)

// LoggingHooks logs transitions at info and relay round trips at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"trigger", e.Trigger,
				"generation", e.Generation,
			}
			if e.To == domain.StateSuccess {
				attrs = append(attrs, "score", e.Score)
			}
			logger.InfoContext(ctx, "transition", attrs...)
		},
		OnRelayCall: func(ctx context.Context, e *domain.RelayEvent) {
			logger.DebugContext(ctx, "relay_call", "session_id", e.SessionID, "tone", e.Tone, "generation", e.Generation)
		},
		OnRelayReturn: func(ctx context.Context, e *domain.RelayEvent) {
			logger.DebugContext(ctx, "relay_return",
				"session_id", e.SessionID,
				"duration", e.Duration,
				"is_error", e.IsError,
				"status", e.Status,
			)
		},
		OnDiscard: func(ctx context.Context, e *domain.RelayEvent) {
			logger.InfoContext(ctx, "relay_discard", "session_id", e.SessionID, "generation", e.Generation)
		},
	}
}
