package ports

import (
	"context"

	"github.com/aretw0/naas/pkg/domain"
)

// Relay forwards a prompt to the generation backend.
//
// Implementations return *domain.RelayError for non-success answers and
// domain.ErrRelayUnconfigured when no credentials are available.
type Relay interface {
	Ask(ctx context.Context, prompt string) (*domain.Payload, error)
}

// RelayFunc adapts a function to the Relay interface.
type RelayFunc func(ctx context.Context, prompt string) (*domain.Payload, error)

func (f RelayFunc) Ask(ctx context.Context, prompt string) (*domain.Payload, error) {
	return f(ctx, prompt)
}
