package ports

import (
	"context"

	"github.com/aretw0/naas/pkg/domain"
)

// ActionDispatcher defines how side-effects are executed.
// The controller emits requests, and the host implements this interface to handle them.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req domain.ActionRequest) error
}

// DispatcherFunc adapts a function to the ActionDispatcher interface.
type DispatcherFunc func(ctx context.Context, req domain.ActionRequest) error

func (f DispatcherFunc) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	return f(ctx, req)
}
