package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewRedactionMiddleware(middleware.DefaultRedactions)(underlyingStore)

	ctx := context.Background()
	input := "Recruiter jane.doe@example.com keeps calling +1 (555) 123-4567"
	snap := domain.NewSnapshot("pii", domain.ToneGentle)
	snap.Input = input
	snap.Attempt = &domain.Attempt{Context: input, Tone: domain.ToneGentle}
	snap.Result = &domain.Result{Context: input, Tone: domain.ToneGentle, Response: "Please stop contacting me.", Score: 58}

	require.NoError(t, store.Save(ctx, "pii", snap))

	assert.Equal(t, input, snap.Input, "caller snapshot must not change")
	assert.Equal(t, input, snap.Attempt.Context)
	assert.Equal(t, input, snap.Result.Context)

	stored, err := underlyingStore.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "Recruiter *** keeps calling ***", stored.Input)
	assert.Equal(t, input, stored.Attempt.Context, "replayed by retry")
	assert.Equal(t, input, stored.Result.Context, "replayed by regenerate")
	assert.Equal(t, "Please stop contacting me.", stored.Result.Response)
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.Chain(underlyingStore,
		middleware.NewRedactionMiddleware(middleware.DefaultRedactions),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	snap := domain.NewSnapshot("chain", domain.ToneGentle)
	snap.Input = "mail me at a@b.io"
	require.NoError(t, store.Save(ctx, "chain", snap))

	raw, err := underlyingStore.Load(ctx, "chain")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Input)

	loaded, err := store.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, "mail me at ***", loaded.Input)
}
