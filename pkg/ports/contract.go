package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID, domain.ToneFirm)
		snap.State = domain.StateSuccess
		snap.Input = "Neighbour wants me to water plants for a month"
		snap.Attempt = &domain.Attempt{Context: snap.Input, Tone: domain.ToneFirm}
		snap.Result = &domain.Result{Context: snap.Input, Tone: domain.ToneFirm, Response: "I appreciate you asking, but I can't.", Score: 53}
		snap.Generation = 3
		snap.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, snap.Input, loaded.Input)
		assert.Equal(t, snap.Tone, loaded.Tone)
		assert.Equal(t, snap.Generation, loaded.Generation)
		require.NotNil(t, loaded.Result)
		assert.Equal(t, *snap.Result, *loaded.Result)
		require.NotNil(t, loaded.Attempt)
		assert.Equal(t, *snap.Attempt, *loaded.Attempt)
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load Is Isolated From Caller", func(t *testing.T) {
		snap := domain.NewSnapshot(sessionID, domain.ToneGentle)
		snap.Input = "original"
		require.NoError(t, store.Save(ctx, sessionID, snap))

		snap.Input = "mutated after save"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded.Input)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, domain.ToneGentle))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1, domain.ToneGentle))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2, domain.ToneGentle))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunPreferenceStoreContract verifies a PreferenceStore implementation.
func RunPreferenceStoreContract(t *testing.T, store PreferenceStore) {
	ctx := context.Background()
	profile := "contract-" + time.Now().Format("20060102150405")

	t.Run("Get Unset", func(t *testing.T) {
		_, err := store.Get(ctx, profile, domain.PreferenceTheme)
		assert.ErrorIs(t, err, domain.ErrPreferenceNotFound)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, profile, domain.PreferenceTheme, string(domain.ThemeDark)))
		v, err := store.Get(ctx, profile, domain.PreferenceTheme)
		require.NoError(t, err)
		assert.Equal(t, "dark", v)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, profile, domain.PreferenceTheme, string(domain.ThemeLight)))
		v, err := store.Get(ctx, profile, domain.PreferenceTheme)
		require.NoError(t, err)
		assert.Equal(t, "light", v)
	})

	t.Run("Profiles Are Separate", func(t *testing.T) {
		_, err := store.Get(ctx, profile+"-other", domain.PreferenceTheme)
		assert.ErrorIs(t, err, domain.ErrPreferenceNotFound)
	})
}
