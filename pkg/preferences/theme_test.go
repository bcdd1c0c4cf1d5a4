package preferences_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/naas/pkg/adapters/memory"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes_DefaultAndToggle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPreferences()
	themes := preferences.NewThemes(store, "")

	theme, err := themes.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)

	theme, err = themes.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, theme)

	raw, err := store.Get(ctx, domain.DefaultProfile, domain.PreferenceTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", raw)

	theme, err = themes.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)
}

func TestThemes_CorruptValueFallsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPreferences()
	require.NoError(t, store.Set(ctx, "p", domain.PreferenceTheme, "sepia"))

	theme, err := preferences.NewThemes(store, "p").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeLight, theme)
}

func TestThemes_SetRejectsUnknown(t *testing.T) {
	err := preferences.NewThemes(memory.NewPreferences(), "").Set(context.Background(), "sepia")
	assert.ErrorIs(t, err, domain.ErrInvalidTheme)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string, string) (string, error) {
	return "", errors.New("disk gone")
}
func (brokenStore) Set(context.Context, string, string, string) error { return errors.New("disk gone") }

func TestThemes_StoreFailure(t *testing.T) {
	theme, err := preferences.NewThemes(brokenStore{}, "").Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.DefaultTheme, theme)
}
