// Package preferences reads and writes the persisted display theme.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
)

// Themes wraps a PreferenceStore for one profile.
type Themes struct {
	store   ports.PreferenceStore
	profile string
}

// NewThemes uses domain.DefaultProfile when profile is empty.
func NewThemes(store ports.PreferenceStore, profile string) *Themes {
	if profile == "" {
		profile = domain.DefaultProfile
	}
	return &Themes{store: store, profile: profile}
}

// Load returns the stored theme. A missing or unreadable value yields the
// default theme, so startup never fails on preferences.
func (t *Themes) Load(ctx context.Context) (domain.Theme, error) {
	v, err := t.store.Get(ctx, t.profile, domain.PreferenceTheme)
	if errors.Is(err, domain.ErrPreferenceNotFound) {
		return domain.DefaultTheme, nil
	}
	if err != nil {
		return domain.DefaultTheme, fmt.Errorf("failed to read theme: %w", err)
	}
	theme, err := domain.ParseTheme(v)
	if err != nil {
		return domain.DefaultTheme, nil
	}
	return theme, nil
}

// Set stores theme.
func (t *Themes) Set(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	return t.store.Set(ctx, t.profile, domain.PreferenceTheme, string(theme))
}

// Toggle flips the stored theme and returns the new value.
func (t *Themes) Toggle(ctx context.Context) (domain.Theme, error) {
	current, err := t.Load(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := t.Set(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
