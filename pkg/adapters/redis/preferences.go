package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/naas/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Preferences implements ports.PreferenceStore with one hash per profile.
type Preferences struct {
	client backend.UniversalClient
	prefix string
}

// NewPreferences uses prefix for keys; empty means DefaultPrefix.
func NewPreferences(client backend.UniversalClient, prefix string) *Preferences {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Preferences{client: client, prefix: prefix}
}

func (p *Preferences) key(profile string) string {
	return p.prefix + "prefs:" + profile
}

func (p *Preferences) Get(ctx context.Context, profile, key string) (string, error) {
	v, err := p.client.HGet(ctx, p.key(profile), key).Result()
	if errors.Is(err, backend.Nil) {
		return "", domain.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference: %w", err)
	}
	return v, nil
}

func (p *Preferences) Set(ctx context.Context, profile, key, value string) error {
	if err := p.client.HSet(ctx, p.key(profile), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}
