package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/naas/pkg/domain"
)

// Preferences implements ports.PreferenceStore with one JSON object per profile.
type Preferences struct {
	BasePath string
	mu       sync.Mutex
}

// NewPreferences stores profiles under basePath, defaulting to ".naas/preferences".
func NewPreferences(basePath string) *Preferences {
	if basePath == "" {
		basePath = filepath.Join(".naas", "preferences")
	}
	return &Preferences{BasePath: basePath}
}

func (p *Preferences) Get(ctx context.Context, profile, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.read(profile)
	if err != nil {
		return "", err
	}
	v, ok := prefs[key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return v, nil
}

func (p *Preferences) Set(ctx context.Context, profile, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.read(profile)
	if err != nil {
		return err
	}
	prefs[key] = value

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return writeAtomic(p.BasePath, profile+".json", data)
}

func (p *Preferences) read(profile string) (map[string]string, error) {
	if err := validID(profile); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(p.BasePath, profile+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	prefs := map[string]string{}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return prefs, nil
}
