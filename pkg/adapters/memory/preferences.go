package memory

import (
	"context"
	"sync"

	"github.com/aretw0/naas/pkg/domain"
)

// Preferences implements ports.PreferenceStore in memory.
type Preferences struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewPreferences creates an empty preference store.
func NewPreferences() *Preferences {
	return &Preferences{data: make(map[string]map[string]string)}
}

func (p *Preferences) Get(ctx context.Context, profile, key string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[profile][key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return v, nil
}

func (p *Preferences) Set(ctx context.Context, profile, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data[profile] == nil {
		p.data[profile] = make(map[string]string)
	}
	p.data[profile][key] = value
	return nil
}
