package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultRedactions matches email addresses and phone numbers.
var DefaultRedactions = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().\-]{7,}\d`,
}

type redactionMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks text matching the patterns in the stored
// draft input. Attempt and Result contexts are replayed by regenerate and
// retry, so they are stored as given; chain an encryption middleware to
// protect them at rest.
// It panics if a pattern does not compile.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	cloned := snap.Clone()
	cloned.Input = m.mask(cloned.Input)
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactionMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
