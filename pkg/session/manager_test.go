package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/aretw0/naas/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Snapshot
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Snapshot)
	}
	s.data[sessionID] = *snap.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.data[sessionID]; ok {
		return snap.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_UpdateSerializesReadModifyWrite(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewSnapshot(id, domain.ToneGentle)))

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(_ context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
				snap.Generation++
				return snap, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, writers, snap.Generation, "no update may be lost")
}

func TestManager_UpdateSavesOnFailureWhenSnapshotReturned(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s", domain.NewSnapshot("s", domain.ToneGentle)))

	boom := errors.New("relay down")
	out, err := manager.Update(ctx, "s", func(_ context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
		snap.State = domain.StateError
		return snap, boom
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, out)

	loaded, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.StateError, loaded.State)

	_, err = manager.Update(ctx, "s", func(context.Context, *domain.Snapshot) (*domain.Snapshot, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	loaded, _ = manager.Load(ctx, "s")
	assert.Equal(t, domain.StateError, loaded.State)
}

func TestManager_UpdateMissingSession(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	_, err := manager.Update(context.Background(), "ghost", func(_ context.Context, s *domain.Snapshot) (*domain.Snapshot, error) {
		t.Fatal("fn must not run")
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := manager.LoadOrStart(ctx, id, domain.ToneFirm)
			assert.NoError(t, err)
			assert.NotNil(t, snap)
		}()
	}
	wg.Wait()

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, domain.ToneFirm, snap.Tone)
	assert.Equal(t, id, snap.SessionID)
}

func TestManager_Create(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()

	snap, err := manager.Create(ctx, domain.TonePlayful)
	require.NoError(t, err)
	_, err = uuid.Parse(snap.SessionID)
	assert.NoError(t, err)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{snap.SessionID}, ids)

	require.NoError(t, manager.Delete(ctx, snap.SessionID))
	_, err = manager.Load(ctx, snap.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type countingLocker struct {
	mu      sync.Mutex
	locks   int
	unlocks int
	lastTTL time.Duration
	lockErr error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lockErr != nil {
		return nil, l.lockErr
	}
	l.locks++
	l.lastTTL = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := manager.LoadOrStart(ctx, "d", domain.ToneGentle)
	require.NoError(t, err)

	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.lastTTL)

	locker.lockErr = errors.New("redis unavailable")
	_, err = manager.Load(ctx, "d")
	assert.ErrorIs(t, err, locker.lockErr)
}
