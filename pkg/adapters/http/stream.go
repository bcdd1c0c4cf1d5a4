package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/naas/pkg/domain"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *domain.SnapshotDiff]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan *domain.SnapshotDiff]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for sessionID. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan *domain.SnapshotDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.SnapshotDiff, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan *domain.SnapshotDiff]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers reports how many listeners sessionID has.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends diff to every listener of its session without blocking.
func (sm *StreamManager) Broadcast(diff *domain.SnapshotDiff) {
	if diff == nil {
		return
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[diff.SessionID] {
		select {
		case ch <- diff:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", diff.SessionID)
		}
	}
}

// publisher tracks the last snapshot a session broadcast so that each
// transition is sent as a diff against it.
type publisher struct {
	streams *StreamManager

	mu   sync.Mutex
	last *domain.Snapshot
}

func newPublisher(streams *StreamManager, prev *domain.Snapshot) *publisher {
	return &publisher{streams: streams, last: prev.Clone()}
}

func (p *publisher) publish(snap *domain.Snapshot) {
	p.mu.Lock()
	diff := domain.Diff(p.last, snap)
	p.last = snap.Clone()
	p.mu.Unlock()
	p.streams.Broadcast(diff)
}
