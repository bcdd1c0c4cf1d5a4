package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition  EventType = "transition"
	EventRelayCall   EventType = "relay_call"
	EventRelayReturn EventType = "relay_return"
	EventDiscard     EventType = "discard"
)

// Trigger names the user action that started a request.
type Trigger string

const (
	TriggerSubmit     Trigger = "submit"
	TriggerRegenerate Trigger = "regenerate"
	TriggerRetry      Trigger = "retry"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// TransitionEvent is emitted on every lifecycle state change.
type TransitionEvent struct {
	EventBase
	From       LifecycleState `json:"from"`
	To         LifecycleState `json:"to"`
	Trigger    Trigger        `json:"trigger"`
	Generation uint64         `json:"generation"`
	Score      int            `json:"score,omitempty"`
	Snapshot   *Snapshot      `json:"-"`
}

// RelayEvent describes one relay round trip.
type RelayEvent struct {
	EventBase
	Trigger    Trigger       `json:"trigger"`
	Generation uint64        `json:"generation"`
	Tone       Tone          `json:"tone"`
	Duration   time.Duration `json:"duration,omitempty"`
	Status     int           `json:"status,omitempty"`
	IsError    bool          `json:"is_error,omitempty"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnTransition  func(context.Context, *TransitionEvent)
	OnRelayCall   func(context.Context, *RelayEvent)
	OnRelayReturn func(context.Context, *RelayEvent)
	OnDiscard     func(context.Context, *RelayEvent)
}

// CombineHooks fans every callback out to each of the given hooks in order.
func CombineHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnRelayCall: func(ctx context.Context, e *RelayEvent) {
			for _, h := range hooks {
				if h.OnRelayCall != nil {
					h.OnRelayCall(ctx, e)
				}
			}
		},
		OnRelayReturn: func(ctx context.Context, e *RelayEvent) {
			for _, h := range hooks {
				if h.OnRelayReturn != nil {
					h.OnRelayReturn(ctx, e)
				}
			}
		},
		OnDiscard: func(ctx context.Context, e *RelayEvent) {
			for _, h := range hooks {
				if h.OnDiscard != nil {
					h.OnDiscard(ctx, e)
				}
			}
		},
	}
}
