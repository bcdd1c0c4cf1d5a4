package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	State         *LifecycleState `json:"state,omitempty"`
	Generation    *uint64         `json:"generation,omitempty"`
	Loading       *bool           `json:"loading,omitempty"`
	SubmitEnabled *bool           `json:"submit_enabled,omitempty"`

	Input *string `json:"input,omitempty"`
	Tone  *Tone   `json:"tone,omitempty"`

	// Result is set when the retained response changed.
	Result *Result `json:"result,omitempty"`

	// ErrorMessage is set when the message changed; an empty string means it was cleared.
	ErrorMessage *string `json:"error_message,omitempty"`

	Speaking  *bool `json:"speaking,omitempty"`
	Recording *bool `json:"recording,omitempty"`
}

// Watch groups accepted by SnapshotDiff.Touches.
const (
	WatchState    = "state"
	WatchInput    = "input"
	WatchResponse = "response"
	WatchError    = "error"
	WatchSpeech   = "speech"
)

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing observable changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	if oldSnap.State != newSnap.State {
		diff.State = &newSnap.State
	}
	if oldSnap.Generation != newSnap.Generation {
		diff.Generation = &newSnap.Generation
	}
	if oldSnap.Loading != newSnap.Loading {
		diff.Loading = &newSnap.Loading
	}
	if oldSnap.SubmitEnabled != newSnap.SubmitEnabled {
		diff.SubmitEnabled = &newSnap.SubmitEnabled
	}
	if oldSnap.Input != newSnap.Input {
		diff.Input = &newSnap.Input
	}
	if oldSnap.Tone != newSnap.Tone {
		diff.Tone = &newSnap.Tone
	}
	if !sameResult(oldSnap.Result, newSnap.Result) {
		diff.Result = newSnap.Result
	}
	if oldSnap.ErrorMessage != newSnap.ErrorMessage {
		diff.ErrorMessage = &newSnap.ErrorMessage
	}
	if oldSnap.Speaking != newSnap.Speaking {
		diff.Speaking = &newSnap.Speaking
	}
	if oldSnap.Recording != newSnap.Recording {
		diff.Recording = &newSnap.Recording
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameResult(a, b *Result) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Generation == nil &&
		d.Loading == nil &&
		d.SubmitEnabled == nil &&
		d.Input == nil &&
		d.Tone == nil &&
		d.Result == nil &&
		d.ErrorMessage == nil &&
		d.Speaking == nil &&
		d.Recording == nil
}

// Touches reports whether the diff changes anything in the named watch group.
// Unknown groups never match.
func (d *SnapshotDiff) Touches(group string) bool {
	switch group {
	case WatchState:
		return d.State != nil || d.Generation != nil || d.Loading != nil || d.SubmitEnabled != nil
	case WatchInput:
		return d.Input != nil || d.Tone != nil
	case WatchResponse:
		return d.Result != nil
	case WatchError:
		return d.ErrorMessage != nil
	case WatchSpeech:
		return d.Speaking != nil || d.Recording != nil
	}
	return false
}
