package domain

// ActionRequest represents a side-effect that the controller requests the host to perform.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Standard Action Types
const (
	// ActionShowLoading requests the loading indicator and hides the response section.
	ActionShowLoading = "SHOW_LOADING"

	// ActionHideLoading removes the loading indicator.
	ActionHideLoading = "HIDE_LOADING"

	// ActionClearError hides the error section.
	ActionClearError = "CLEAR_ERROR"

	// ActionShowError displays a user-facing message.
	// Payload: string
	ActionShowError = "SHOW_ERROR"

	// ActionSetSubmitEnabled toggles the submit control.
	// Payload: bool
	ActionSetSubmitEnabled = "SET_SUBMIT_ENABLED"

	// ActionShowResponse renders the response section.
	// Payload: Result
	ActionShowResponse = "SHOW_RESPONSE"

	// ActionUpdateMeter sets the tact meter fill.
	// Payload: int (0-100)
	ActionUpdateMeter = "UPDATE_METER"

	// ActionScrollToResult brings the response section into view.
	ActionScrollToResult = "SCROLL_TO_RESULT"

	// ActionNotify shows a transient notification that is not part of the lifecycle.
	// Payload: Notification
	ActionNotify = "NOTIFY"

	// ActionSetSpeaking reflects whether the response is being read aloud.
	// Payload: bool
	ActionSetSpeaking = "SET_SPEAKING"

	// ActionSetRecording reflects whether speech input is being captured.
	// Payload: bool
	ActionSetRecording = "SET_RECORDING"

	// ActionSetInput replaces the input draft (e.g. with a transcript).
	// Payload: string
	ActionSetInput = "SET_INPUT"
)

// NotificationLevel classifies a transient notification.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// Notification is the payload of ActionNotify.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
