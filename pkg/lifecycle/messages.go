package lifecycle

import (
	"errors"
	"fmt"

	"github.com/aretw0/naas/pkg/domain"
)

// User-facing messages.
const (
	MsgEmptyContext            = "Please enter some context or record your voice."
	MsgNoContext               = "No context available to regenerate."
	MsgNoResponseCopy          = "No response to copy."
	MsgNoResponseSpeak         = "No response to speak."
	MsgSpeechInputUnsupported  = "Speech recognition is not supported in your browser."
	MsgSpeechInputFailed       = "Speech recognition failed. Please try again or use text input."
	MsgSpeechOutputUnsupported = "Speech synthesis is not supported in your browser."
	MsgSpeechOutputFailed      = "Speech synthesis failed. Please try again."
	MsgCopyFailed              = "Failed to copy to clipboard. Please select and copy manually."
	MsgCopied                  = "Response copied to clipboard!"
	MsgMalformedPayload        = "Invalid response format from API"
	MsgGeneric                 = "Failed to generate response. Please try again."
)

// Message maps a relay failure to the text shown to the user.
// An endpoint message is passed through verbatim.
func Message(err error) string {
	var relayErr *domain.RelayError
	switch {
	case errors.As(err, &relayErr):
		if relayErr.Message != "" {
			return relayErr.Message
		}
		return fmt.Sprintf("API request failed: %d", relayErr.Status)
	case errors.Is(err, domain.ErrMalformedPayload):
		return MsgMalformedPayload
	case errors.Is(err, domain.ErrRelayUnconfigured):
		return domain.ErrRelayUnconfigured.Error()
	}
	return MsgGeneric
}
