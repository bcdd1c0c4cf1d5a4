package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Prompt string `json:"prompt"`
}

// ask relays a fully built prompt and echoes the upstream payload untouched.
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Ask: Invalid request body", "err", err)
		return
	}
	if body.Prompt == "" {
		writeError(w, s.logger, http.StatusBadRequest, "Prompt is required")
		return
	}
	prompt, err := lifecycle.SanitizePrompt(body.Prompt, s.tones)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid prompt")
		s.logger.Warn("Ask: Prompt rejected", "err", err, "size", len(body.Prompt))
		return
	}
	if s.relay == nil {
		writeError(w, s.logger, http.StatusInternalServerError, domain.ErrRelayUnconfigured.Error())
		return
	}

	ctx := r.Context()
	if s.relayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.relayTimeout)
		defer cancel()
	}

	payload, err := s.relay.Ask(ctx, prompt)
	if err != nil {
		s.writeRelayError(w, err)
		return
	}
	data, err := payload.Bytes()
	if err != nil {
		s.logger.Error("Ask: Payload encode failed", "err", err)
		writeError(w, s.logger, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) writeRelayError(w http.ResponseWriter, err error) {
	var relayErr *domain.RelayError
	switch {
	case errors.Is(err, domain.ErrRelayUnconfigured):
		writeError(w, s.logger, http.StatusInternalServerError, domain.ErrRelayUnconfigured.Error())
	case errors.As(err, &relayErr):
		status := relayErr.Status
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusBadGateway
		}
		s.logger.Warn("Ask: Upstream error", "status", relayErr.Status, "reason", relayErr.Reason)
		writeJSON(w, s.logger, status, relayErr.Envelope())
	default:
		s.logger.Error("API Error", "err", err)
		writeError(w, s.logger, http.StatusInternalServerError, "Internal server error")
	}
}
