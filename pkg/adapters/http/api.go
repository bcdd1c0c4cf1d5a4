package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/naas/pkg/adapters/gtts"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
	"github.com/aretw0/naas/pkg/tact"
)

// TextRequest is the body of /api/score and /api/speech.
type TextRequest struct {
	Text string `json:"text"`
}

// ThemeBody is the wire form of the theme preference.
type ThemeBody struct {
	Theme domain.Theme `json:"theme"`
}

func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body TextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	text, err := lifecycle.SanitizeInput(body.Text)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid text")
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, s.logger, http.StatusBadRequest, "Text is required")
		return "", false
	}
	return text, true
}

func (s *Server) listTones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"tones":   s.tones.Strings(),
		"default": s.tones.Default(),
	})
}

func (s *Server) scoreText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.logger, http.StatusOK, tact.Analyze(text))
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.themes.Load(r.Context())
	if err != nil {
		s.logger.Warn("Theme load failed, using default", "err", err)
	}
	writeJSON(w, s.logger, http.StatusOK, ThemeBody{Theme: theme})
}

func (s *Server) setTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	theme, err := domain.ParseTheme(body.Theme)
	if err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.themes.Set(r.Context(), theme); err != nil {
		s.logger.Error("Theme save failed", "err", err)
		writeError(w, s.logger, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, ThemeBody{Theme: theme})
}

func (s *Server) toggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.themes.Toggle(r.Context())
	if err != nil {
		s.logger.Error("Theme toggle failed", "err", err)
		writeError(w, s.logger, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, ThemeBody{Theme: theme})
}

func (s *Server) synthesize(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil || !s.speech.Available() {
		writeError(w, s.logger, http.StatusServiceUnavailable, lifecycle.MsgSpeechOutputUnsupported)
		return
	}
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	audio, err := s.speech.Synthesize(r.Context(), text, gtts.MP3)
	if err != nil {
		s.logger.Error("Speech synthesis failed", "err", err)
		writeError(w, s.logger, http.StatusBadGateway, lifecycle.MsgSpeechOutputFailed)
		return
	}
	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.Write(audio.Data)
}
