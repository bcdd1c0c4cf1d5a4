package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/lifecycle"
	"github.com/go-chi/chi/v5"
)

// DraftRequest replaces the input and tone of a session. Absent fields are kept.
type DraftRequest struct {
	Input *string `json:"input,omitempty"`
	Tone  *string `json:"tone,omitempty"`
}

// CreateSessionRequest is the optional body of POST /api/sessions.
type CreateSessionRequest struct {
	Tone string `json:"tone,omitempty"`
}

// badRequest marks errors caused by the client's payload.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// draft is a validated DraftRequest.
type draft struct {
	input *string
	tone  domain.Tone
}

func (d draft) apply(c *lifecycle.Controller) {
	if d.input != nil {
		c.SetInput(*d.input)
	}
	if d.tone != "" {
		// Already validated against the same ToneSet.
		_ = c.SetTone(string(d.tone))
	}
}

func (s *Server) readDraft(r *http.Request) (draft, error) {
	var body DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return draft{}, &badRequest{"Invalid request body"}
	}
	var d draft
	if body.Input != nil {
		clean, err := lifecycle.SanitizeInput(*body.Input)
		if err != nil {
			return draft{}, &badRequest{fmt.Sprintf("Invalid input: %v", err)}
		}
		d.input = &clean
	}
	if body.Tone != nil {
		tone, err := s.tones.Parse(*body.Tone)
		if err != nil {
			return draft{}, &badRequest{fmt.Sprintf("Invalid tone: %q", *body.Tone)}
		}
		d.tone = tone
	}
	return d, nil
}

// controller rebuilds the session's controller from its stored snapshot.
// Every transition is broadcast as a diff through pub.
func (s *Server) controller(id string, prev *domain.Snapshot, pub *publisher) *lifecycle.Controller {
	broadcast := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			pub.publish(e.Snapshot)
		},
	}
	return lifecycle.New(s.relay,
		lifecycle.WithSessionID(id),
		lifecycle.WithSnapshot(prev),
		lifecycle.WithTones(s.tones),
		lifecycle.WithRelayTimeout(s.relayTimeout),
		lifecycle.WithLogger(s.logger),
		lifecycle.WithLifecycleHooks(s.hooks...),
		lifecycle.WithLifecycleHooks(broadcast),
	)
}

// operate runs op on the session named in the URL while holding its lock.
// Requests on one session are therefore applied one at a time.
// Lifecycle failures are part of the returned snapshot, so they answer 200.
func (s *Server) operate(w http.ResponseWriter, r *http.Request, op func(context.Context, *lifecycle.Controller) (*domain.Snapshot, error)) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Update(r.Context(), id, func(ctx context.Context, prev *domain.Snapshot) (*domain.Snapshot, error) {
		pub := newPublisher(s.streams, prev)
		c := s.controller(id, prev, pub)
		out, err := op(ctx, c)
		if out == nil {
			out = c.Snapshot()
		}
		pub.publish(out)
		return out, err
	})
	if snap == nil {
		s.writeSessionError(w, id, err)
		return
	}
	if err != nil {
		s.logger.Debug("Session request ended in error", "session_id", id, "state", snap.State, "err", err)
	}
	writeJSON(w, s.logger, http.StatusOK, snap)
}

func (s *Server) writeSessionError(w http.ResponseWriter, id string, err error) {
	var bad *badRequest
	switch {
	case errors.As(err, &bad):
		writeError(w, s.logger, http.StatusBadRequest, bad.msg)
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, s.logger, http.StatusNotFound, fmt.Sprintf("Session %q not found", id))
	default:
		s.logger.Error("Session request failed", "session_id", id, "err", err)
		writeError(w, s.logger, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeSessionError(w, "", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, s.logger, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, s.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	tone := s.tones.Default()
	if body.Tone != "" {
		parsed, err := s.tones.Parse(body.Tone)
		if err != nil {
			writeError(w, s.logger, http.StatusBadRequest, fmt.Sprintf("Invalid tone: %q", body.Tone))
			return
		}
		tone = parsed
	}
	snap, err := s.sessions.Create(r.Context(), tone)
	if err != nil {
		s.writeSessionError(w, "", err)
		return
	}
	s.logger.Info("Session created", "session_id", snap.SessionID, "tone", tone)
	writeJSON(w, s.logger, http.StatusCreated, snap)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, id, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, snap)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.writeSessionError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateInput(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(r)
	if err != nil {
		s.writeSessionError(w, "", err)
		return
	}
	s.operate(w, r, func(_ context.Context, c *lifecycle.Controller) (*domain.Snapshot, error) {
		d.apply(c)
		return c.Snapshot(), nil
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(r)
	if err != nil {
		s.writeSessionError(w, "", err)
		return
	}
	s.operate(w, r, func(ctx context.Context, c *lifecycle.Controller) (*domain.Snapshot, error) {
		d.apply(c)
		return c.Submit(ctx)
	})
}

func (s *Server) regenerate(w http.ResponseWriter, r *http.Request) {
	s.operate(w, r, func(ctx context.Context, c *lifecycle.Controller) (*domain.Snapshot, error) {
		return c.Regenerate(ctx)
	})
}

func (s *Server) retry(w http.ResponseWriter, r *http.Request) {
	s.operate(w, r, func(ctx context.Context, c *lifecycle.Controller) (*domain.Snapshot, error) {
		return c.Retry(ctx)
	})
}

// sessionEvents streams snapshot diffs (SSE). The first event is the full
// current snapshot; later ones carry only changed fields.
func (s *Server) sessionEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, s.logger, http.StatusInternalServerError, "Streaming not supported")
		s.logger.Error("SessionEvents: Streaming not supported")
		return
	}

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	snap, err := s.sessions.Load(r.Context(), id)
	if err != nil {
		s.writeSessionError(w, id, err)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, group := range strings.Split(raw, ",") {
			if group = strings.TrimSpace(group); group != "" {
				watch = append(watch, group)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", id, "watch", watch)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	s.writeEvent(w, domain.Diff(nil, snap))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", id)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !wanted(diff, watch) {
				continue
			}
			s.writeEvent(w, diff)
			flusher.Flush()
		}
	}
}

func (s *Server) writeEvent(w io.Writer, diff *domain.SnapshotDiff) {
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("SSE: Diff encode failed", "err", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func wanted(diff *domain.SnapshotDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, group := range watch {
		if diff.Touches(group) {
			return true
		}
	}
	return false
}
