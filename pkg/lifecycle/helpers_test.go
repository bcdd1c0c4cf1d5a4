package lifecycle_test

import (
	"context"
	"sync"

	"github.com/aretw0/naas/pkg/domain"
)

type replyFunc func(ctx context.Context, call int, prompt string) (*domain.Payload, error)

// fakeRelay records prompts and answers through reply.
type fakeRelay struct {
	mu      sync.Mutex
	prompts []string
	reply   replyFunc
}

func replyWith(text string) *fakeRelay {
	return &fakeRelay{reply: func(context.Context, int, string) (*domain.Payload, error) {
		return domain.TextPayload(text), nil
	}}
}

func failWith(err error) *fakeRelay {
	return &fakeRelay{reply: func(context.Context, int, string) (*domain.Payload, error) {
		return nil, err
	}}
}

func (f *fakeRelay) Ask(ctx context.Context, prompt string) (*domain.Payload, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	n := len(f.prompts)
	f.mu.Unlock()
	return f.reply(ctx, n, prompt)
}

func (f *fakeRelay) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeRelay) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// recorder is an ActionDispatcher that keeps every request.
type recorder struct {
	mu      sync.Mutex
	actions []domain.ActionRequest
}

func (r *recorder) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, req)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	for i, a := range r.actions {
		out[i] = a.Type
	}
	return out
}

func (r *recorder) last(actionType string) (domain.ActionRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.actions) - 1; i >= 0; i-- {
		if r.actions[i].Type == actionType {
			return r.actions[i], true
		}
	}
	return domain.ActionRequest{}, false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}

type fakeClipboard struct {
	err       error
	available bool
	written   []string
}

func (f *fakeClipboard) WriteText(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, text)
	return nil
}

func (f *fakeClipboard) Available() bool { return f.available }

// blockingSpeaker plays until Stop is called or ctx ends.
type blockingSpeaker struct {
	started chan string
	stop    chan struct{}
	once    sync.Once
}

func newBlockingSpeaker() *blockingSpeaker {
	return &blockingSpeaker{started: make(chan string, 1), stop: make(chan struct{})}
}

func (s *blockingSpeaker) Speak(ctx context.Context, text string) error {
	s.started <- text
	select {
	case <-s.stop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *blockingSpeaker) Stop() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

type fakeRecognizer struct {
	transcript string
	err        error
}

func (f *fakeRecognizer) Listen(ctx context.Context) (string, error) { return f.transcript, f.err }
func (f *fakeRecognizer) Stop() error                                { return nil }
