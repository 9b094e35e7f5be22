package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/adapter"
)

// fakeAI replays scripted answers in call order.
type fakeAI struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
}

func (f *fakeAI) next() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("fakeAI: no scripted reply left")
	}
	out := f.replies[0]
	f.replies = f.replies[1:]
	return out, nil
}

func (f *fakeAI) ListModels(context.Context) ([]string, error) { return []string{"fake"}, nil }

func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 0, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return f.next()
}

func (f *fakeAI) ChatStream(ctx context.Context, model string, messages []adapter.Message, onDelta adapter.StreamHandler) (string, error) {
	out, err := f.next()
	if err != nil {
		return "", err
	}
	for _, r := range out {
		if onDelta != nil {
			onDelta(string(r))
		}
	}
	return out, nil
}

// collectSink records every event in order.
type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Send(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *collectSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *collectSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeSessions serves a single canned session.
type fakeSessions struct {
	sess *model.Session
}

func (f *fakeSessions) Create(ctx context.Context, resumeText, requirements, sourceLang, targetLang, clientAddr string) (*model.Session, error) {
	return f.sess, nil
}

func (f *fakeSessions) GetAndTouch(ctx context.Context, id string) (*model.Session, error) {
	if f.sess == nil || f.sess.ID != id {
		return nil, domain.ErrSessionNotFound
	}
	return f.sess, nil
}

func (f *fakeSessions) DeleteExpired(ctx context.Context, now time.Time) (int, error) { return 0, nil }

func (f *fakeSessions) Len(ctx context.Context) (int, error) { return 1, nil }

// fakeResults signals through saved when Save has run. The modify use
// case persists from a goroutine, so tests wait on the channel.
type fakeResults struct {
	saved chan *model.RewriteResult
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: make(chan *model.RewriteResult, 1)}
}

func (f *fakeResults) Save(ctx context.Context, r *model.RewriteResult) error {
	f.saved <- r
	return nil
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
