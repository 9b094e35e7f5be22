package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/adapter"
)

// fakeAI replays scripted answers in call order and records every prompt.
type fakeAI struct {
	mu         sync.Mutex
	replies    []string
	err        error
	prompts    []string
	calls      int
	tokens     int // CountTokens answer
	tokenCalls int
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

func (f *fakeAI) record(messages []adapter.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Content)
	}
}

func (f *fakeAI) ListModels(context.Context) ([]string, error) { return []string{"fake"}, nil }

func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls++
	return f.tokens, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.record(messages)
	return f.next()
}

func (f *fakeAI) ChatStream(ctx context.Context, model string, messages []adapter.Message, onDelta adapter.StreamHandler) (string, error) {
	f.record(messages)
	out, err := f.next()
	if err != nil {
		return "", err
	}
	// stream rune by rune to exercise cumulative delta handling
	for _, r := range out {
		if onDelta != nil {
			onDelta(string(r))
		}
	}
	return out, nil
}

// fakeRetriever returns a fixed answer or error.
type fakeRetriever struct {
	docs  []model.Document
	err   error
	calls int
	last  string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	f.calls++
	f.last = query
	if f.err != nil {
		return nil, f.err
	}
	if k > 0 && k < len(f.docs) {
		return f.docs[:k], nil
	}
	return f.docs, nil
}

// recordingNotifier captures progress callbacks.
type recordingNotifier struct {
	steps  []string
	deltas []string
}

func (n *recordingNotifier) Step(name, detail string) { n.steps = append(n.steps, name) }
func (n *recordingNotifier) Delta(cum string)         { n.deltas = append(n.deltas, cum) }

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
