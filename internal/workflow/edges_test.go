package workflow

import (
	"context"
	"testing"

	"resume-rewrite-service/internal/domain/model"
)

func TestAlwaysGenerate(t *testing.T) {
	p := AlwaysGenerate{Log: testLogger()}
	if got := p.Decide(context.Background(), &State{}); got != routeGenerate {
		t.Fatalf("empty documents route = %q", got)
	}
	s := &State{Documents: []model.Document{{Title: "t"}}}
	if got := p.Decide(context.Background(), s); got != routeGenerate {
		t.Fatalf("with documents route = %q", got)
	}
}

func TestRetryOnEmptyBounds(t *testing.T) {
	p := RetryOnEmpty{MaxRewrites: 2, Log: testLogger()}

	if got := p.Decide(context.Background(), &State{Rewrites: 0}); got != routeTransformQuery {
		t.Fatalf("first empty pass route = %q", got)
	}
	if got := p.Decide(context.Background(), &State{Rewrites: 1}); got != routeTransformQuery {
		t.Fatalf("second empty pass route = %q", got)
	}
	if got := p.Decide(context.Background(), &State{Rewrites: 2}); got != routeGenerate {
		t.Fatalf("exhausted rewrites must give up and generate, got %q", got)
	}
	s := &State{Documents: []model.Document{{Title: "t"}}}
	if got := p.Decide(context.Background(), s); got != routeGenerate {
		t.Fatalf("documents present route = %q", got)
	}
}

func TestAlwaysAccept(t *testing.T) {
	if got := (AlwaysAccept{}).Decide(context.Background(), &State{}); got != routeUseful {
		t.Fatalf("route = %q", got)
	}
}

func TestGradedAcceptRegenBound(t *testing.T) {
	// grounding grader says "no" every time; evaluator would accept
	ai := &fakeAI{replies: []string{
		`{"score": "no"}`, // grounding check 1
		`{"score": "no"}`, // grounding check 2
		`{"score": "no"}`, // grounding check 3, regens exhausted
	}}
	p := &GradedAccept{Graders: NewGraderSet(ai, "m", testLogger()), MaxRewrites: 2, MaxRegens: 2}
	s := &State{
		Documents:  []model.Document{{Title: "t", Content: "c"}},
		Generation: "生成内容",
		Input:      "软件工程师",
	}

	if got := p.Decide(context.Background(), s); got != routeNotSupported {
		t.Fatalf("ungrounded generation route = %q", got)
	}
	if got := p.Decide(context.Background(), s); got != routeNotSupported {
		t.Fatalf("second ungrounded route = %q", got)
	}
	// third failure exhausts the regen budget: accept the best we have
	if got := p.Decide(context.Background(), s); got != routeUseful {
		t.Fatalf("exhausted regens route = %q", got)
	}
}

func TestGradedAcceptRewriteBound(t *testing.T) {
	// grounded, but the evaluator keeps rejecting
	ai := &fakeAI{replies: []string{
		`{"score": "yes"}`, // grounding ok
		`{"score": "no"}`,  // evaluation rejects
		`{"score": "yes"}`, // grounding ok
		`{"score": "no"}`,  // evaluation rejects, rewrites exhausted
	}}
	p := &GradedAccept{Graders: NewGraderSet(ai, "m", testLogger()), MaxRewrites: 1, MaxRegens: 2}
	docs := []model.Document{{Title: "t", Content: "c"}}

	s := &State{Documents: docs, Generation: "g", Input: "q", Rewrites: 0}
	if got := p.Decide(context.Background(), s); got != routeNotUseful {
		t.Fatalf("rejected generation route = %q", got)
	}

	s = &State{Documents: docs, Generation: "g", Input: "q", Rewrites: 1}
	if got := p.Decide(context.Background(), s); got != routeUseful {
		t.Fatalf("exhausted rewrites route = %q", got)
	}
}

func TestGradedAcceptSkipsGroundingWithoutDocuments(t *testing.T) {
	// only the evaluator runs; it accepts
	ai := &fakeAI{replies: []string{`{"score": "yes"}`}}
	p := &GradedAccept{Graders: NewGraderSet(ai, "m", testLogger()), MaxRewrites: 2, MaxRegens: 2}
	s := &State{Generation: "g", Input: "q"}

	if got := p.Decide(context.Background(), s); got != routeUseful {
		t.Fatalf("route = %q", got)
	}
	if ai.calls != 1 {
		t.Fatalf("grounding grader must not run without documents; %d calls", ai.calls)
	}
}
