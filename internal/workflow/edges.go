package workflow

import (
	"context"

	"github.com/rs/zerolog"
)

// Route labels shared by the edge-decision policies.
const (
	routeGenerate       = "generate"
	routeTransformQuery = "transform_query"
	routeUseful         = "useful"
	routeNotUseful      = "not useful"
	routeNotSupported   = "not supported"
)

// RetrievalDecision chooses the edge out of the document-grading node.
type RetrievalDecision interface {
	Decide(ctx context.Context, s *State) string
}

// GenerationDecision chooses the edge out of the generation node.
type GenerationDecision interface {
	Decide(ctx context.Context, s *State) string
}

// AlwaysGenerate is the default retrieval policy: with or without documents
// the run proceeds to generation. An empty set must not loop forever hunting
// for documents, and relevance filtering does not yet gate the edge.
type AlwaysGenerate struct {
	Log *zerolog.Logger
}

func (p AlwaysGenerate) Decide(_ context.Context, s *State) string {
	if len(s.Documents) == 0 {
		p.Log.Debug().Msg("no documents retrieved; proceeding straight to generate")
		return routeGenerate
	}
	p.Log.Debug().Int("documents", len(s.Documents)).Msg("documents present; proceeding to generate")
	return routeGenerate
}

// RetryOnEmpty regenerates the query while the filtered document set is empty,
// bounded by MaxRewrites; it then gives up and generates with what is there.
type RetryOnEmpty struct {
	MaxRewrites int
	Log         *zerolog.Logger
}

func (p RetryOnEmpty) Decide(_ context.Context, s *State) string {
	if len(s.Documents) == 0 && s.Rewrites < p.MaxRewrites {
		p.Log.Debug().Int("rewrites", s.Rewrites).Msg("empty document set; rewriting query")
		return routeTransformQuery
	}
	return routeGenerate
}

// AlwaysAccept is the default generation policy for resume rewriting: the
// generation is accepted as useful unconditionally.
type AlwaysAccept struct{}

func (AlwaysAccept) Decide(context.Context, *State) string { return routeUseful }

// GradedAccept routes on the grounding and evaluation graders: an ungrounded
// generation is regenerated, an off-question one triggers a query rewrite.
// Both loops are bounded; on exhaustion the best available generation wins.
type GradedAccept struct {
	Graders     *GraderSet
	MaxRewrites int
	MaxRegens   int

	regens int
}

func (p *GradedAccept) Decide(ctx context.Context, s *State) string {
	if len(s.Documents) > 0 && !p.Graders.GradeGrounding(ctx, s.Documents, s.Generation) {
		if p.regens < p.MaxRegens {
			p.regens++
			return routeNotSupported
		}
		return routeUseful
	}
	if res := p.Graders.Evaluate(ctx, s.Generation, s.Input, s.Documents); res.Score == "no" {
		if s.Rewrites < p.MaxRewrites {
			return routeNotUseful
		}
	}
	return routeUseful
}
