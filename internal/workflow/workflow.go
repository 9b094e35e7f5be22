package workflow

import (
	"context"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/domain/ports/retrieval"
)

// Options tunes one workflow construction.
type Options struct {
	Model string
	K     int
	// MaxRewrites bounds the query-rewrite loop of the graded policies.
	MaxRewrites int
	// Graded swaps the always-proceed defaults for the grader-driven
	// policies (RetryOnEmpty / GradedAccept), bounded by MaxRewrites.
	Graded bool
	// Retrieval/Generation override the selected policies entirely.
	Retrieval  RetrievalDecision
	Generation GenerationDecision
	Notify     Notifier
}

// Workflow owns one compiled rewrite graph plus the initial-state plumbing.
type Workflow struct {
	graph *Graph
	log   *zerolog.Logger
}

// New builds the rewrite graph:
//
//	retrieve -> grade_doc_4_retrieval -(decide_to_generate)-> generate | question_regenerate
//	question_regenerate -> retrieve
//	generate -(grade_generation)-> END | question_regenerate | generate
func New(ai adapter.AIServiceAdapter, r retrieval.Retriever, opts Options, log *zerolog.Logger) (*Workflow, error) {
	graders := NewGraderSet(ai, opts.Model, log)
	nodes := NewNodes(ai, opts.Model, r, graders, opts.K, opts.Notify, log)

	if opts.MaxRewrites <= 0 {
		opts.MaxRewrites = 2
	}

	retrievalPolicy := opts.Retrieval
	if retrievalPolicy == nil {
		if opts.Graded {
			retrievalPolicy = RetryOnEmpty{MaxRewrites: opts.MaxRewrites, Log: log}
		} else {
			retrievalPolicy = AlwaysGenerate{Log: log}
		}
	}
	generationPolicy := opts.Generation
	if generationPolicy == nil {
		if opts.Graded {
			generationPolicy = &GradedAccept{Graders: graders, MaxRewrites: opts.MaxRewrites, MaxRegens: 1}
		} else {
			generationPolicy = AlwaysAccept{}
		}
	}

	graph, err := NewBuilder().
		AddNode("retrieve", nodes.Retrieve).
		AddNode("grade_doc_4_retrieval", nodes.GradeDocuments).
		AddNode("question_regenerate", nodes.RegenerateQuestion).
		AddNode("generate", nodes.Generate).
		SetEntryPoint("retrieve").
		AddEdge("retrieve", "grade_doc_4_retrieval").
		AddConditionalEdges("grade_doc_4_retrieval", retrievalPolicy.Decide, map[string]string{
			routeGenerate:       "generate",
			routeTransformQuery: "question_regenerate",
		}).
		AddEdge("question_regenerate", "retrieve").
		AddConditionalEdges("generate", generationPolicy.Decide, map[string]string{
			routeUseful:       End,
			routeNotUseful:    "question_regenerate",
			routeNotSupported: "generate",
		}).
		Compile()
	if err != nil {
		return nil, err
	}
	return &Workflow{graph: graph, log: log}, nil
}

// Run executes one rewrite for the given query and resume.
func (w *Workflow) Run(ctx context.Context, input, resume string) (State, error) {
	initial := State{Input: input, Resume: resume}
	return w.graph.Run(ctx, initial)
}
