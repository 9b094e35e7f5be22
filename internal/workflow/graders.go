package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/adapter"
)

// GradeResult is a grader verdict. Score is "yes" or "no"; Feedback is only
// populated by the evaluator.
type GradeResult struct {
	Score    string `json:"score"`
	Feedback string `json:"feedback,omitempty"`
}

// GraderSet bundles the grading predicates and the question rewriter. Each
// predicate is one LLM call against a fixed template. A malformed or failed
// grade never propagates as an error: the deterministic fallback is "yes"
// (keep the document / accept the generation) so retrieval cannot deadlock
// on a bad grade.
type GraderSet struct {
	ai    adapter.AIServiceAdapter
	model string
	log   *zerolog.Logger
}

func NewGraderSet(ai adapter.AIServiceAdapter, model string, log *zerolog.Logger) *GraderSet {
	return &GraderSet{ai: ai, model: model, log: log}
}

// GradeRelevance judges whether a document contains keywords related to the
// question. Deliberately lenient.
func (g *GraderSet) GradeRelevance(ctx context.Context, doc model.Document, question string) bool {
	prompt := fmt.Sprintf(relevanceGraderPrompt, doc.Content, question)
	return g.binaryGrade(ctx, prompt, "relevance")
}

// GradeGrounding judges whether the generation is supported by the documents.
func (g *GraderSet) GradeGrounding(ctx context.Context, docs []model.Document, generation string) bool {
	prompt := fmt.Sprintf(groundingGraderPrompt, joinDocuments(docs), generation)
	return g.binaryGrade(ctx, prompt, "grounding")
}

// Evaluate scores the generation against the question and documents, with
// free-text feedback.
func (g *GraderSet) Evaluate(ctx context.Context, generation, question string, docs []model.Document) GradeResult {
	prompt := fmt.Sprintf(evaluatorPrompt, generation, question, joinDocuments(docs))
	raw, err := g.ai.Chat(ctx, g.model, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil {
		g.log.Warn().Err(err).Msg("evaluator call failed; accepting generation")
		return GradeResult{Score: "yes"}
	}
	res, ok := parseGrade(raw)
	if !ok {
		g.log.Warn().Str("raw", truncate(raw, 120)).Msg("evaluator answer unparseable; accepting generation")
		return GradeResult{Score: "yes"}
	}
	return res
}

// RewriteQuestion produces a query better suited for retrieval. On failure
// the caller keeps the original question.
func (g *GraderSet) RewriteQuestion(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(rewriterPrompt, question)
	out, err := g.ai.Chat(ctx, g.model, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("question rewriter returned empty output")
	}
	return out, nil
}

func (g *GraderSet) binaryGrade(ctx context.Context, prompt, kind string) bool {
	raw, err := g.ai.Chat(ctx, g.model, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil {
		g.log.Warn().Err(err).Str("grader", kind).Msg("grader call failed; defaulting to yes")
		return true
	}
	res, ok := parseGrade(raw)
	if !ok {
		g.log.Warn().Str("grader", kind).Str("raw", truncate(raw, 120)).Msg("grade unparseable; defaulting to yes")
		return true
	}
	return res.Score == "yes"
}

// parseGrade tries a strict JSON parse of the model answer after stripping
// code fences, then falls back to regex extraction of the score key.
func parseGrade(raw string) (GradeResult, bool) {
	cleaned := adapter.StripCodeFences(raw)
	var res GradeResult
	if err := json.Unmarshal([]byte(cleaned), &res); err == nil && res.Score != "" {
		res.Score = strings.ToLower(strings.TrimSpace(res.Score))
		return res, true
	}
	if v, ok := adapter.ExtractJSONValue(cleaned, "score"); ok {
		res.Score = strings.ToLower(strings.TrimSpace(v))
		res.Feedback, _ = adapter.ExtractJSONValue(cleaned, "feedback")
		return res, true
	}
	return GradeResult{}, false
}

func joinDocuments(docs []model.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}

// truncate shortens s to n runes for log snippets. Slicing on runes keeps
// multi-byte output (the prompts and answers are mostly Chinese) valid UTF-8.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
