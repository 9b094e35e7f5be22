package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/domain/ports/retrieval"
	"resume-rewrite-service/internal/infra/metrics"
)

// Notifier receives workflow progress for the streaming presenter.
type Notifier interface {
	// Step reports entering a named stage with human-readable detail.
	Step(name, detail string)
	// Delta reports the cumulative generation text so far.
	Delta(cumulative string)
}

// NopNotifier discards all progress.
type NopNotifier struct{}

func (NopNotifier) Step(string, string) {}
func (NopNotifier) Delta(string)        {}

// Nodes holds the collaborators shared by every graph node. One Nodes value
// serves exactly one workflow run; the retriever and notifier are selected at
// construction, never branched on per call.
type Nodes struct {
	ai        adapter.AIServiceAdapter
	model     string
	retriever retrieval.Retriever
	graders   *GraderSet
	k         int
	notify    Notifier
	log       *zerolog.Logger
}

func NewNodes(ai adapter.AIServiceAdapter, model string, r retrieval.Retriever, graders *GraderSet, k int, notify Notifier, log *zerolog.Logger) *Nodes {
	if notify == nil {
		notify = NopNotifier{}
	}
	if k <= 0 {
		k = 3
	}
	return &Nodes{ai: ai, model: model, retriever: r, graders: graders, k: k, notify: notify, log: log}
}

// Keep letters, digits, underscore, whitespace and common CJK/latin
// punctuation; everything else is stripped before the query hits the
// embedding API.
var queryCleanRe = regexp.MustCompile(`[^\p{L}\p{N}_\s,.?!，。？！:：;；“”《》\[\]【】\-]`)

func sanitizeQuery(q string) string {
	cleaned := strings.TrimSpace(queryCleanRe.ReplaceAllString(q, ""))
	if cleaned == "" {
		return emptyQueryFallback
	}
	if utf8.RuneCountInString(cleaned) > maxQueryRunes {
		// Embedding APIs choke on long queries; collapse to generic keywords.
		return longQueryFallback
	}
	return cleaned
}

// Retrieve fetches reference documents for the current query. It never
// errors: a missing or failing retriever yields an empty document list.
func (n *Nodes) Retrieve(ctx context.Context, s *State) (Delta, error) {
	defer metrics.ObserveNode("retrieve")()
	n.notify.Step("retrieve", "searching reference templates")

	if n.retriever == nil {
		n.log.Warn().Msg("retriever unavailable; returning empty document list")
		return Delta{Documents: docsPtr(nil)}, nil
	}

	query := sanitizeQuery(s.Input)
	docs, err := n.retriever.Retrieve(ctx, query, n.k)
	if err != nil {
		n.log.Warn().Err(err).Str("query", truncate(query, 60)).Msg("retrieval failed; continuing without documents")
		return Delta{Documents: docsPtr(nil)}, nil
	}
	n.log.Debug().Int("documents", len(docs)).Msg("retrieved reference templates")
	return Delta{Documents: docsPtr(docs)}, nil
}

// GradeDocuments filters the document list by relevance to the question.
// An empty list passes through without invoking the grader.
func (n *Nodes) GradeDocuments(ctx context.Context, s *State) (Delta, error) {
	defer metrics.ObserveNode("grade_doc_4_retrieval")()
	n.notify.Step("grade_doc_4_retrieval", fmt.Sprintf("grading %d documents", len(s.Documents)))

	if len(s.Documents) == 0 {
		return Delta{Documents: docsPtr(nil)}, nil
	}
	filtered := make([]model.Document, 0, len(s.Documents))
	for _, doc := range s.Documents {
		if n.graders.GradeRelevance(ctx, doc, s.Input) {
			filtered = append(filtered, doc)
		}
	}
	n.log.Debug().Int("in", len(s.Documents)).Int("kept", len(filtered)).Msg("document relevance pass")
	return Delta{Documents: docsPtr(filtered)}, nil
}

// RegenerateQuestion replaces the query with the rewriter's output.
// Documents are preserved unchanged.
func (n *Nodes) RegenerateQuestion(ctx context.Context, s *State) (Delta, error) {
	defer metrics.ObserveNode("question_regenerate")()
	n.notify.Step("question_regenerate", "rewriting retrieval query")

	rewrites := s.Rewrites + 1
	rewritten, err := n.graders.RewriteQuestion(ctx, s.Input)
	if err != nil {
		n.log.Warn().Err(err).Msg("question rewrite failed; keeping original query")
		return Delta{Rewrites: intPtr(rewrites)}, nil
	}
	return Delta{Input: strPtr(rewritten), Rewrites: intPtr(rewrites)}, nil
}

// Generate produces the candidate rewritten resume, streaming deltas to the
// notifier. The result is never empty: an empty completion falls back to a
// message embedding the original resume.
func (n *Nodes) Generate(ctx context.Context, s *State) (Delta, error) {
	defer metrics.ObserveNode("generate")()
	n.notify.Step("generate", "generating rewritten resume")

	var userPrompt string
	if len(s.Documents) == 0 {
		userPrompt = fmt.Sprintf(generateBarePrompt, s.Input, s.Resume)
	} else {
		userPrompt = fmt.Sprintf(generateAugmentedPrompt, s.Input, s.Resume, summarizeDocuments(s.Documents))
	}

	messages := []adapter.Message{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	// Oversized prompts (long resume plus three templates) get the templates
	// dropped rather than a provider-side truncation of the resume itself.
	if tokens, err := n.ai.CountTokens(ctx, n.model, messages); err == nil {
		metrics.ObservePromptTokens(n.model, tokens)
		if len(s.Documents) > 0 && tokens > maxPromptTokens {
			n.log.Warn().Int("prompt_tokens", tokens).Int("limit", maxPromptTokens).
				Msg("prompt over token limit; generating without reference templates")
			messages[1].Content = fmt.Sprintf(generateBarePrompt, s.Input, s.Resume)
		}
	}

	var cum strings.Builder
	text, err := n.ai.ChatStream(ctx, n.model, messages, func(delta string) {
		cum.WriteString(delta)
		n.notify.Delta(cum.String())
	})
	if err != nil {
		return Delta{}, err
	}

	content := strings.TrimSpace(text)
	if content == "" {
		n.log.Warn().Msg("model returned empty generation; substituting original resume")
		content = fmt.Sprintf(emptyGenerationFallback, s.Resume)
		n.notify.Delta(content)
	}
	return Delta{Generation: strPtr(content), Output: strPtr(content)}, nil
}

// summarizeDocuments renders up to three templates for the augmented prompt,
// titled so the model can tell them apart.
func summarizeDocuments(docs []model.Document) string {
	limit := len(docs)
	if limit > 3 {
		limit = 3
	}
	parts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		title := docs[i].Title
		if title == "" {
			title = fmt.Sprintf("参考模板 %d", i+1)
		}
		parts = append(parts, fmt.Sprintf("模板 %d (%s):\n%s", i+1, title, docs[i].Content))
	}
	return strings.Join(parts, "\n\n")
}
