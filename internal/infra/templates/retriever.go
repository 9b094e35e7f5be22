// File: internal/infra/templates/retriever.go
package templates

import (
	"context"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/retrieval"
)

// Compile-time check
var _ retrieval.Retriever = (*TemplateRetriever)(nil)

// TemplateRetriever is the production wiring: search the template
// backend for the query keyword, fall back to the built-in templates
// when the search yields nothing, then rank the candidates by
// embedding similarity. Source and embeddings are both optional.
type TemplateRetriever struct {
	source   retrieval.TemplateSource
	emb      *EmbeddingsClient
	fallback []model.Document
	log      *zerolog.Logger
}

func NewTemplateRetriever(source retrieval.TemplateSource, emb *EmbeddingsClient, log *zerolog.Logger) *TemplateRetriever {
	return &TemplateRetriever{
		source:   source,
		emb:      emb,
		fallback: DefaultTemplates(),
		log:      log,
	}
}

func (t *TemplateRetriever) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	docs := t.search(ctx, query)
	if len(docs) == 0 {
		t.log.Debug().Str("query", query).Msg("no search results, using built-in templates")
		docs = t.fallback
	}

	if t.emb != nil {
		ranked, err := NewSimilaritySearch(t.emb, docs).Retrieve(ctx, query, k)
		if err == nil {
			return ranked, nil
		}
		t.log.Warn().Err(err).Msg("similarity ranking failed, returning unranked candidates")
	}

	if k <= 0 || k > len(docs) {
		k = len(docs)
	}
	out := make([]model.Document, k)
	copy(out, docs[:k])
	return out, nil
}

func (t *TemplateRetriever) search(ctx context.Context, query string) []model.Document {
	if t.source == nil {
		return nil
	}
	docs, err := t.source.Search(ctx, query)
	if err != nil {
		t.log.Warn().Err(err).Str("query", query).Msg("template search failed")
		return nil
	}
	return docs
}
