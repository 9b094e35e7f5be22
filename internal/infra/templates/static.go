package templates

import (
	"context"
	"errors"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/retrieval"
)

// Compile-time checks
var (
	_ retrieval.Retriever = (*StaticDocuments)(nil)
	_ retrieval.Retriever = (*Unavailable)(nil)
)

// StaticDocuments serves a precomputed document list, capped at k.
type StaticDocuments struct {
	docs []model.Document
}

func NewStaticDocuments(docs []model.Document) *StaticDocuments {
	return &StaticDocuments{docs: docs}
}

func (s *StaticDocuments) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	if k <= 0 || k > len(s.docs) {
		k = len(s.docs)
	}
	out := make([]model.Document, k)
	copy(out, s.docs[:k])
	return out, nil
}

// Unavailable is the explicit no-retriever variant. The retrieve node
// downgrades its error to an empty document list plus a warning.
type Unavailable struct{}

func (Unavailable) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	return nil, errors.New("no retriever configured")
}
