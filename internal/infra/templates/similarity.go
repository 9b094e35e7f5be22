package templates

import (
	"context"
	"math"
	"sort"
	"sync"

	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/retrieval"
)

// Compile-time check
var _ retrieval.Retriever = (*SimilaritySearch)(nil)

// SimilaritySearch ranks a fixed document set by cosine similarity of
// embeddings. Document vectors are computed once on first use.
type SimilaritySearch struct {
	emb  *EmbeddingsClient
	docs []model.Document

	mu      sync.Mutex
	vectors [][]float64
}

func NewSimilaritySearch(emb *EmbeddingsClient, docs []model.Document) *SimilaritySearch {
	return &SimilaritySearch{emb: emb, docs: docs}
}

func (s *SimilaritySearch) Retrieve(ctx context.Context, query string, k int) ([]model.Document, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	if err := s.ensureVectors(ctx); err != nil {
		return nil, err
	}
	qv, err := s.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(s.docs))
	for i := range s.docs {
		ranked[i] = scored{idx: i, score: cosine(qv[0], s.vectors[i])}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.Document, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, s.docs[r.idx])
	}
	return out, nil
}

func (s *SimilaritySearch) ensureVectors(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors != nil {
		return nil
	}
	texts := make([]string, len(s.docs))
	for i, d := range s.docs {
		texts[i] = d.Content
	}
	vecs, err := s.emb.Embed(ctx, texts)
	if err != nil {
		return err
	}
	s.vectors = vecs
	return nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
