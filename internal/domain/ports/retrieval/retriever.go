package retrieval

import (
	"context"

	"resume-rewrite-service/internal/domain/model"
)

// Retriever answers "given a query, return the k most relevant reference
// documents". The three concrete shapes (static list, similarity search,
// unavailable) are selected once at workflow construction, never branched on
// at call time.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]model.Document, error)
}

// TemplateSource produces candidate reference templates for a keyword. It is
// a black box over whatever search/scraping backend is configured.
type TemplateSource interface {
	Search(ctx context.Context, keyword string) ([]model.Document, error)
}
