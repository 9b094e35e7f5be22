package repository

import (
	"context"

	"resume-rewrite-service/internal/domain/model"
)

// ResultStore persists completed (original, modified) resume pairs. Saves are
// fire-and-forget from the caller's point of view; failures are logged, never
// surfaced to the client.
type ResultStore interface {
	Save(ctx context.Context, r *model.RewriteResult) error
}
