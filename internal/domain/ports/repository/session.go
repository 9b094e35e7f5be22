package repository

import (
	"context"
	"time"

	"resume-rewrite-service/internal/domain/model"
)

// SessionStore owns the ephemeral request sessions. Implementations must be
// safe for concurrent use: the sweep runs alongside request handlers.
type SessionStore interface {
	// Create allocates a fresh identifier, stores the session and returns it.
	Create(ctx context.Context, resumeText, requirements, sourceLang, targetLang, clientAddr string) (*model.Session, error)

	// GetAndTouch returns the session and refreshes its idle timestamp, or
	// domain.ErrSessionNotFound when absent or already evicted.
	GetAndTouch(ctx context.Context, id string) (*model.Session, error)

	// DeleteExpired evicts every session idle longer than the store's TTL as
	// of now, returning the number evicted.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// Len reports the number of live sessions (admin/stats only).
	Len(ctx context.Context) (int, error)
}
