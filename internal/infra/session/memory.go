package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/repository"
	"resume-rewrite-service/internal/infra/metrics"
)

var _ repository.SessionStore = (*MemoryStore)(nil)

// MemoryStore is the default single-process session backend: a mutex-guarded
// map swept periodically by the scheduler. GetAndTouch refuses sessions past
// their idle timeout even between sweeps.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Create(ctx context.Context, resumeText, requirements, sourceLang, targetLang, clientAddr string) (*model.Session, error) {
	sess := model.NewSession(uuid.NewString(), resumeText, requirements, sourceLang, targetLang, clientAddr)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.IncSessionCreated()
	metrics.SetActiveSessions(n)
	cp := *sess
	return &cp, nil
}

func (m *MemoryStore) GetAndTouch(ctx context.Context, id string) (*model.Session, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Expired(now, m.ttl) {
		delete(m.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	sess.Touch(now)
	cp := *sess
	return &cp, nil
}

func (m *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.Expired(now, m.ttl) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.AddSessionsExpired(removed)
	}
	metrics.SetActiveSessions(len(m.sessions))
	return removed, nil
}

func (m *MemoryStore) Len(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}
