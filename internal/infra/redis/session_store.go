package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-rewrite-service/internal/domain"
	"resume-rewrite-service/internal/domain/model"
	"resume-rewrite-service/internal/domain/ports/repository"
	"resume-rewrite-service/internal/infra/metrics"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in Redis with the idle timeout expressed
// as a key TTL; GetAndTouch refreshes it. Expiry is therefore enforced
// by Redis itself and DeleteExpired only reconciles the active gauge.
type SessionStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionStore(client RedisClient, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("resume_session:%s", id)
}

func (s *SessionStore) Create(ctx context.Context, resumeText, requirements, sourceLang, targetLang, clientAddr string) (*model.Session, error) {
	sess := model.NewSession(uuid.NewString(), resumeText, requirements, sourceLang, targetLang, clientAddr)
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl); err != nil {
		return nil, err
	}
	metrics.IncSessionCreated()
	return sess, nil
}

func (s *SessionStore) GetAndTouch(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	sess.Touch(time.Now())
	refreshed, err := json.Marshal(&sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, sessionKey(id), refreshed, s.ttl); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	// Redis already dropped timed-out keys via TTL.
	n, err := s.Len(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SetActiveSessions(n)
	return 0, nil
}

func (s *SessionStore) Len(ctx context.Context) (int, error) {
	keys, err := s.client.Keys(ctx, sessionKey("*"))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
