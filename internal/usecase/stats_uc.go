package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"resume-rewrite-service/internal/domain/ports/adapter"
	"resume-rewrite-service/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type Stats struct {
	ActiveSessions int      `json:"active_sessions"`
	Models         []string `json:"models"`
}

type statsUC struct {
	sessions repository.SessionStore
	ai       adapter.AIServiceAdapter

	log *zerolog.Logger
}

func NewStatsUseCase(sessions repository.SessionStore, ai adapter.AIServiceAdapter, logger *zerolog.Logger) *statsUC {
	return &statsUC{sessions: sessions, ai: ai, log: logger}
}

func (s *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	n, err := s.sessions.Len(ctx)
	if err != nil {
		return nil, err
	}
	models, err := s.ai.ListModels(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("model listing unavailable for stats")
		models = nil
	}
	return &Stats{ActiveSessions: n, Models: models}, nil
}
