package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/callrouting/domain"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/observability/metrics"
	"go.uber.org/zap"
)

type service struct {
	repo    domain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewService(repo domain.Repository, clk clock.Clock, m *metrics.Metrics, log *zap.Logger) domain.Service {
	return &service{
		repo:    repo,
		clock:   clk,
		metrics: m,
		log:     log.Named("callrouting.service"),
	}
}

func (s *service) Route(ctx context.Context, agentID snowflake.ID) (domain.Decision, error) {
	rules, err := s.repo.ListEnabledByAgent(ctx, agentID)
	if err != nil {
		return domain.Decision{}, err
	}

	dest, matched := domain.Evaluate(s.clock.Now(), rules)
	if matched {
		s.metrics.CallOverrides.WithLabelValues("override").Inc()
		s.log.Debug("call override matched",
			zap.String("agent_id", agentID.String()),
			zap.String("route_to", dest),
		)
	} else {
		s.metrics.CallOverrides.WithLabelValues("default").Inc()
	}

	return domain.Decision{Override: dest, Matched: matched}, nil
}
