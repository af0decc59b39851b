package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	agentdomain "github.com/dialplane/dialplane/internal/agent/domain"
	billingdomain "github.com/dialplane/dialplane/internal/billing/domain"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/config"
	"github.com/dialplane/dialplane/internal/observability/metrics"
	subscriptiondomain "github.com/dialplane/dialplane/internal/subscription/domain"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	"github.com/dialplane/dialplane/internal/usagemetering/domain"
	"github.com/dialplane/dialplane/pkg/db/option"
	"github.com/dialplane/dialplane/pkg/db/pagination"
	"github.com/dialplane/dialplane/pkg/repository"
	"go.uber.org/zap"
)

type service struct {
	cfg      config.Config
	records  repository.Repository[domain.CallUsageRecord]
	agents   agentdomain.Repository
	clients  clientdomain.Repository
	orgs     tenantdomain.Repository
	subs     subscriptiondomain.Repository
	provider billingdomain.Provider
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewService(
	cfg config.Config,
	records repository.Repository[domain.CallUsageRecord],
	agents agentdomain.Repository,
	clients clientdomain.Repository,
	orgs tenantdomain.Repository,
	subs subscriptiondomain.Repository,
	provider billingdomain.Provider,
	genID *snowflake.Node,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		cfg:      cfg,
		records:  records,
		agents:   agents,
		clients:  clients,
		orgs:     orgs,
		subs:     subs,
		provider: provider,
		genID:    genID,
		clock:    clk,
		metrics:  m,
		log:      log.Named("usagemetering.service"),
	}
}

// RecordCompletion handles one end-of-call report. The audit row is
// written for every delivery; the provider submission is keyed by call
// ref so redeliveries collapse to a single billing effect.
func (s *service) RecordCompletion(ctx context.Context, in domain.RecordCompletionInput) (*domain.CallUsageRecord, error) {
	if in.CallRef == "" || in.DurationSeconds <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	agent, err := s.resolveAgent(ctx, in.AgentRef)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.FindByID(ctx, agent.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, tenantdomain.ErrOrganizationNotFound
	}

	client, err := s.clients.FindByID(ctx, agent.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, clientdomain.ErrClientNotFound
	}

	eventName, err := s.meterEventName(ctx, agent.ClientID)
	if err != nil {
		s.metrics.UsageEvents.WithLabelValues(metrics.ResultFailed).Inc()
		s.log.Warn("usage not billable",
			zap.String("call_ref", in.CallRef),
			zap.String("client_id", agent.ClientID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	record := &domain.CallUsageRecord{
		ID:              s.genID.Generate(),
		OrgID:           agent.OrgID,
		ClientID:        agent.ClientID,
		AgentID:         agent.ID,
		CallRef:         in.CallRef,
		DurationSeconds: in.DurationSeconds,
		MeterEventName:  eventName,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	if org.BillingAccountRef == "" {
		s.metrics.UsageEvents.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, billingdomain.ErrMissingCredential
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.clock.Now()
	}

	err = s.provider.SubmitMeterEvent(ctx, org.BillingAccountRef, billingdomain.MeterEventInput{
		EventName:      eventName,
		CustomerRef:    client.BillingCustomerID,
		Value:          in.DurationSeconds,
		Timestamp:      occurredAt,
		IdempotencyKey: in.CallRef,
	})
	if err != nil {
		if errors.Is(err, billingdomain.ErrDuplicateIdempotencyKey) {
			s.metrics.UsageEvents.WithLabelValues(metrics.ResultDuplicate).Inc()
			s.log.Debug("usage already submitted", zap.String("call_ref", in.CallRef))
			return record, nil
		}
		s.metrics.UsageEvents.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}

	record.Submitted = true
	s.metrics.UsageEvents.WithLabelValues(metrics.ResultSubmitted).Inc()
	s.log.Info("usage submitted",
		zap.String("call_ref", in.CallRef),
		zap.String("client_id", client.ID.String()),
		zap.Int64("seconds", in.DurationSeconds),
	)

	return record, nil
}

func (s *service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := &domain.CallUsageRecord{OrgID: req.OrgID, ClientID: req.ClientID}

	rows, err := s.records.Find(ctx, filter,
		option.ApplyPagination(req.Pagination),
		option.SortByCreatedDesc(),
	)
	if err != nil {
		return nil, err
	}

	total, err := s.records.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	pageInfo := pagination.BuildCursorPageInfo(rows, int32(pageSize), func(r *domain.CallUsageRecord) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        r.ID.String(),
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	if len(rows) > pageSize {
		rows = rows[:pageSize]
	}
	records := make([]domain.CallUsageRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, *r)
	}

	return &domain.ListResponse{Records: records, TotalCount: total, PageInfo: *pageInfo}, nil
}

func (s *service) resolveAgent(ctx context.Context, ref string) (*agentdomain.Agent, error) {
	if id, err := snowflake.ParseString(ref); err == nil {
		agent, err := s.agents.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if agent != nil {
			return agent, nil
		}
	}

	agent, err := s.agents.FindByAssistantRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, domain.ErrAgentNotFound
	}
	return agent, nil
}

// meterEventName requires a mirrored subscription for the client and
// prefers its event name. The deployment default only covers a mirror
// that carries no event name; a client with no subscription at all is
// never billed.
func (s *service) meterEventName(ctx context.Context, clientID snowflake.ID) (string, error) {
	sub, err := s.subs.FindByClientID(ctx, clientID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", subscriptiondomain.ErrSubscriptionNotFound
	}
	if sub.MeterEventName != "" {
		return sub.MeterEventName, nil
	}
	if s.cfg.DefaultMeterEventName != "" {
		return s.cfg.DefaultMeterEventName, nil
	}
	return "", domain.ErrMissingMeterEventName
}
