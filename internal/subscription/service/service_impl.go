package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/dialplane/dialplane/internal/billing/domain"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/observability/metrics"
	"github.com/dialplane/dialplane/internal/subscription/domain"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	"go.uber.org/zap"
)

type service struct {
	repo     domain.Repository
	clients  clientdomain.Repository
	orgs     tenantdomain.Repository
	provider billingdomain.Provider
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewService(
	repo domain.Repository,
	clients clientdomain.Repository,
	orgs tenantdomain.Repository,
	provider billingdomain.Provider,
	genID *snowflake.Node,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) domain.Service {
	return &service{
		repo:     repo,
		clients:  clients,
		orgs:     orgs,
		provider: provider,
		genID:    genID,
		clock:    clk,
		metrics:  m,
		log:      log.Named("subscription.service"),
	}
}

func (s *service) GetByClientID(ctx context.Context, clientID snowflake.ID) (*domain.Subscription, error) {
	sub, err := s.repo.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Reconcile syncs one client's subscription from the billing provider.
// Redelivered webhooks and overlapping reconciliations converge: the
// mirror upsert is keyed by client id and the period's credit grant is
// keyed deterministically, so each has at most one effect.
func (s *service) Reconcile(ctx context.Context, clientID snowflake.ID) (*domain.Subscription, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}

	org, err := s.orgs.FindByID(ctx, client.OrgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, tenantdomain.ErrOrganizationNotFound
	}
	if org.BillingAccountRef == "" {
		return nil, billingdomain.ErrMissingCredential
	}

	external, err := s.provider.GetSubscription(ctx, org.BillingAccountRef, client.BillingCustomerID)
	if err != nil {
		return nil, err
	}

	sub := s.buildMirror(client, external)
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.grantIncludedMinutes(ctx, org.BillingAccountRef, client, sub); err != nil {
		return nil, err
	}

	s.log.Info("subscription reconciled",
		zap.String("client_id", clientID.String()),
		zap.String("external_id", sub.ExternalID),
		zap.String("status", sub.Status),
	)

	return sub, nil
}

func (s *service) buildMirror(client *clientdomain.Client, external *billingdomain.ExternalSubscription) *domain.Subscription {
	now := s.clock.Now()
	sub := &domain.Subscription{
		ID:                 s.genID.Generate(),
		ClientID:           client.ID,
		OrgID:              client.OrgID,
		ExternalID:         external.ID,
		Status:             external.Status,
		Currency:           strings.ToLower(external.Currency),
		CancelAtPeriodEnd:  external.CancelAtPeriodEnd,
		PaymentMethodBrand: external.PaymentMethodBrand,
		PaymentMethodLast4: external.PaymentMethodLast4,
		LastSyncedAt:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if !external.CurrentPeriodStart.IsZero() {
		start := external.CurrentPeriodStart
		sub.CurrentPeriodStart = &start
	}
	if !external.CurrentPeriodEnd.IsZero() {
		end := external.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &end
	}

	for _, item := range external.Items {
		switch item.Tag {
		case billingdomain.ItemTagBasePrice:
			sub.BasePriceRef = item.PriceRef
			sub.BaseAmountCents = item.UnitAmountCents
			if item.MinutesIncluded > 0 {
				sub.MinutesIncluded = item.MinutesIncluded
			}
		case billingdomain.ItemTagUsagePrice:
			sub.UsagePriceRef = item.PriceRef
			sub.PerSecondPriceCents = item.UnitAmountCents
			sub.MeterRef = item.MeterRef
			sub.MeterEventName = item.MeterEventName
			if item.MinutesIncluded > 0 {
				sub.MinutesIncluded = item.MinutesIncluded
			}
		}
	}

	return sub
}

// grantIncludedMinutes funds the plan's included minutes for the
// current period. The key pins one grant per (subscription, period,
// currency); a duplicate-key answer from the provider means an earlier
// delivery already funded it.
func (s *service) grantIncludedMinutes(ctx context.Context, account string, client *clientdomain.Client, sub *domain.Subscription) error {
	if sub.MinutesIncluded <= 0 || sub.CurrentPeriodStart == nil {
		return nil
	}

	amount := int64(math.Round(float64(sub.MinutesIncluded) * 60 * sub.PerSecondPriceCents))
	if amount <= 0 {
		return nil
	}

	key := CreditGrantKey(sub.ExternalID, *sub.CurrentPeriodStart, sub.Currency)
	err := s.provider.CreateCreditGrant(ctx, account, billingdomain.CreditGrantInput{
		Name:           "Included minutes",
		CustomerRef:    client.BillingCustomerID,
		AmountCents:    amount,
		Currency:       sub.Currency,
		IdempotencyKey: key,
	})
	if err != nil {
		if errors.Is(err, billingdomain.ErrDuplicateIdempotencyKey) {
			s.metrics.CreditGrants.WithLabelValues(metrics.ResultDuplicate).Inc()
			s.log.Debug("credit grant already exists", zap.String("key", key))
			return nil
		}
		s.metrics.CreditGrants.WithLabelValues(metrics.ResultFailed).Inc()
		return err
	}

	s.metrics.CreditGrants.WithLabelValues(metrics.ResultSubmitted).Inc()
	return nil
}

// CreditGrantKey derives the deterministic idempotency key for one
// billing period's grant.
func CreditGrantKey(externalID string, periodStart time.Time, currency string) string {
	return fmt.Sprintf("credit-grant:%s:%d:%s", externalID, periodStart.UTC().Unix(), strings.ToLower(currency))
}
