package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/dialplane/dialplane/internal/billing/domain"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	clientrepository "github.com/dialplane/dialplane/internal/client/repository"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/observability/metrics"
	"github.com/dialplane/dialplane/internal/subscription/domain"
	"github.com/dialplane/dialplane/internal/subscription/repository"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	tenantrepository "github.com/dialplane/dialplane/internal/tenant/repository"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// -- Fake provider --

type fakeProvider struct {
	subscription *billingdomain.ExternalSubscription
	subErr       error

	grantKeys   map[string]int
	grantInputs []billingdomain.CreditGrantInput
	grantErr    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{grantKeys: make(map[string]int)}
}

func (f *fakeProvider) GetSubscription(ctx context.Context, account, customerRef string) (*billingdomain.ExternalSubscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	if f.subscription == nil {
		return nil, billingdomain.ErrNoSubscription
	}
	return f.subscription, nil
}

func (f *fakeProvider) SubmitMeterEvent(ctx context.Context, account string, in billingdomain.MeterEventInput) error {
	return nil
}

func (f *fakeProvider) CreateCreditGrant(ctx context.Context, account string, in billingdomain.CreditGrantInput) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.grantKeys[in.IdempotencyKey]++
	if f.grantKeys[in.IdempotencyKey] > 1 {
		return billingdomain.ErrDuplicateIdempotencyKey
	}
	f.grantInputs = append(f.grantInputs, in)
	return nil
}

// -- Fixture --

type fixture struct {
	svc      domain.Service
	provider *fakeProvider
	db       *gorm.DB
	node     *snowflake.Node
	clientID snowflake.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&tenantdomain.Organization{},
		&clientdomain.Client{},
		&domain.Subscription{},
	)
	if err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	provider := newFakeProvider()

	org := &tenantdomain.Organization{
		ID:                node.Generate(),
		Name:              "Acme Voice",
		Slug:              "acme-voice",
		BillingAccountRef: "acct_test",
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatal(err)
	}

	client := &clientdomain.Client{
		ID:                node.Generate(),
		OrgID:             org.ID,
		Name:              "Pine Dental",
		BillingCustomerID: "cus_test",
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatal(err)
	}

	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(
		repository.NewRepository(db),
		clientrepository.NewRepository(db),
		tenantrepository.NewRepository(db),
		provider,
		node,
		clk,
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)

	return &fixture{svc: svc, provider: provider, db: db, node: node, clientID: client.ID}
}

func externalSub(periodStart time.Time) *billingdomain.ExternalSubscription {
	periodEnd := periodStart.AddDate(0, 1, 0)
	return &billingdomain.ExternalSubscription{
		ID:                 "sub_ext",
		Status:             "active",
		Currency:           "usd",
		CurrentPeriodStart: periodStart,
		CurrentPeriodEnd:   periodEnd,
		Items: []billingdomain.ExternalSubscriptionItem{
			{
				PriceRef:        "price_base",
				Tag:             billingdomain.ItemTagBasePrice,
				UnitAmountCents: 9900,
				MinutesIncluded: 100,
			},
			{
				PriceRef:        "price_usage",
				Tag:             billingdomain.ItemTagUsagePrice,
				UnitAmountCents: 0.5,
				MeterRef:        "mtr_1",
				MeterEventName:  "voice_agent_seconds",
			},
		},
	}
}

func TestReconcile_CreatesMirrorAndGrant(t *testing.T) {
	f := setup(t)
	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f.provider.subscription = externalSub(periodStart)

	sub, err := f.svc.Reconcile(context.Background(), f.clientID)
	assert.NoError(t, err)
	assert.Equal(t, "sub_ext", sub.ExternalID)
	assert.Equal(t, int64(100), sub.MinutesIncluded)
	assert.Equal(t, 0.5, sub.PerSecondPriceCents)
	assert.Equal(t, "voice_agent_seconds", sub.MeterEventName)

	// 100 minutes * 60 s * 0.5 cents/s = 3000 cents
	if assert.Len(t, f.provider.grantInputs, 1) {
		grant := f.provider.grantInputs[0]
		assert.Equal(t, int64(3000), grant.AmountCents)
		assert.Equal(t, "usd", grant.Currency)
		assert.Equal(t, CreditGrantKey("sub_ext", periodStart, "usd"), grant.IdempotencyKey)
	}
}

func TestReconcile_RepeatedRunsUpsertOneRow(t *testing.T) {
	f := setup(t)
	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f.provider.subscription = externalSub(periodStart)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Reconcile(context.Background(), f.clientID)
		assert.NoError(t, err)
	}

	var count int64
	f.db.Model(&domain.Subscription{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// only the first run produced a grant, later runs hit the duplicate key
	assert.Len(t, f.provider.grantInputs, 1)
}

func TestReconcile_NewPeriodGetsNewGrant(t *testing.T) {
	f := setup(t)
	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f.provider.subscription = externalSub(periodStart)

	_, err := f.svc.Reconcile(context.Background(), f.clientID)
	assert.NoError(t, err)

	f.provider.subscription = externalSub(periodStart.AddDate(0, 1, 0))
	_, err = f.svc.Reconcile(context.Background(), f.clientID)
	assert.NoError(t, err)

	assert.Len(t, f.provider.grantInputs, 2)
}

func TestReconcile_NoExternalSubscription(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Reconcile(context.Background(), f.clientID)
	assert.ErrorIs(t, err, billingdomain.ErrNoSubscription)
}

func TestReconcile_UnknownClient(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Reconcile(context.Background(), f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestReconcile_ProviderErrorPropagates(t *testing.T) {
	f := setup(t)
	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f.provider.subscription = externalSub(periodStart)
	f.provider.grantErr = errors.New("provider unavailable")

	_, err := f.svc.Reconcile(context.Background(), f.clientID)
	assert.Error(t, err)
}

func TestReconcile_NoIncludedMinutesSkipsGrant(t *testing.T) {
	f := setup(t)
	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := externalSub(periodStart)
	sub.Items[0].MinutesIncluded = 0
	f.provider.subscription = sub

	_, err := f.svc.Reconcile(context.Background(), f.clientID)
	assert.NoError(t, err)
	assert.Empty(t, f.provider.grantInputs)
}

func TestGetByClientID_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.svc.GetByClientID(context.Background(), f.clientID)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}
