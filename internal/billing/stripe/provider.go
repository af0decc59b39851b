// Package stripe implements the billing provider contract against the
// Stripe API. Every call runs on the tenant's connected account.
package stripe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dialplane/dialplane/internal/billing/domain"
	"github.com/dialplane/dialplane/internal/config"
	stripe "github.com/stripe/stripe-go/v81"
	creditgrant "github.com/stripe/stripe-go/v81/billing/creditgrant"
	billingmeter "github.com/stripe/stripe-go/v81/billing/meter"
	meterevent "github.com/stripe/stripe-go/v81/billing/meterevent"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"
)

type provider struct {
	log *zap.Logger
}

// NewProvider configures the global Stripe client key and returns the
// adapter. Per-tenant scoping happens per call via the account header.
func NewProvider(cfg config.Config, log *zap.Logger) (domain.Provider, error) {
	if cfg.StripeSecretKey == "" && cfg.IsProduction() {
		return nil, domain.ErrMissingCredential
	}
	stripe.Key = cfg.StripeSecretKey

	return &provider{log: log.Named("billing.stripe")}, nil
}

func (p *provider) GetSubscription(ctx context.Context, account, customerRef string) (*domain.ExternalSubscription, error) {
	if account == "" {
		return nil, domain.ErrMissingCredential
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerRef),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.SetStripeAccount(account)
	params.AddExpand("data.items.data.price")
	params.AddExpand("data.default_payment_method")

	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		return p.mapSubscription(ctx, account, sub)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list subscriptions: %w", err)
	}

	return nil, domain.ErrNoSubscription
}

func (p *provider) mapSubscription(ctx context.Context, account string, sub *stripe.Subscription) (*domain.ExternalSubscription, error) {
	out := &domain.ExternalSubscription{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		Currency:           strings.ToLower(string(sub.Currency)),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
	}

	if pm := sub.DefaultPaymentMethod; pm != nil && pm.Card != nil {
		out.PaymentMethodBrand = string(pm.Card.Brand)
		out.PaymentMethodLast4 = pm.Card.Last4
	}

	if sub.Items == nil {
		return out, nil
	}

	for _, item := range sub.Items.Data {
		price := item.Price
		if price == nil {
			continue
		}

		mapped := domain.ExternalSubscriptionItem{
			PriceRef:        price.ID,
			Tag:             domain.ItemTagBasePrice,
			UnitAmountCents: price.UnitAmountDecimal,
			Currency:        strings.ToLower(string(price.Currency)),
		}

		if price.Recurring != nil && price.Recurring.UsageType == stripe.PriceRecurringUsageTypeMetered {
			mapped.Tag = domain.ItemTagUsagePrice
			if price.Recurring.Meter != "" {
				mapped.MeterRef = price.Recurring.Meter
				name, err := p.meterEventName(ctx, account, price.Recurring.Meter)
				if err != nil {
					return nil, err
				}
				mapped.MeterEventName = name
			}
		}

		if raw, ok := price.Metadata["minutes_included"]; ok {
			minutes, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				mapped.MinutesIncluded = minutes
			}
		}

		out.Items = append(out.Items, mapped)
	}

	return out, nil
}

func (p *provider) meterEventName(ctx context.Context, account, meterID string) (string, error) {
	params := &stripe.BillingMeterParams{}
	params.Context = ctx
	params.SetStripeAccount(account)

	m, err := billingmeter.Get(meterID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: get meter %s: %w", meterID, err)
	}
	return m.EventName, nil
}

func (p *provider) SubmitMeterEvent(ctx context.Context, account string, in domain.MeterEventInput) error {
	if account == "" {
		return domain.ErrMissingCredential
	}

	params := &stripe.BillingMeterEventParams{
		EventName:  stripe.String(in.EventName),
		Identifier: stripe.String(in.IdempotencyKey),
		Payload: map[string]string{
			"stripe_customer_id": in.CustomerRef,
			"value":              strconv.FormatInt(in.Value, 10),
		},
	}
	if !in.Timestamp.IsZero() {
		params.Timestamp = stripe.Int64(in.Timestamp.Unix())
	}
	params.Context = ctx
	params.SetStripeAccount(account)
	params.SetIdempotencyKey(in.IdempotencyKey)

	if _, err := meterevent.New(params); err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("stripe: submit meter event: %w", err)
	}

	p.log.Debug("meter event submitted",
		zap.String("event_name", in.EventName),
		zap.String("customer", in.CustomerRef),
		zap.Int64("value", in.Value),
	)

	return nil
}

func (p *provider) CreateCreditGrant(ctx context.Context, account string, in domain.CreditGrantInput) error {
	if account == "" {
		return domain.ErrMissingCredential
	}

	params := &stripe.BillingCreditGrantParams{
		Name:     stripe.String(in.Name),
		Customer: stripe.String(in.CustomerRef),
		Category: stripe.String("paid"),
		Amount: &stripe.BillingCreditGrantAmountParams{
			Type: stripe.String("monetary"),
			Monetary: &stripe.BillingCreditGrantAmountMonetaryParams{
				Currency: stripe.String(strings.ToLower(in.Currency)),
				Value:    stripe.Int64(in.AmountCents),
			},
		},
		ApplicabilityConfig: &stripe.BillingCreditGrantApplicabilityConfigParams{
			Scope: &stripe.BillingCreditGrantApplicabilityConfigScopeParams{
				PriceType: stripe.String("metered"),
			},
		},
	}
	params.Context = ctx
	params.SetStripeAccount(account)
	params.SetIdempotencyKey(in.IdempotencyKey)

	if _, err := creditgrant.New(params); err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("stripe: create credit grant: %w", err)
	}

	p.log.Info("credit grant created",
		zap.String("customer", in.CustomerRef),
		zap.Int64("amount_cents", in.AmountCents),
		zap.String("currency", in.Currency),
	)

	return nil
}

// isDuplicateKey recognizes Stripe's "this key was already used"
// signals across the error shapes the API returns.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if stripeErr, ok := err.(*stripe.Error); ok {
		if stripeErr.Type == stripe.ErrorTypeIdempotency {
			return true
		}
		if stripeErr.Code == stripe.ErrorCodeIdempotencyKeyInUse {
			return true
		}
		if strings.Contains(strings.ToLower(stripeErr.Msg), "already exists") {
			return true
		}
	}
	return false
}

func unixTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
