// Package domain defines the billing provider contract.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoSubscription means the customer has no active subscription at
	// the provider.
	ErrNoSubscription = errors.New("no_active_subscription")
	// ErrDuplicateIdempotencyKey signals the provider already applied an
	// effect under the same key. Callers treat it as success.
	ErrDuplicateIdempotencyKey = errors.New("duplicate_idempotency_key")
	// ErrMissingCredential means the organization has no billing account
	// reference configured.
	ErrMissingCredential = errors.New("missing_billing_credential")
)

// Item tags distinguish the flat platform fee from the metered minutes
// price on a subscription.
const (
	ItemTagBasePrice  = "base_price"
	ItemTagUsagePrice = "usage_price"
)

// ExternalSubscriptionItem is one priced line on a provider subscription.
type ExternalSubscriptionItem struct {
	PriceRef        string
	Tag             string
	UnitAmountCents float64
	MinutesIncluded int64
	MeterRef        string
	MeterEventName  string
	Currency        string
}

// ExternalSubscription is the provider's view of a customer subscription.
type ExternalSubscription struct {
	ID                 string
	Status             string
	Currency           string
	CancelAtPeriodEnd  bool
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	PaymentMethodBrand string
	PaymentMethodLast4 string
	Items              []ExternalSubscriptionItem
}

// MeterEventInput reports consumed usage. IdempotencyKey carries the
// call id so redelivered webhooks collapse to one billing effect.
type MeterEventInput struct {
	EventName      string
	CustomerRef    string
	Value          int64
	Timestamp      time.Time
	IdempotencyKey string
}

// CreditGrantInput funds a customer's metered balance for one period.
// IdempotencyKey is deterministic per (subscription, period, currency).
type CreditGrantInput struct {
	Name           string
	CustomerRef    string
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

// Provider is the outbound billing contract. The account argument is
// the organization's billing account reference; every call is scoped
// to one tenant's provider account.
type Provider interface {
	GetSubscription(ctx context.Context, account, customerRef string) (*ExternalSubscription, error)
	SubmitMeterEvent(ctx context.Context, account string, in MeterEventInput) error
	CreateCreditGrant(ctx context.Context, account string, in CreditGrantInput) error
}
