// Package domain contains the local subscription mirror and the
// reconciler contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrClientNotFound       = errors.New("client_not_found")
)

// Subscription mirrors the provider's view of a client's plan. At most
// one row exists per client; every reconciliation upserts in place.
type Subscription struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID            snowflake.ID `gorm:"column:client_id;not null;uniqueIndex:ux_subscriptions_client_id" json:"client_id"`
	OrgID               snowflake.ID `gorm:"column:org_id;not null;index:ix_subscriptions_org_id" json:"org_id"`
	ExternalID          string       `gorm:"column:external_id;type:text;not null" json:"external_id"`
	Status              string       `gorm:"type:text;not null" json:"status"`
	Currency            string       `gorm:"type:text;not null" json:"currency"`
	BasePriceRef        string       `gorm:"column:base_price_ref;type:text" json:"base_price_ref"`
	BaseAmountCents     float64      `gorm:"column:base_amount_cents" json:"base_amount_cents"`
	MinutesIncluded     int64        `gorm:"column:minutes_included" json:"minutes_included"`
	UsagePriceRef       string       `gorm:"column:usage_price_ref;type:text" json:"usage_price_ref"`
	PerSecondPriceCents float64      `gorm:"column:per_second_price_cents" json:"per_second_price_cents"`
	MeterRef            string       `gorm:"column:meter_ref;type:text" json:"meter_ref"`
	MeterEventName      string       `gorm:"column:meter_event_name;type:text" json:"meter_event_name"`
	PaymentMethodBrand  string       `gorm:"column:payment_method_brand;type:text" json:"payment_method_brand"`
	PaymentMethodLast4  string       `gorm:"column:payment_method_last4;type:text" json:"payment_method_last4"`
	CurrentPeriodStart  *time.Time   `gorm:"column:current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd    *time.Time   `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd   bool         `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	LastSyncedAt        time.Time    `gorm:"column:last_synced_at" json:"last_synced_at"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByClientID(ctx context.Context, clientID snowflake.ID) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
}

type Service interface {
	// Reconcile pulls the provider's current subscription state for the
	// client, mirrors it locally and funds the period's included
	// minutes exactly once.
	Reconcile(ctx context.Context, clientID snowflake.ID) (*Subscription, error)

	// GetByClientID returns the local mirror without touching the provider.
	GetByClientID(ctx context.Context, clientID snowflake.ID) (*Subscription, error)
}
