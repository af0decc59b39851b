// Package domain contains models for the businesses a tenant resells to.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is an end business served by a tenant organization. Each client
// maps to exactly one customer record at the billing provider.
type Client struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID             snowflake.ID `gorm:"not null;index:ix_clients_org_id" json:"org_id"`
	Name              string       `gorm:"type:text;not null" json:"name"`
	BillingCustomerID string       `gorm:"type:text;not null;uniqueIndex:ux_clients_billing_customer_id" json:"billing_customer_id"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
