// Package domain contains core types for the membership oracle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserKind distinguishes staff accounts from client-side contacts.
type UserKind string

const (
	// UserKindPlatform marks tenant staff who may hold direct memberships.
	UserKindPlatform UserKind = "platform"
	// UserKindClient marks contacts who belong to a single client business.
	UserKindClient UserKind = "clients"
)

// User represents an authenticated account.
type User struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Email     string        `gorm:"type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	Kind      UserKind      `gorm:"type:text;not null;default:'platform'" json:"kind"`
	ClientID  *snowflake.ID `gorm:"column:client_id;index" json:"client_id,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// OrganizationMembership grants a user a role inside one organization.
type OrganizationMembership struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_memberships_org_user" json:"org_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_memberships_org_user;index" json:"user_id"`
	Role      string       `gorm:"type:text;not null;default:'member'" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrganizationMembership) TableName() string { return "organization_memberships" }

// Session represents a persisted login session keyed by an opaque token.
type Session struct {
	Token     string       `gorm:"primaryKey;type:text" json:"-"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index" json:"user_id"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
