// Package domain contains models for provisioned voice agents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Agent is a voice assistant provisioned for a client. AssistantRef is
// the identifier the voice platform knows the assistant by; webhook
// callbacks address agents through it.
type Agent struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID `gorm:"column:org_id;not null;index:ix_agents_org_id" json:"org_id"`
	ClientID           snowflake.ID `gorm:"column:client_id;not null;index:ix_agents_client_id" json:"client_id"`
	Name               string       `gorm:"type:text;not null" json:"name"`
	AssistantRef       string       `gorm:"column:assistant_ref;type:text;not null;uniqueIndex:ux_agents_assistant_ref" json:"assistant_ref"`
	DefaultDestination string       `gorm:"column:default_destination;type:text" json:"default_destination"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }

// PhoneNumber is a number attached to an agent.
type PhoneNumber struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AgentID   snowflake.ID `gorm:"column:agent_id;not null;index:ix_phone_numbers_agent_id" json:"agent_id"`
	Number    string       `gorm:"type:text;not null;uniqueIndex:ux_phone_numbers_number" json:"number"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PhoneNumber) TableName() string { return "phone_numbers" }
