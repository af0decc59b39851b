// Package domain contains models and the evaluator for time-window
// call routing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// RoutingRule forwards an agent's calls to an alternate destination
// while the wall clock falls inside its window on a listed weekday.
// StartTime and EndTime are "HH:MM:SS" strings compared lexically.
type RoutingRule struct {
	ID        snowflake.ID                `gorm:"primaryKey" json:"id"`
	AgentID   snowflake.ID                `gorm:"column:agent_id;not null;index:ix_routing_rules_agent_id" json:"agent_id"`
	Enabled   bool                        `gorm:"not null;default:true" json:"enabled"`
	Days      datatypes.JSONSlice[string] `gorm:"column:days" json:"days"`
	StartTime string                      `gorm:"column:start_time;type:text;not null" json:"start_time"`
	EndTime   string                      `gorm:"column:end_time;type:text;not null" json:"end_time"`
	RouteTo   string                      `gorm:"column:route_to;type:text;not null" json:"route_to"`
	CreatedAt time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RoutingRule) TableName() string { return "routing_rules" }
