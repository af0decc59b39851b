// Package domain contains the call usage audit model and the metering
// sink contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/pkg/db/pagination"
)

var (
	ErrAgentNotFound         = errors.New("agent_not_found")
	ErrMissingMeterEventName = errors.New("missing_meter_event_name")
	ErrInvalidDuration       = errors.New("invalid_duration")
)

// CallUsageRecord is the local audit trail of call-completion reports.
// Every delivery appends a row; the billing effect is deduplicated at
// the provider by call id, the audit trail deliberately is not.
type CallUsageRecord struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID           snowflake.ID `gorm:"column:org_id;not null;index:ix_call_usage_records_org_id" json:"org_id"`
	ClientID        snowflake.ID `gorm:"column:client_id;not null;index:ix_call_usage_records_client_id" json:"client_id"`
	AgentID         snowflake.ID `gorm:"column:agent_id;not null" json:"agent_id"`
	CallRef         string       `gorm:"column:call_ref;type:text;not null;index:ix_call_usage_records_call_ref" json:"call_ref"`
	DurationSeconds int64        `gorm:"column:duration_seconds;not null" json:"duration_seconds"`
	MeterEventName  string       `gorm:"column:meter_event_name;type:text;not null" json:"meter_event_name"`
	Submitted       bool         `gorm:"not null;default:false" json:"submitted"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CallUsageRecord) TableName() string { return "call_usage_records" }

// RecordCompletionInput is one end-of-call report.
type RecordCompletionInput struct {
	AgentRef        string
	CallRef         string
	DurationSeconds int64
	OccurredAt      time.Time
}

type ListRequest struct {
	OrgID      snowflake.ID
	ClientID   snowflake.ID
	Pagination pagination.Pagination
}

type ListResponse struct {
	Records    []CallUsageRecord   `json:"records"`
	TotalCount int64               `json:"total_count"`
	PageInfo   pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// RecordCompletion persists the report and submits exactly one
	// metered-usage effect per call ref, however many times the report
	// is redelivered.
	RecordCompletion(ctx context.Context, in RecordCompletionInput) (*CallUsageRecord, error)

	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}
