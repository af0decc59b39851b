package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Decision is the routing outcome for one inbound call.
type Decision struct {
	// Override holds the destination to forward to when Matched.
	Override string
	Matched  bool
}

type Service interface {
	// Route evaluates the agent's rules against the current time.
	Route(ctx context.Context, agentID snowflake.ID) (Decision, error)
}
