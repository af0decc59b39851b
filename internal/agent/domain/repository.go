package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrAgentNotFound = errors.New("agent_not_found")

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id snowflake.ID) (*Agent, error)
	FindByAssistantRef(ctx context.Context, ref string) (*Agent, error)
	ListByClient(ctx context.Context, clientID snowflake.ID) ([]Agent, error)
	Create(ctx context.Context, agent *Agent) error
}
