package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEnabledByAgent(ctx context.Context, agentID snowflake.ID) ([]RoutingRule, error)
	Create(ctx context.Context, rule *RoutingRule) error
}
