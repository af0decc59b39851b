package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/callrouting/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) ListEnabledByAgent(ctx context.Context, agentID snowflake.ID) ([]domain.RoutingRule, error) {
	var rules []domain.RoutingRule
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND enabled = ?", agentID, true).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repository) Create(ctx context.Context, rule *domain.RoutingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}
