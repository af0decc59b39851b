package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *repository) FindByClientID(ctx context.Context, clientID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Upsert inserts the mirror row or refreshes it in place. The unique
// index on client_id turns the read-then-write race between concurrent
// reconciliations into a single-row conflict update.
func (r *repository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_id",
				"status",
				"currency",
				"base_price_ref",
				"base_amount_cents",
				"minutes_included",
				"usage_price_ref",
				"per_second_price_cents",
				"meter_ref",
				"meter_event_name",
				"payment_method_brand",
				"payment_method_last4",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"last_synced_at",
				"updated_at",
			}),
		}).
		Create(sub).Error
}
