package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrClientNotFound = errors.New("client_not_found")

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id snowflake.ID) (*Client, error)
	FindByBillingCustomerID(ctx context.Context, customerID string) (*Client, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Client, error)
	Create(ctx context.Context, client *Client) error
}
