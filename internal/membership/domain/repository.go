package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindUser(ctx context.Context, id snowflake.ID) (*User, error)
	FindMembership(ctx context.Context, orgID, userID snowflake.ID) (*OrganizationMembership, error)
	FindSession(ctx context.Context, token string) (*Session, error)
	CreateUser(ctx context.Context, user *User) error
	CreateMembership(ctx context.Context, m *OrganizationMembership) error
	CreateSession(ctx context.Context, s *Session) error
}
