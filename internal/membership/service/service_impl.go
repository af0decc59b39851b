package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/membership/domain"
	"go.uber.org/zap"
)

type service struct {
	repo    domain.Repository
	clients clientdomain.Repository
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(repo domain.Repository, clients clientdomain.Repository, clk clock.Clock, log *zap.Logger) domain.Service {
	return &service{
		repo:    repo,
		clients: clients,
		clock:   clk,
		log:     log.Named("membership.service"),
	}
}

// Resolve classifies the relationship between a user and an organization.
// Direct membership is checked first so staff who also appear as client
// contacts keep their staff powers.
func (s *service) Resolve(ctx context.Context, userID, orgID snowflake.ID) (domain.Access, error) {
	if userID == 0 {
		return domain.Access{Kind: domain.AccessNoUser}, nil
	}

	m, err := s.repo.FindMembership(ctx, orgID, userID)
	if err != nil {
		return domain.Access{}, err
	}
	if m != nil {
		return domain.Access{Kind: domain.AccessDirect, Role: m.Role}, nil
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return domain.Access{}, err
	}
	if user == nil {
		return domain.Access{}, domain.ErrUserNotFound
	}

	if user.Kind == domain.UserKindClient && user.ClientID != nil {
		client, err := s.clients.FindByID(ctx, *user.ClientID)
		if err != nil {
			return domain.Access{}, err
		}
		if client != nil && client.OrgID == orgID {
			return domain.Access{Kind: domain.AccessViaClient, ClientID: client.ID}, nil
		}
	}

	return domain.Access{Kind: domain.AccessNone}, nil
}

func (s *service) IdentityFromToken(ctx context.Context, token string) (snowflake.ID, error) {
	if token == "" {
		return 0, nil
	}

	sess, err := s.repo.FindSession(ctx, token)
	if err != nil {
		return 0, err
	}
	if sess == nil {
		return 0, nil
	}
	if !sess.ExpiresAt.After(s.clock.Now()) {
		return 0, nil
	}

	return sess.UserID, nil
}
