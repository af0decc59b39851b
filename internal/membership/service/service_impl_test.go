package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	clientrepository "github.com/dialplane/dialplane/internal/client/repository"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/membership/domain"
	"github.com/dialplane/dialplane/internal/membership/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	repo domain.Repository
	clk  *clock.FakeClock
	node *snowflake.Node
	db   *gorm.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	err = db.AutoMigrate(
		&domain.User{},
		&domain.OrganizationMembership{},
		&domain.Session{},
		&clientdomain.Client{},
	)
	if err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	repo := repository.NewRepository(db)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(repo, clientrepository.NewRepository(db), clk, zap.NewNop())

	return &fixture{svc: svc, repo: repo, clk: clk, node: node, db: db}
}

func (f *fixture) addUser(t *testing.T, kind domain.UserKind, clientID *snowflake.ID) snowflake.ID {
	t.Helper()
	user := &domain.User{
		ID:       f.node.Generate(),
		Email:    f.node.Generate().String() + "@example.com",
		Kind:     kind,
		ClientID: clientID,
	}
	if err := f.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func (f *fixture) addClient(t *testing.T, orgID snowflake.ID) snowflake.ID {
	t.Helper()
	c := &clientdomain.Client{
		ID:                f.node.Generate(),
		OrgID:             orgID,
		Name:              "Client",
		BillingCustomerID: "cus_" + f.node.Generate().String(),
	}
	if err := f.db.Create(c).Error; err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func TestResolve_NoUser(t *testing.T) {
	f := setup(t)

	access, err := f.svc.Resolve(context.Background(), 0, f.node.Generate())
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessNoUser, access.Kind)
}

func TestResolve_DirectMembership(t *testing.T) {
	f := setup(t)
	orgID := f.node.Generate()
	userID := f.addUser(t, domain.UserKindPlatform, nil)

	err := f.repo.CreateMembership(context.Background(), &domain.OrganizationMembership{
		ID:     f.node.Generate(),
		OrgID:  orgID,
		UserID: userID,
		Role:   "admin",
	})
	assert.NoError(t, err)

	access, err := f.svc.Resolve(context.Background(), userID, orgID)
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessDirect, access.Kind)
	assert.Equal(t, "admin", access.Role)
	assert.Zero(t, access.ClientID)
}

func TestResolve_ViaClient(t *testing.T) {
	f := setup(t)
	orgID := f.node.Generate()
	clientID := f.addClient(t, orgID)
	userID := f.addUser(t, domain.UserKindClient, &clientID)

	access, err := f.svc.Resolve(context.Background(), userID, orgID)
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessViaClient, access.Kind)
	assert.Equal(t, clientID, access.ClientID)
}

func TestResolve_DirectWinsOverClient(t *testing.T) {
	f := setup(t)
	orgID := f.node.Generate()
	clientID := f.addClient(t, orgID)
	userID := f.addUser(t, domain.UserKindClient, &clientID)

	err := f.repo.CreateMembership(context.Background(), &domain.OrganizationMembership{
		ID:     f.node.Generate(),
		OrgID:  orgID,
		UserID: userID,
		Role:   "member",
	})
	assert.NoError(t, err)

	access, err := f.svc.Resolve(context.Background(), userID, orgID)
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessDirect, access.Kind)
}

func TestResolve_ClientOfOtherOrg(t *testing.T) {
	f := setup(t)
	clientID := f.addClient(t, f.node.Generate())
	userID := f.addUser(t, domain.UserKindClient, &clientID)

	access, err := f.svc.Resolve(context.Background(), userID, f.node.Generate())
	assert.NoError(t, err)
	assert.Equal(t, domain.AccessNone, access.Kind)
}

func TestResolve_UnknownUser(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Resolve(context.Background(), f.node.Generate(), f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestIdentityFromToken(t *testing.T) {
	f := setup(t)
	userID := f.addUser(t, domain.UserKindPlatform, nil)

	err := f.repo.CreateSession(context.Background(), &domain.Session{
		Token:     "tok_live",
		UserID:    userID,
		ExpiresAt: f.clk.Now().Add(time.Hour),
	})
	assert.NoError(t, err)

	got, err := f.svc.IdentityFromToken(context.Background(), "tok_live")
	assert.NoError(t, err)
	assert.Equal(t, userID, got)

	// unknown and empty tokens resolve to the anonymous identity
	got, err = f.svc.IdentityFromToken(context.Background(), "tok_other")
	assert.NoError(t, err)
	assert.Zero(t, got)

	got, err = f.svc.IdentityFromToken(context.Background(), "")
	assert.NoError(t, err)
	assert.Zero(t, got)

	// expiry is checked against the clock
	f.clk.Advance(2 * time.Hour)
	got, err = f.svc.IdentityFromToken(context.Background(), "tok_live")
	assert.NoError(t, err)
	assert.Zero(t, got)
}
