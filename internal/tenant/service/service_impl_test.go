package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/config"
	"github.com/dialplane/dialplane/internal/tenant/domain"
	"github.com/dialplane/dialplane/internal/tenant/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Organization{}); err != nil {
		t.Fatal(err)
	}

	node, _ := snowflake.NewNode(1)
	cfg := config.Config{
		RootDomain:          "dialplane.io",
		PreviewDomainSuffix: ".preview.dialplane.io",
	}

	return NewService(cfg, repository.NewRepository(db), node, zap.NewNop())
}

func TestResolveHost_RootDomainIsPlatform(t *testing.T) {
	svc := setupService(t)

	for _, host := range []string{"dialplane.io", "DialPlane.IO", "www.dialplane.io", "dialplane.io:8080"} {
		res, err := svc.ResolveHost(context.Background(), host)
		assert.NoError(t, err, host)
		assert.True(t, res.Platform, host)
		assert.Nil(t, res.Organization, host)
	}
}

func TestResolveHost_PreviewSuffixIsPlatform(t *testing.T) {
	svc := setupService(t)

	res, err := svc.ResolveHost(context.Background(), "acme.preview.dialplane.io")
	assert.NoError(t, err)
	assert.True(t, res.Platform)
}

func TestResolveHost_CustomDomain(t *testing.T) {
	svc := setupService(t)

	dom := "voice.acme.com"
	org, err := svc.CreateOrganization(context.Background(), domain.CreateOrganizationInput{
		Name:   "Acme Voice",
		Domain: &dom,
	})
	assert.NoError(t, err)
	assert.Equal(t, "acme-voice", org.Slug)

	res, err := svc.ResolveHost(context.Background(), "voice.acme.com:443")
	assert.NoError(t, err)
	assert.False(t, res.Platform)
	if assert.NotNil(t, res.Organization) {
		assert.Equal(t, org.ID, res.Organization.ID)
	}
}

func TestResolveHost_UnknownDomain(t *testing.T) {
	svc := setupService(t)

	res, err := svc.ResolveHost(context.Background(), "nobody.example.com")
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
	assert.Nil(t, res)
}

func TestResolveHost_EmptyHost(t *testing.T) {
	svc := setupService(t)

	_, err := svc.ResolveHost(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidHost)
}

func TestCreateOrganization_DuplicateDomain(t *testing.T) {
	svc := setupService(t)

	dom := "voice.acme.com"
	_, err := svc.CreateOrganization(context.Background(), domain.CreateOrganizationInput{Name: "Acme", Domain: &dom})
	assert.NoError(t, err)

	_, err = svc.CreateOrganization(context.Background(), domain.CreateOrganizationInput{Name: "Other Org", Domain: &dom})
	assert.ErrorIs(t, err, domain.ErrDomainAlreadyExists)
}
