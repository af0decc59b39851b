package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrSlugAlreadyExists    = errors.New("slug_already_exists")
	ErrDomainAlreadyExists  = errors.New("domain_already_exists")
	ErrInvalidHost          = errors.New("invalid_host")
)

// HostResolution is the outcome of mapping a request host to a tenant.
// Platform is true when the host belongs to the operator's own domain;
// Organization is set when the host matched a tenant's custom domain.
type HostResolution struct {
	Platform     bool
	Organization *Organization
}

type CreateOrganizationInput struct {
	Name               string
	Domain             *string
	BillingAccountRef  string
	VoiceCredentialRef string
}

type Service interface {
	ResolveHost(ctx context.Context, host string) (*HostResolution, error)
	GetOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	CreateOrganization(ctx context.Context, in CreateOrganizationInput) (*Organization, error)
}
