package service

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/config"
	"github.com/dialplane/dialplane/internal/tenant/domain"
	"github.com/dialplane/dialplane/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type service struct {
	cfg   config.Config
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(cfg config.Config, repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		cfg:   cfg,
		repo:  repo,
		genID: genID,
		log:   log.Named("tenant.service"),
	}
}

// ResolveHost maps an incoming Host header to the tenant that owns it.
// The operator's root domain and any preview subdomains resolve to the
// platform itself; anything else must match a registered custom domain.
func (s *service) ResolveHost(ctx context.Context, host string) (*domain.HostResolution, error) {
	host = normalizeHost(host)
	if host == "" {
		return nil, domain.ErrInvalidHost
	}

	root := strings.ToLower(s.cfg.RootDomain)
	if host == root || host == "www."+root {
		return &domain.HostResolution{Platform: true}, nil
	}
	if suffix := strings.ToLower(s.cfg.PreviewDomainSuffix); suffix != "" && strings.HasSuffix(host, suffix) {
		return &domain.HostResolution{Platform: true}, nil
	}

	org, err := s.repo.FindByDomain(ctx, host)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}

	return &domain.HostResolution{Organization: org}, nil
}

func (s *service) GetOrganization(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}
	return org, nil
}

func (s *service) CreateOrganization(ctx context.Context, in domain.CreateOrganizationInput) (*domain.Organization, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidHost
	}

	org := &domain.Organization{
		ID:                 s.genID.Generate(),
		Name:               name,
		Slug:               slug.Make(name),
		BillingAccountRef:  strings.TrimSpace(in.BillingAccountRef),
		VoiceCredentialRef: strings.TrimSpace(in.VoiceCredentialRef),
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if in.Domain != nil {
		d := normalizeHost(*in.Domain)
		if d == "" {
			return nil, domain.ErrInvalidHost
		}
		org.Domain = &d
	}

	if err := s.repo.Create(ctx, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			if org.Domain != nil {
				if existing, ferr := s.repo.FindByDomain(ctx, *org.Domain); ferr == nil && existing != nil {
					return nil, domain.ErrDomainAlreadyExists
				}
			}
			return nil, domain.ErrSlugAlreadyExists
		}
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("slug", org.Slug),
	)

	return org, nil
}

// normalizeHost lowercases the host and strips any port. Host headers
// arrive as "tenant.example.com:8080" behind some proxies.
func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}
