package usagemetering

import (
	"github.com/dialplane/dialplane/internal/usagemetering/domain"
	"github.com/dialplane/dialplane/internal/usagemetering/service"
	"github.com/dialplane/dialplane/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("usagemetering.service",
	fx.Provide(repository.ProvideStore[domain.CallUsageRecord]),
	fx.Provide(service.NewService),
)
