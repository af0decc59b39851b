package tenant

import (
	"github.com/dialplane/dialplane/internal/tenant/repository"
	"github.com/dialplane/dialplane/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
