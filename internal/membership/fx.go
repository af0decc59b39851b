package membership

import (
	"github.com/dialplane/dialplane/internal/membership/repository"
	"github.com/dialplane/dialplane/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
