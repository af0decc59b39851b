package subscription

import (
	"github.com/dialplane/dialplane/internal/subscription/repository"
	"github.com/dialplane/dialplane/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
