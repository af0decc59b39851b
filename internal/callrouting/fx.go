package callrouting

import (
	"github.com/dialplane/dialplane/internal/callrouting/repository"
	"github.com/dialplane/dialplane/internal/callrouting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("callrouting.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
