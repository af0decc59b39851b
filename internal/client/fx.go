package client

import (
	"github.com/dialplane/dialplane/internal/client/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("client.repository",
	fx.Provide(repository.NewRepository),
)
