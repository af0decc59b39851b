package agent

import (
	"github.com/dialplane/dialplane/internal/agent/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("agent.repository",
	fx.Provide(repository.NewRepository),
)
