package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/agent"
	"github.com/dialplane/dialplane/internal/billing"
	"github.com/dialplane/dialplane/internal/cache"
	"github.com/dialplane/dialplane/internal/callrouting"
	"github.com/dialplane/dialplane/internal/client"
	"github.com/dialplane/dialplane/internal/clock"
	"github.com/dialplane/dialplane/internal/config"
	"github.com/dialplane/dialplane/internal/gateway"
	"github.com/dialplane/dialplane/internal/membership"
	"github.com/dialplane/dialplane/internal/migration"
	"github.com/dialplane/dialplane/internal/observability"
	"github.com/dialplane/dialplane/internal/server"
	"github.com/dialplane/dialplane/internal/subscription"
	"github.com/dialplane/dialplane/internal/tenant"
	"github.com/dialplane/dialplane/internal/usagemetering"
	"github.com/dialplane/dialplane/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		cache.Module,

		tenant.Module,
		client.Module,
		membership.Module,
		agent.Module,
		callrouting.Module,
		billing.Module,
		subscription.Module,
		usagemetering.Module,
		gateway.Module,

		migration.Module,
		server.Module,
	)

	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
