// Package migration creates the schema on startup so the service is
// usable out of the box for local and self-hosted environments.
package migration

import (
	agentdomain "github.com/dialplane/dialplane/internal/agent/domain"
	callroutingdomain "github.com/dialplane/dialplane/internal/callrouting/domain"
	clientdomain "github.com/dialplane/dialplane/internal/client/domain"
	membershipdomain "github.com/dialplane/dialplane/internal/membership/domain"
	subscriptiondomain "github.com/dialplane/dialplane/internal/subscription/domain"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	usagedomain "github.com/dialplane/dialplane/internal/usagemetering/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tenantdomain.Organization{},
		&clientdomain.Client{},
		&membershipdomain.User{},
		&membershipdomain.OrganizationMembership{},
		&membershipdomain.Session{},
		&agentdomain.Agent{},
		&agentdomain.PhoneNumber{},
		&callroutingdomain.RoutingRule{},
		&subscriptiondomain.Subscription{},
		&usagedomain.CallUsageRecord{},
	)
}
