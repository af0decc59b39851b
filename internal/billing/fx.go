package billing

import (
	"github.com/dialplane/dialplane/internal/billing/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.provider",
	fx.Provide(stripe.NewProvider),
)
