// Package gateway decides how each tenant-scoped request is routed:
// passed through, rewritten, redirected or blocked.
package gateway

import (
	"github.com/bwmarrin/snowflake"
	membershipdomain "github.com/dialplane/dialplane/internal/membership/domain"
)

// DecisionKind enumerates the routing outcomes.
type DecisionKind string

const (
	// DecisionAllow passes the request through unchanged.
	DecisionAllow DecisionKind = "allow"
	// DecisionRewrite forwards with client_id injected into the query.
	DecisionRewrite DecisionKind = "rewrite"
	// DecisionRedirectLogin sends unauthenticated visitors to login,
	// preserving the requested path.
	DecisionRedirectLogin DecisionKind = "redirect_login"
	// DecisionRedirectClients sends a platform operator to the client
	// list so they pick a client before entering tenant view.
	DecisionRedirectClients DecisionKind = "redirect_clients"
	// DecisionBlock denies with a generic response. Deliberately not a
	// 404, which would leak which organizations exist.
	DecisionBlock DecisionKind = "block"
)

// Request carries the already-fetched facts a routing decision needs.
// TenantScoped is true when the request arrived on a tenant's custom
// domain, false for the root-domain /s/{orgId} form.
type Request struct {
	Path           string
	TenantScoped   bool
	HasClientParam bool
	Access         membershipdomain.Access
}

// Decision is the resolved outcome. ClientID is set only for
// DecisionRewrite.
type Decision struct {
	Kind     DecisionKind
	ClientID snowflake.ID
}

// Resolve is a pure function of its input: the same request facts
// always produce the same decision, independent of request ordering.
func Resolve(req Request) Decision {
	switch req.Access.Kind {
	case membershipdomain.AccessNoUser:
		return Decision{Kind: DecisionRedirectLogin}

	case membershipdomain.AccessDirect:
		if !req.TenantScoped && !req.HasClientParam {
			return Decision{Kind: DecisionRedirectClients}
		}
		return Decision{Kind: DecisionAllow}

	case membershipdomain.AccessViaClient:
		if req.TenantScoped && !req.HasClientParam {
			return Decision{Kind: DecisionRewrite, ClientID: req.Access.ClientID}
		}
		return Decision{Kind: DecisionAllow}

	default:
		return Decision{Kind: DecisionBlock}
	}
}
