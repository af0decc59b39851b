package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/dialplane/dialplane/internal/cache"
	"github.com/dialplane/dialplane/internal/config"
	membershipdomain "github.com/dialplane/dialplane/internal/membership/domain"
	obscontext "github.com/dialplane/dialplane/internal/observability/context"
	"github.com/dialplane/dialplane/internal/observability/metrics"
	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie carries the opaque session token.
const SessionCookie = "dp_session"

// rewrittenCtxKey marks a request already re-entered through
// HandleContext so the middleware never loops.
type rewrittenCtxKey struct{}

var skipPrefixes = []string{
	"/webhooks/",
	"/healthz",
	"/metrics",
	"/api/",
	"/login",
	"/static/",
}

type Gateway struct {
	cfg     config.Config
	tenants tenantdomain.Service
	members membershipdomain.Service
	hosts   cache.GatewayResolverCache
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(
	cfg config.Config,
	tenants tenantdomain.Service,
	members membershipdomain.Service,
	hosts cache.GatewayResolverCache,
	m *metrics.Metrics,
	log *zap.Logger,
) *Gateway {
	return &Gateway{
		cfg:     cfg,
		tenants: tenants,
		members: members,
		hosts:   hosts,
		metrics: m,
		log:     log.Named("gateway"),
	}
}

// Middleware routes every app-facing request. Tenant-host requests are
// internally rewritten to the root-domain /s/{orgId} form; root-domain
// /s/{orgId} requests are authorized in place.
func (g *Gateway) Middleware(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Context().Value(rewrittenCtxKey{}) != nil {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
				c.Next()
				return
			}
		}

		res, err := g.resolveHost(c.Request.Context(), c.Request.Host)
		if err != nil {
			if errors.Is(err, tenantdomain.ErrOrganizationNotFound) || errors.Is(err, tenantdomain.ErrInvalidHost) {
				g.block(c)
				return
			}
			g.fail(c, err)
			return
		}

		userID, err := g.identity(c)
		if err != nil {
			g.fail(c, err)
			return
		}

		if res.Platform {
			g.handlePlatform(c, userID, path)
			return
		}

		c.Request = c.Request.WithContext(
			obscontext.WithOrgID(c.Request.Context(), res.Organization.ID.String()))
		g.handleTenant(c, engine, res.Organization, userID, path)
	}
}

// handlePlatform authorizes root-domain /s/{orgId} requests in place.
// Anything else on the platform host is not tenant-scoped and passes
// through untouched.
func (g *Gateway) handlePlatform(c *gin.Context, userID snowflake.ID, path string) {
	orgID, _, ok := splitOrgPath(path)
	if !ok {
		c.Next()
		return
	}
	c.Request = c.Request.WithContext(
		obscontext.WithOrgID(c.Request.Context(), orgID.String()))

	access, err := g.members.Resolve(c.Request.Context(), userID, orgID)
	if err != nil {
		g.fail(c, err)
		return
	}

	decision := Resolve(Request{
		Path:           path,
		TenantScoped:   false,
		HasClientParam: c.Query("client_id") != "",
		Access:         access,
	})
	g.metrics.RoutingDecisions.WithLabelValues(string(decision.Kind)).Inc()

	switch decision.Kind {
	case DecisionAllow:
		c.Next()
	case DecisionRedirectLogin:
		g.redirectLogin(c)
	case DecisionRedirectClients:
		c.Redirect(http.StatusFound, g.cfg.AdminClientsPath)
		c.Abort()
	default:
		g.block(c)
	}
}

// handleTenant authorizes a custom-domain request against the host's
// organization and re-enters the router in /s/{orgId} form.
func (g *Gateway) handleTenant(c *gin.Context, engine *gin.Engine, org *tenantdomain.Organization, userID snowflake.ID, path string) {
	appPath := path
	if orgID, rest, ok := splitOrgPath(path); ok {
		// a tenant host only serves its own organization's scope
		if orgID != org.ID {
			g.block(c)
			return
		}
		appPath = rest
	}

	access, err := g.members.Resolve(c.Request.Context(), userID, org.ID)
	if err != nil {
		g.fail(c, err)
		return
	}

	decision := Resolve(Request{
		Path:           appPath,
		TenantScoped:   true,
		HasClientParam: c.Query("client_id") != "",
		Access:         access,
	})
	g.metrics.RoutingDecisions.WithLabelValues(string(decision.Kind)).Inc()

	switch decision.Kind {
	case DecisionAllow:
		g.forward(c, engine, org.ID, appPath, 0)
	case DecisionRewrite:
		g.forward(c, engine, org.ID, appPath, decision.ClientID)
	case DecisionRedirectLogin:
		g.redirectLogin(c)
	default:
		g.block(c)
	}
}

// forward rewrites the request to the internal /s/{orgId} form and
// re-dispatches it on the same connection.
func (g *Gateway) forward(c *gin.Context, engine *gin.Engine, orgID snowflake.ID, appPath string, clientID snowflake.ID) {
	q := c.Request.URL.Query()
	if clientID != 0 {
		q.Set("client_id", clientID.String())
	}

	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), rewrittenCtxKey{}, true))
	c.Request.URL.Path = "/s/" + orgID.String() + appPath
	c.Request.URL.RawQuery = q.Encode()

	engine.HandleContext(c)
	c.Abort()
}

func (g *Gateway) resolveHost(ctx context.Context, host string) (*tenantdomain.HostResolution, error) {
	if res, ok := g.hosts.GetHost(host); ok {
		return res, nil
	}

	res, err := g.tenants.ResolveHost(ctx, host)
	if err != nil {
		return nil, err
	}
	g.hosts.SetHost(host, res)
	return res, nil
}

func (g *Gateway) identity(c *gin.Context) (snowflake.ID, error) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		auth := c.GetHeader("Authorization")
		token = strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			token = ""
		}
	}
	return g.members.IdentityFromToken(c.Request.Context(), token)
}

func (g *Gateway) redirectLogin(c *gin.Context) {
	target := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}
	c.Redirect(http.StatusFound, g.cfg.LoginPath+"?redirect_to="+url.QueryEscape(target))
	c.Abort()
}

// block serves the generic denial. Always 403, never 404, so probes
// cannot tell which hosts or organizations exist.
func (g *Gateway) block(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error": gin.H{
			"type":    "forbidden",
			"message": "access denied",
		},
	})
}

func (g *Gateway) fail(c *gin.Context, err error) {
	g.log.Error("routing failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"type":    "internal",
			"message": "internal error",
		},
	})
}

// splitOrgPath parses the internal scope form "/s/{orgId}/rest".
func splitOrgPath(path string) (snowflake.ID, string, bool) {
	if !strings.HasPrefix(path, "/s/") {
		return 0, "", false
	}

	rest := path[len("/s/"):]
	var idPart string
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		idPart, rest = rest[:i], rest[i:]
	} else {
		idPart, rest = rest, "/"
	}

	id, err := snowflake.ParseString(idPart)
	if err != nil || idPart == "" {
		return 0, "", false
	}
	return id, rest, true
}
