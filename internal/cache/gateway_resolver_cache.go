package cache

import (
	"strings"
	"time"

	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
)

const (
	defaultHostTTL         = 5 * time.Minute
	defaultSubscriptionTTL = 45 * time.Second
)

// GatewayResolverCache stores hot-path lookups made on every routed
// request. Host resolutions are cached positively only; a miss always
// goes back to the directory.
type GatewayResolverCache interface {
	GetHost(host string) (*tenantdomain.HostResolution, bool)
	SetHost(host string, res *tenantdomain.HostResolution)
}

type gatewayResolverCache struct {
	hosts   Cache[string, *tenantdomain.HostResolution]
	hostTTL time.Duration
}

// NewGatewayResolverCache returns an in-memory cache tuned for request routing.
func NewGatewayResolverCache() GatewayResolverCache {
	return &gatewayResolverCache{
		hosts:   NewTTLCache[string, *tenantdomain.HostResolution](),
		hostTTL: defaultHostTTL,
	}
}

func (c *gatewayResolverCache) GetHost(host string) (*tenantdomain.HostResolution, bool) {
	return c.hosts.Get(cacheKey(host))
}

func (c *gatewayResolverCache) SetHost(host string, res *tenantdomain.HostResolution) {
	if res == nil {
		return
	}
	c.hosts.Set(cacheKey(host), res, c.hostTTL)
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}
