package cache

import (
	"testing"
	"time"

	tenantdomain "github.com/dialplane/dialplane/internal/tenant/domain"
	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, -time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("b", 2, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestTTLCache_Delete(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestGatewayResolverCache_NormalizesHostKey(t *testing.T) {
	c := NewGatewayResolverCache()

	res := &tenantdomain.HostResolution{Platform: true}
	c.SetHost("Voice.Acme.COM", res)

	got, ok := c.GetHost("voice.acme.com")
	assert.True(t, ok)
	assert.Same(t, res, got)
}

func TestGatewayResolverCache_NilResolutionNotStored(t *testing.T) {
	c := NewGatewayResolverCache()

	c.SetHost("voice.acme.com", nil)
	_, ok := c.GetHost("voice.acme.com")
	assert.False(t, ok)
}
