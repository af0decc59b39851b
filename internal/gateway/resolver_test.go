package gateway

import (
	"testing"

	membershipdomain "github.com/dialplane/dialplane/internal/membership/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolve_DecisionTable(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want DecisionKind
	}{
		{
			name: "no user always redirects to login",
			req:  Request{Path: "/app", TenantScoped: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessNoUser}},
			want: DecisionRedirectLogin,
		},
		{
			name: "no user on root-domain form redirects to login",
			req:  Request{Path: "/s/1/app", Access: membershipdomain.Access{Kind: membershipdomain.AccessNoUser}},
			want: DecisionRedirectLogin,
		},
		{
			name: "direct member on tenant host is allowed",
			req:  Request{Path: "/app", TenantScoped: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessDirect, Role: "admin"}},
			want: DecisionAllow,
		},
		{
			name: "client contact on tenant host without param gets client_id injected",
			req:  Request{Path: "/app", TenantScoped: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessViaClient, ClientID: 42}},
			want: DecisionRewrite,
		},
		{
			name: "client contact on tenant host with param is allowed",
			req:  Request{Path: "/app", TenantScoped: true, HasClientParam: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessViaClient, ClientID: 42}},
			want: DecisionAllow,
		},
		{
			name: "no access on tenant host is blocked",
			req:  Request{Path: "/app", TenantScoped: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessNone}},
			want: DecisionBlock,
		},
		{
			name: "direct member on root-domain form without param must pick a client",
			req:  Request{Path: "/s/1/app", Access: membershipdomain.Access{Kind: membershipdomain.AccessDirect}},
			want: DecisionRedirectClients,
		},
		{
			name: "direct member on root-domain form with param is allowed",
			req:  Request{Path: "/s/1/app", HasClientParam: true, Access: membershipdomain.Access{Kind: membershipdomain.AccessDirect}},
			want: DecisionAllow,
		},
		{
			name: "client contact on root-domain form is allowed",
			req:  Request{Path: "/s/1/app", Access: membershipdomain.Access{Kind: membershipdomain.AccessViaClient, ClientID: 42}},
			want: DecisionAllow,
		},
		{
			name: "no access on root-domain form is blocked",
			req:  Request{Path: "/s/1/app", Access: membershipdomain.Access{Kind: membershipdomain.AccessNone}},
			want: DecisionBlock,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.req)
			assert.Equal(t, tc.want, got.Kind)

			// pure function: repeated evaluation never changes the outcome
			for i := 0; i < 3; i++ {
				assert.Equal(t, got, Resolve(tc.req))
			}
		})
	}
}

func TestResolve_RewriteCarriesClientID(t *testing.T) {
	got := Resolve(Request{
		TenantScoped: true,
		Access:       membershipdomain.Access{Kind: membershipdomain.AccessViaClient, ClientID: 42},
	})
	assert.Equal(t, DecisionRewrite, got.Kind)
	assert.EqualValues(t, 42, got.ClientID)
}

func TestSplitOrgPath(t *testing.T) {
	id, rest, ok := splitOrgPath("/s/123456789/app/settings")
	assert.True(t, ok)
	assert.EqualValues(t, 123456789, id)
	assert.Equal(t, "/app/settings", rest)

	id, rest, ok = splitOrgPath("/s/123456789")
	assert.True(t, ok)
	assert.EqualValues(t, 123456789, id)
	assert.Equal(t, "/", rest)

	_, _, ok = splitOrgPath("/app")
	assert.False(t, ok)

	_, _, ok = splitOrgPath("/s/not-a-number/app")
	assert.False(t, ok)
}
