package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrUserNotFound    = errors.New("user_not_found")
	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExpired  = errors.New("session_expired")
)

// AccessKind enumerates how a user relates to an organization.
type AccessKind string

const (
	// AccessNoUser means the request carried no authenticated identity.
	AccessNoUser AccessKind = "no_user"
	// AccessDirect means the user holds a membership in the organization.
	AccessDirect AccessKind = "direct"
	// AccessViaClient means the user is a contact of a client business
	// served by the organization.
	AccessViaClient AccessKind = "via_client"
	// AccessNone means an authenticated user with no relationship at all.
	AccessNone AccessKind = "none"
)

// Access is the oracle's answer for one (user, organization) pair.
// ClientID is set only for AccessViaClient.
type Access struct {
	Kind     AccessKind
	Role     string
	ClientID snowflake.ID
}

type Service interface {
	// Resolve classifies userID's relationship to orgID. A zero userID
	// yields AccessNoUser. Direct membership wins over client contact
	// when both hold.
	Resolve(ctx context.Context, userID, orgID snowflake.ID) (Access, error)

	// IdentityFromToken returns the user behind a session token, or a
	// zero ID when the token is absent, unknown or expired.
	IdentityFromToken(ctx context.Context, token string) (snowflake.ID, error)
}
