package goidp

import (
	"context"

	"github.com/idpsrv/go-idp/internal/timeutil"
)

// GrantSessionManager contains all the logic needed to manage grant sessions.
type GrantSessionManager interface {
	Save(ctx context.Context, session *GrantSession) error
	SessionByTokenID(ctx context.Context, tokenID string) (*GrantSession, error)
	// SessionByRefreshToken matches the current refresh token as well as
	// rotated out ones, so reuse of an old token can be detected.
	SessionByRefreshToken(ctx context.Context, refreshToken string) (*GrantSession, error)
	// RotateRefreshToken atomically replaces oldToken with newToken. It fails
	// if the session's current refresh token is no longer oldToken, which
	// rejects concurrent duplicate rotations.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error
	Delete(ctx context.Context, id string) error
	DeleteByAuthCode(ctx context.Context, code string) error
	DeleteBySubjectAndClient(ctx context.Context, subject, clientID string) error
	DeleteBySubject(ctx context.Context, subject string) error
}

// GrantSession represents the granted access an end user gave to a client
// and the token family issued for it. Access and refresh tokens both resolve
// to their grant session for introspection and revocation.
type GrantSession struct {
	ID string `json:"id" bson:"_id"`
	// TokenID is the id of the last access token issued for this grant.
	TokenID string `json:"token_id" bson:"token_id"`
	// AuthCode is the authorization code this grant was issued for. Replaying
	// the code revokes the grant.
	AuthCode     string `json:"auth_code,omitempty" bson:"auth_code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty" bson:"refresh_token,omitempty"`
	// RotatedRefreshTokens keeps the refresh tokens already rotated out.
	// Presenting one of them is a security event that revokes the family.
	RotatedRefreshTokens []string `json:"rotated_refresh_tokens,omitempty" bson:"rotated_refresh_tokens,omitempty"`
	Subject              string   `json:"sub" bson:"sub"`
	TenantID             string   `json:"tenant_id" bson:"tenant_id"`
	ClientID             string   `json:"client_id" bson:"client_id"`
	// GrantedScopes are all the scopes the client was given permission to.
	GrantedScopes string `json:"granted_scopes" bson:"granted_scopes"`
	// ActiveScopes is the subset of the granted scopes the current access
	// token gives permission to. It only differs from GrantedScopes when the
	// client refreshed the token asking fewer permissions.
	ActiveScopes string `json:"active_scopes" bson:"active_scopes"`
	Nonce        string `json:"nonce,omitempty" bson:"nonce,omitempty"`
	// KeyID is the signing key the access token was issued with. The key must
	// stay servable through the JWKS endpoint while the token is valid.
	KeyID                      string `json:"key_id,omitempty" bson:"key_id,omitempty"`
	TokenLifetimeSecs          int    `json:"token_lifetime_secs" bson:"token_lifetime_secs"`
	LastTokenIssuedAtTimestamp int    `json:"last_token_issued_at" bson:"last_token_issued_at"`
	CreatedAtTimestamp         int    `json:"created_at" bson:"created_at"`
	ExpiresAtTimestamp         int    `json:"expires_at" bson:"expires_at"`
	Revoked                    bool   `json:"revoked" bson:"revoked"`
}

func (g *GrantSession) IsExpired() bool {
	return timeutil.TimestampNow() > g.ExpiresAtTimestamp
}

// HasLastTokenExpired returns whether the last access token issued for the
// grant session is expired.
func (g *GrantSession) HasLastTokenExpired() bool {
	return timeutil.TimestampNow() > g.LastTokenIssuedAtTimestamp+g.TokenLifetimeSecs
}
