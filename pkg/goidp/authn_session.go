package goidp

import (
	"context"

	"github.com/idpsrv/go-idp/internal/timeutil"
)

// AuthnSessionManager contains all the logic needed to manage authorization
// sessions.
type AuthnSessionManager interface {
	Save(ctx context.Context, session *AuthnSession) error
	SessionByID(ctx context.Context, id string) (*AuthnSession, error)
	// ConsumeByAuthCode atomically fetches and removes the session holding
	// the authorization code. Concurrent submissions of the same code must
	// observe at most one success.
	ConsumeByAuthCode(ctx context.Context, code string) (*AuthnSession, error)
	Delete(ctx context.Context, id string) error
}

type AuthnSessionStatus string

const (
	StatusPending       AuthnSessionStatus = "pending"
	StatusDevicePending AuthnSessionStatus = "device_pending"
	StatusGranted       AuthnSessionStatus = "granted"
	StatusDenied        AuthnSessionStatus = "denied"
	StatusExpired       AuthnSessionStatus = "expired"
)

// AuthorizationParameters are the query parameters of an authorization
// request that stay bound to the session for its whole lifetime.
type AuthorizationParameters struct {
	RedirectURI  string       `json:"redirect_uri,omitempty" bson:"redirect_uri,omitempty"`
	ResponseType ResponseType `json:"response_type,omitempty" bson:"response_type,omitempty"`
	Scopes       string       `json:"scope,omitempty" bson:"scope,omitempty"`
	State        string       `json:"state,omitempty" bson:"state,omitempty"`
	Nonce        string       `json:"nonce,omitempty" bson:"nonce,omitempty"`
}

// AuthnSession is an authorization request staged by the authorization
// endpoint and consumed by the device tracker and the token endpoint.
type AuthnSession struct {
	ID       string             `json:"id" bson:"_id"`
	TenantID string             `json:"tenant_id" bson:"tenant_id"`
	ClientID string             `json:"client_id" bson:"client_id"`
	Status   AuthnSessionStatus `json:"status" bson:"status"`
	// Subject is filled once the end user authenticates.
	Subject       string `json:"sub,omitempty" bson:"sub,omitempty"`
	GrantedScopes string `json:"granted_scopes,omitempty" bson:"granted_scopes,omitempty"`
	// AuthCode is generated when the session reaches the granted status.
	AuthCode                string `json:"auth_code,omitempty" bson:"auth_code,omitempty"`
	CreatedAtTimestamp      int    `json:"created_at" bson:"created_at"`
	ExpiresAtTimestamp      int    `json:"expires_at" bson:"expires_at"`
	AuthorizationParameters `bson:"inline"`
}

func (s *AuthnSession) IsExpired() bool {
	return timeutil.TimestampNow() > s.ExpiresAtTimestamp
}

// GrantScopes records the scopes the end user actually consented to.
func (s *AuthnSession) GrantScopes(scopes string) {
	s.GrantedScopes = scopes
}
