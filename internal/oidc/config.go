package oidc

import (
	"log/slog"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

// Configuration is the read-mostly snapshot of a tenant. It is built once
// during provider setup and injected into every request handler, so handlers
// never touch process-wide mutable state.
type Configuration struct {
	// TenantID is the path segment the tenant is served under.
	TenantID string
	// Host is the scheme and authority the server runs at. Together with the
	// tenant id it forms the issuer.
	Host string

	ClientManager        goidp.ClientManager
	AuthnSessionManager  goidp.AuthnSessionManager
	DeviceSessionManager goidp.DeviceSessionManager
	GrantSessionManager  goidp.GrantSessionManager
	UserManager          goidp.UserManager

	// PrivateJWKS contains the tenant JWKS with private and public
	// information. When exposing it, the private information is removed.
	PrivateJWKS jose.JSONWebKeySet
	// ActiveKeyID selects the key new tokens are signed with. Rotating keys
	// means adding a new key to PrivateJWKS and pointing ActiveKeyID at it;
	// old keys stay servable while tokens signed with them are alive.
	ActiveKeyID string

	Scopes            string
	GrantTypes        []goidp.GrantType
	ResponseTypes     []goidp.ResponseType
	TokenAuthnMethods []goidp.ClientAuthnType
	StaticClients     []*goidp.Client

	TokenFormat       goidp.TokenFormat
	OpaqueTokenLength int

	AuthnSessionTimeoutSecs       int
	DeviceSessionTimeoutSecs      int
	TokenLifetimeSecs             int
	RefreshTokenLifetimeSecs      int
	IDTokenLifetimeSecs           int
	RefreshTokenRotationIsEnabled bool
	// JWKSCacheMaxAgeSecs is sent as Cache-Control max-age on the jwks
	// endpoint. It must stay below the key rotation period.
	JWKSCacheMaxAgeSecs int

	Logger          *slog.Logger
	NotifyErrorFunc goidp.NotifyErrorFunc

	EndpointPrefix        string
	EndpointWellKnown     string
	EndpointJWKS          string
	EndpointAuthorize     string
	EndpointToken         string
	EndpointIntrospection string
	EndpointDevice        string
	EndpointUserInfo      string
	EndpointAccount       string
	EndpointLogout        string
}
