// Package provider assembles tenants into runnable OpenID providers.
package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/internal/authorize"
	"github.com/idpsrv/go-idp/internal/device"
	"github.com/idpsrv/go-idp/internal/discovery"
	"github.com/idpsrv/go-idp/internal/logout"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/storage"
	"github.com/idpsrv/go-idp/internal/token"
	"github.com/idpsrv/go-idp/internal/userinfo"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

// Provider is a single tenant of the identity provider. Its configuration is
// frozen once New returns, so a running provider can be shared freely across
// goroutines.
type Provider struct {
	config *oidc.Configuration
	// refreshTokenRotationWasSet distinguishes an explicit opt out from the
	// zero value, since rotation defaults to enabled.
	refreshTokenRotationWasSet bool
}

// New creates a provider for one tenant. By default all clients, users and
// sessions are stored in memory, access tokens are JWTs signed with the first
// key of the JWKS, and refresh tokens rotate on every use.
func New(
	tenantID string,
	host string,
	privateJWKS jose.JSONWebKeySet,
	opts ...ProviderOption,
) (
	Provider,
	error,
) {
	p := Provider{
		config: &oidc.Configuration{
			TenantID:    tenantID,
			Host:        host,
			PrivateJWKS: privateJWKS,
		},
	}

	for _, opt := range opts {
		if err := opt(&p); err != nil {
			return Provider{}, err
		}
	}

	p.setDefaults()

	if err := p.validate(); err != nil {
		return Provider{}, err
	}

	return p, nil
}

// TenantID returns the path segment the tenant is served under.
func (p Provider) TenantID() string {
	return p.config.TenantID
}

// Issuer returns the identifier written to the iss claim of tokens the
// tenant signs.
func (p Provider) Issuer() string {
	return p.config.Host + "/" + p.config.TenantID
}

// Handler returns an HTTP handler with all the tenant endpoints. The routes
// are prefixed with the tenant id, so handlers of different tenants can be
// mounted on the same server.
func (p Provider) Handler(middlewares ...goidp.MiddlewareFunc) http.Handler {
	server := http.NewServeMux()
	p.registerHandlers(server, middlewares...)
	return server
}

func (p Provider) registerHandlers(server *http.ServeMux, middlewares ...goidp.MiddlewareFunc) {
	discovery.RegisterHandlers(server, p.config, middlewares...)
	authorize.RegisterHandlers(server, p.config, middlewares...)
	device.RegisterHandlers(server, p.config, middlewares...)
	token.RegisterHandlers(server, p.config, middlewares...)
	logout.RegisterHandlers(server, p.config, middlewares...)
	userinfo.RegisterHandlers(server, p.config, middlewares...)
}

func (p Provider) Run(address string, middlewares ...goidp.MiddlewareFunc) error {
	return http.ListenAndServe(address, p.Handler(middlewares...))
}

// TokenInfo resolves the access token of the request, so applications mounted
// next to the provider can protect their own endpoints with its tokens.
func (p Provider) TokenInfo(w http.ResponseWriter, r *http.Request) (goidp.TokenInfo, error) {
	ctx := oidc.NewContext(w, r, p.config)
	accessToken, ok := ctx.BearerToken()
	if !ok {
		return goidp.TokenInfo{}, errors.New("no token informed")
	}

	info := token.IntrospectionInfo(ctx, accessToken, goidp.TokenHintAccess)
	if !info.IsActive {
		return goidp.TokenInfo{}, errors.New("the token is not active")
	}

	return info, nil
}

// SaveUser is a shortcut to create users in the user storage, typically
// during setup.
func (p Provider) SaveUser(ctx context.Context, user *goidp.User) error {
	return p.config.UserManager.Save(ctx, user)
}

// Client is a shortcut to fetch clients from the client storage.
func (p Provider) Client(ctx context.Context, id string) (*goidp.Client, error) {
	for _, staticClient := range p.config.StaticClients {
		if staticClient.ID == id {
			return staticClient, nil
		}
	}

	return p.config.ClientManager.Client(ctx, id)
}

func (p *Provider) setDefaults() {
	config := p.config

	if config.ClientManager == nil {
		config.ClientManager = storage.NewClientManager()
	}
	if config.AuthnSessionManager == nil {
		config.AuthnSessionManager = storage.NewAuthnSessionManager(defaultSessionStoreMaxSize)
	}
	if config.DeviceSessionManager == nil {
		config.DeviceSessionManager = storage.NewDeviceSessionManager(defaultSessionStoreMaxSize)
	}
	if config.GrantSessionManager == nil {
		config.GrantSessionManager = storage.NewGrantSessionManager()
	}
	if config.UserManager == nil {
		config.UserManager = storage.NewUserManager()
	}

	if config.ActiveKeyID == "" && len(config.PrivateJWKS.Keys) != 0 {
		config.ActiveKeyID = config.PrivateJWKS.Keys[0].KeyID
	}

	config.Scopes = nonZeroOrDefault(config.Scopes, defaultScopes)
	if config.GrantTypes == nil {
		config.GrantTypes = []goidp.GrantType{goidp.GrantAuthorizationCode, goidp.GrantRefreshToken}
	}
	if config.ResponseTypes == nil {
		config.ResponseTypes = []goidp.ResponseType{goidp.ResponseTypeCode}
	}
	if config.TokenAuthnMethods == nil {
		config.TokenAuthnMethods = []goidp.ClientAuthnType{
			goidp.ClientAuthnSecretBasic,
			goidp.ClientAuthnSecretPost,
		}
	}

	config.TokenFormat = nonZeroOrDefault(config.TokenFormat, goidp.TokenFormatJWT)
	config.OpaqueTokenLength = nonZeroOrDefault(config.OpaqueTokenLength, defaultOpaqueTokenLength)

	config.AuthnSessionTimeoutSecs = nonZeroOrDefault(config.AuthnSessionTimeoutSecs, defaultAuthnSessionTimeoutSecs)
	config.DeviceSessionTimeoutSecs = nonZeroOrDefault(config.DeviceSessionTimeoutSecs, defaultDeviceSessionTimeoutSecs)
	config.TokenLifetimeSecs = nonZeroOrDefault(config.TokenLifetimeSecs, defaultTokenLifetimeSecs)
	config.RefreshTokenLifetimeSecs = nonZeroOrDefault(config.RefreshTokenLifetimeSecs, defaultRefreshTokenLifetimeSecs)
	config.IDTokenLifetimeSecs = nonZeroOrDefault(config.IDTokenLifetimeSecs, defaultIDTokenLifetimeSecs)
	config.JWKSCacheMaxAgeSecs = nonZeroOrDefault(config.JWKSCacheMaxAgeSecs, defaultJWKSCacheMaxAgeSecs)
	if !p.refreshTokenRotationWasSet {
		config.RefreshTokenRotationIsEnabled = true
	}

	config.EndpointPrefix = nonZeroOrDefault(config.EndpointPrefix, "/"+config.TenantID+"/v1")
	config.EndpointWellKnown = nonZeroOrDefault(config.EndpointWellKnown, defaultEndpointWellKnown)
	config.EndpointJWKS = nonZeroOrDefault(config.EndpointJWKS, defaultEndpointJWKS)
	config.EndpointAuthorize = nonZeroOrDefault(config.EndpointAuthorize, defaultEndpointAuthorize)
	config.EndpointToken = nonZeroOrDefault(config.EndpointToken, defaultEndpointToken)
	config.EndpointIntrospection = nonZeroOrDefault(config.EndpointIntrospection, defaultEndpointIntrospection)
	config.EndpointDevice = nonZeroOrDefault(config.EndpointDevice, defaultEndpointDevice)
	config.EndpointUserInfo = nonZeroOrDefault(config.EndpointUserInfo, defaultEndpointUserInfo)
	config.EndpointAccount = nonZeroOrDefault(config.EndpointAccount, defaultEndpointAccount)
	config.EndpointLogout = nonZeroOrDefault(config.EndpointLogout, defaultEndpointLogout)
}

func (p Provider) validate() error {
	config := p.config

	if config.TenantID == "" || strings.Contains(config.TenantID, "/") {
		return errors.New("the tenant id must be a single non empty path segment")
	}

	parsedHost, err := url.Parse(config.Host)
	if err != nil || (parsedHost.Scheme != "http" && parsedHost.Scheme != "https") ||
		parsedHost.Host == "" {
		return errors.New("the host must be a valid http(s) url")
	}

	if len(config.PrivateJWKS.Keys) == 0 {
		return errors.New("the private jwks must contain at least one key")
	}
	for _, jwk := range config.PrivateJWKS.Keys {
		if jwk.KeyID == "" || jwk.Algorithm == "" {
			return errors.New("all keys in the private jwks must have a key id and an algorithm")
		}
	}
	if len(config.PrivateJWKS.Key(config.ActiveKeyID)) == 0 {
		return errors.New("the active key id must reference a key in the private jwks")
	}

	return nil
}

func nonZeroOrDefault[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
