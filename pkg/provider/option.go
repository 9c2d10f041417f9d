package provider

import (
	"log/slog"
	"strings"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

const (
	defaultSessionStoreMaxSize      = 1000
	defaultOpaqueTokenLength        = 30
	defaultScopes                   = "openid profile email offline_access"
	defaultAuthnSessionTimeoutSecs  = 600
	defaultDeviceSessionTimeoutSecs = 300
	defaultTokenLifetimeSecs        = 300
	defaultRefreshTokenLifetimeSecs = 86400
	defaultIDTokenLifetimeSecs      = 600
	defaultJWKSCacheMaxAgeSecs      = 3600

	defaultEndpointWellKnown     = "/.well-known/openid-configuration"
	defaultEndpointJWKS          = "/jwks"
	defaultEndpointAuthorize     = "/authorizations"
	defaultEndpointToken         = "/tokens"
	defaultEndpointIntrospection = "/tokens/introspection"
	defaultEndpointDevice        = "/authentication-devices"
	defaultEndpointUserInfo      = "/userinfo"
	defaultEndpointAccount       = "/me"
	defaultEndpointLogout        = "/logout"
)

type ProviderOption func(*Provider) error

func WithClientStorage(manager goidp.ClientManager) ProviderOption {
	return func(p *Provider) error {
		p.config.ClientManager = manager
		return nil
	}
}

func WithAuthnSessionStorage(manager goidp.AuthnSessionManager) ProviderOption {
	return func(p *Provider) error {
		p.config.AuthnSessionManager = manager
		return nil
	}
}

func WithDeviceSessionStorage(manager goidp.DeviceSessionManager) ProviderOption {
	return func(p *Provider) error {
		p.config.DeviceSessionManager = manager
		return nil
	}
}

func WithGrantSessionStorage(manager goidp.GrantSessionManager) ProviderOption {
	return func(p *Provider) error {
		p.config.GrantSessionManager = manager
		return nil
	}
}

func WithUserStorage(manager goidp.UserManager) ProviderOption {
	return func(p *Provider) error {
		p.config.UserManager = manager
		return nil
	}
}

// WithStaticClient adds a client that is always available and cannot be
// modified at runtime.
func WithStaticClient(client *goidp.Client) ProviderOption {
	return func(p *Provider) error {
		p.config.StaticClients = append(p.config.StaticClients, client)
		return nil
	}
}

func WithScopes(scopes ...string) ProviderOption {
	return func(p *Provider) error {
		p.config.Scopes = strings.Join(scopes, " ")
		return nil
	}
}

func WithGrantTypes(grantTypes ...goidp.GrantType) ProviderOption {
	return func(p *Provider) error {
		p.config.GrantTypes = grantTypes
		return nil
	}
}

func WithResponseTypes(responseTypes ...goidp.ResponseType) ProviderOption {
	return func(p *Provider) error {
		p.config.ResponseTypes = responseTypes
		return nil
	}
}

func WithTokenAuthnMethods(methods ...goidp.ClientAuthnType) ProviderOption {
	return func(p *Provider) error {
		p.config.TokenAuthnMethods = methods
		return nil
	}
}

// WithOpaqueTokens makes access tokens opaque random strings instead of
// JWTs. Opaque tokens can only be checked through the introspection endpoint.
func WithOpaqueTokens(length int) ProviderOption {
	return func(p *Provider) error {
		p.config.TokenFormat = goidp.TokenFormatOpaque
		p.config.OpaqueTokenLength = length
		return nil
	}
}

// WithActiveKeyID selects the key new tokens are signed with. Keys no longer
// active stay in the JWKS so old tokens remain verifiable.
func WithActiveKeyID(keyID string) ProviderOption {
	return func(p *Provider) error {
		p.config.ActiveKeyID = keyID
		return nil
	}
}

func WithTokenLifetime(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.TokenLifetimeSecs = secs
		return nil
	}
}

func WithRefreshTokenLifetime(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.RefreshTokenLifetimeSecs = secs
		return nil
	}
}

func WithIDTokenLifetime(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.IDTokenLifetimeSecs = secs
		return nil
	}
}

func WithAuthnSessionTimeout(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.AuthnSessionTimeoutSecs = secs
		return nil
	}
}

func WithDeviceSessionTimeout(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.DeviceSessionTimeoutSecs = secs
		return nil
	}
}

// WithoutRefreshTokenRotation keeps refresh tokens stable across uses.
// Rotated token reuse detection does not apply in this mode.
func WithoutRefreshTokenRotation() ProviderOption {
	return func(p *Provider) error {
		p.config.RefreshTokenRotationIsEnabled = false
		p.refreshTokenRotationWasSet = true
		return nil
	}
}

func WithJWKSCacheMaxAge(secs int) ProviderOption {
	return func(p *Provider) error {
		p.config.JWKSCacheMaxAgeSecs = secs
		return nil
	}
}

// WithPathPrefix overrides the default "/{tenantID}/v1" route prefix.
func WithPathPrefix(prefix string) ProviderOption {
	return func(p *Provider) error {
		p.config.EndpointPrefix = prefix
		return nil
	}
}

func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) error {
		p.config.Logger = logger
		return nil
	}
}

// WithNotifyErrorFunc sets a hook invoked with every error returned to a
// client.
func WithNotifyErrorFunc(f goidp.NotifyErrorFunc) ProviderOption {
	return func(p *Provider) error {
		p.config.NotifyErrorFunc = f
		return nil
	}
}
