// Package oidctest contains the helpers shared by the package tests.
package oidctest

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/storage"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/require"
)

const (
	TenantID          string = "test_tenant"
	Host              string = "https://idp.example.com"
	KeyID             string = "test_rsa256_key"
	ClientID          string = "test_client_id"
	ClientSecret      string = "test_client_secret"
	ClientRedirectURI string = "https://client.example.com/callback"
	UserID            string = "test_user_id"
	Username          string = "test_user"
	UserPassword      string = "test_password"
)

var ServerPrivateJWK = PrivateRS256JWK(nil, KeyID)

func NewClient(_ *testing.T) *goidp.Client {
	return &goidp.Client{
		ID:           ClientID,
		HashedSecret: hashutil.BCryptHash(ClientSecret),
		ClientMetaInfo: goidp.ClientMetaInfo{
			Name:                   "Test Client",
			AuthnMethod:            goidp.ClientAuthnSecretPost,
			RedirectURIs:           []string{ClientRedirectURI},
			PostLogoutRedirectURIs: []string{"https://client.example.com/logged-out"},
			Scopes:                 "openid profile email offline_access",
			GrantTypes: []goidp.GrantType{
				goidp.GrantAuthorizationCode,
				goidp.GrantRefreshToken,
			},
			ResponseTypes: []goidp.ResponseType{
				goidp.ResponseTypeCode,
			},
		},
	}
}

func NewUser(_ *testing.T) *goidp.User {
	return &goidp.User{
		ID:             UserID,
		Username:       Username,
		HashedPassword: hashutil.BCryptHash(UserPassword),
		Claims: map[string]any{
			"name":           "Test User",
			"email":          "test@example.com",
			"email_verified": true,
		},
	}
}

func NewConfig(t *testing.T) *oidc.Configuration {
	config := &oidc.Configuration{
		TenantID:             TenantID,
		Host:                 Host,
		ClientManager:        storage.NewClientManager(),
		AuthnSessionManager:  storage.NewAuthnSessionManager(100),
		DeviceSessionManager: storage.NewDeviceSessionManager(100),
		GrantSessionManager:  storage.NewGrantSessionManager(),
		UserManager:          storage.NewUserManager(),
		PrivateJWKS:          jose.JSONWebKeySet{Keys: []jose.JSONWebKey{ServerPrivateJWK}},
		ActiveKeyID:          KeyID,
		Scopes:               "openid profile email offline_access",
		GrantTypes: []goidp.GrantType{
			goidp.GrantAuthorizationCode,
			goidp.GrantRefreshToken,
		},
		ResponseTypes: []goidp.ResponseType{
			goidp.ResponseTypeCode,
			goidp.ResponseTypeIDToken,
		},
		TokenAuthnMethods: []goidp.ClientAuthnType{
			goidp.ClientAuthnNone,
			goidp.ClientAuthnSecretPost,
			goidp.ClientAuthnSecretBasic,
		},
		TokenFormat:                   goidp.TokenFormatJWT,
		OpaqueTokenLength:             30,
		AuthnSessionTimeoutSecs:       60,
		DeviceSessionTimeoutSecs:      60,
		TokenLifetimeSecs:             60,
		RefreshTokenLifetimeSecs:      600,
		IDTokenLifetimeSecs:           60,
		RefreshTokenRotationIsEnabled: true,
		JWKSCacheMaxAgeSecs:           300,
		EndpointPrefix:                "/" + TenantID + "/v1",
		EndpointWellKnown:             "/.well-known/openid-configuration",
		EndpointJWKS:                  "/jwks",
		EndpointAuthorize:             "/authorizations",
		EndpointToken:                 "/tokens",
		EndpointIntrospection:         "/tokens/introspection",
		EndpointDevice:                "/authentication-devices",
		EndpointUserInfo:              "/userinfo",
		EndpointAccount:               "/me",
		EndpointLogout:                "/logout",
	}

	require.Nil(t, config.ClientManager.Save(nil, NewClient(t)), "could not create the test client")
	require.Nil(t, config.UserManager.Save(nil, NewUser(t)), "could not create the test user")

	return config
}

func NewContext(t *testing.T) oidc.Context {
	return oidc.NewContext(
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/test_tenant/v1/authorizations", nil),
		NewConfig(t),
	)
}

func AuthnSessions(_ *testing.T, ctx oidc.Context) []*goidp.AuthnSession {
	manager, _ := ctx.AuthnSessionManager.(*storage.AuthnSessionManager)
	sessions := make([]*goidp.AuthnSession, 0, len(manager.Sessions))
	for _, s := range manager.Sessions {
		sessions = append(sessions, s)
	}

	return sessions
}

func GrantSessions(_ *testing.T, ctx oidc.Context) []*goidp.GrantSession {
	manager, _ := ctx.GrantSessionManager.(*storage.GrantSessionManager)
	sessions := make([]*goidp.GrantSession, 0, len(manager.Sessions))
	for _, s := range manager.Sessions {
		sessions = append(sessions, s)
	}

	return sessions
}

func PrivateRS256JWK(_ *testing.T, keyID string) jose.JSONWebKey {
	privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	return jose.JSONWebKey{
		Key:       privateKey,
		KeyID:     keyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}
}

// SafeClaims parses a JWS and verifies its signature against the given
// private key before returning the claims.
func SafeClaims(t *testing.T, jws string, privateJWK jose.JSONWebKey) map[string]any {
	parsedToken, err := jwt.ParseSigned(jws,
		[]jose.SignatureAlgorithm{jose.SignatureAlgorithm(privateJWK.Algorithm)})
	require.Nil(t, err, "invalid JWT")

	var claims map[string]any
	err = parsedToken.Claims(privateJWK.Public().Key, &claims)
	require.Nil(t, err, "could not read claims")

	return claims
}
