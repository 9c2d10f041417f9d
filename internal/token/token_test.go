package token

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/oidctest"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGrant_AuthorizationCodeGrant(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	session := newGrantedAuthnSession(t, ctx)

	req := request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	}

	// When.
	resp, err := generateGrant(ctx, req)

	// Then.
	require.Nil(t, err)
	assert.Equal(t, goidp.TokenTypeBearer, resp.TokenType)
	assert.NotEmpty(t, resp.RefreshToken, "the client is allowed the refresh token grant")
	assert.NotEmpty(t, resp.IDToken, "openid was granted, an id token is due")

	claims := oidctest.SafeClaims(t, resp.AccessToken, oidctest.ServerPrivateJWK)
	assert.Equal(t, oidctest.Host+"/"+oidctest.TenantID, claims["iss"])
	assert.Equal(t, oidctest.UserID, claims["sub"])
	assert.Equal(t, oidctest.ClientID, claims["client_id"])
	assert.Equal(t, "openid profile", claims["scope"])

	idTokenClaims := oidctest.SafeClaims(t, resp.IDToken, oidctest.ServerPrivateJWK)
	assert.Equal(t, "random_nonce", idTokenClaims["nonce"])
	assert.NotEmpty(t, idTokenClaims["at_hash"])

	grantSessions := oidctest.GrantSessions(t, ctx)
	require.Len(t, grantSessions, 1)
	assert.Equal(t, session.AuthCode, grantSessions[0].AuthCode)
	assert.Equal(t, oidctest.UserID, grantSessions[0].Subject)
}

func TestGenerateGrant_CodeReplayRevokesGrant(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	session := newGrantedAuthnSession(t, ctx)
	req := request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	}
	_, err := generateGrant(ctx, req)
	require.Nil(t, err)
	require.Len(t, oidctest.GrantSessions(t, ctx), 1)

	// When. The same code is submitted again.
	_, err = generateGrant(ctx, req)

	// Then. The replay fails and the grant issued on the first submission is
	// revoked with it.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidGrant, idpErr.Code)
	assert.Empty(t, oidctest.GrantSessions(t, ctx))
}

func TestGenerateGrant_RedirectURIMismatch(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	session := newGrantedAuthnSession(t, ctx)

	req := request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI + "/extra",
	}

	// When.
	_, err := generateGrant(ctx, req)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidGrant, idpErr.Code)
}

func TestGenerateGrant_CodeOfAnotherClient(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	session := newGrantedAuthnSession(t, ctx)
	session.ClientID = "another_client"
	require.Nil(t, ctx.SaveAuthnSession(session))

	req := request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	}

	// When.
	_, err := generateGrant(ctx, req)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidGrant, idpErr.Code)
}

func TestGenerateGrant_UnsupportedGrantType(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))

	// When.
	_, err := generateGrant(ctx, request{grantType: "password"})

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeUnsupportedGrantType, idpErr.Code)
}

func TestGenerateGrant_ExpiredCode(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	session := newGrantedAuthnSession(t, ctx)
	session.ExpiresAtTimestamp = timeutil.TimestampNow() - 1
	require.Nil(t, ctx.SaveAuthnSession(session))

	req := request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	}

	// When.
	_, err := generateGrant(ctx, req)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidGrant, idpErr.Code)
}

// newClientAuthnContext builds a context whose request carries the test
// client's credentials as a form post.
func newClientAuthnContext(t *testing.T, config *oidc.Configuration) oidc.Context {
	form := url.Values{}
	form.Set("client_id", oidctest.ClientID)
	form.Set("client_secret", oidctest.ClientSecret)

	req := httptest.NewRequest(http.MethodPost, "/test_tenant/v1/tokens",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return oidc.NewContext(httptest.NewRecorder(), req, config)
}

func newGrantedAuthnSession(t *testing.T, ctx oidc.Context) *goidp.AuthnSession {
	now := timeutil.TimestampNow()
	session := &goidp.AuthnSession{
		ID:                 "granted_session",
		TenantID:           oidctest.TenantID,
		ClientID:           oidctest.ClientID,
		Status:             goidp.StatusGranted,
		Subject:            oidctest.UserID,
		GrantedScopes:      "openid profile",
		AuthCode:           "random_auth_code",
		CreatedAtTimestamp: now,
		ExpiresAtTimestamp: now + 60,
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid profile",
			Nonce:        "random_nonce",
		},
	}
	require.Nil(t, ctx.SaveAuthnSession(session))
	return session
}
