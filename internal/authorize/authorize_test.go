package authorize

import (
	"errors"
	"net/http"
	"testing"

	"github.com/idpsrv/go-idp/internal/oidctest"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAuth(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	req := request{
		ClientID: oidctest.ClientID,
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid profile",
			State:        "random_state",
		},
	}

	// When.
	resp, err := initAuth(ctx, req)

	// Then.
	require.Nil(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, goidp.StatusPending, resp.Status)

	sessions := oidctest.AuthnSessions(t, ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, resp.ID, sessions[0].ID)
	assert.Equal(t, oidctest.ClientID, sessions[0].ClientID)
	assert.Empty(t, sessions[0].Subject, "the end user is not authenticated yet")
}

func TestInitAuth_UnregisteredRedirectURI(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	req := request{
		ClientID: oidctest.ClientID,
		AuthorizationParameters: goidp.AuthorizationParameters{
			// A sub path of the registered URI. Matching is exact, so this
			// must be rejected without redirecting.
			RedirectURI:  oidctest.ClientRedirectURI + "/extra",
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid",
		},
	}

	// When.
	_, err := initAuth(ctx, req)

	// Then.
	require.NotNil(t, err)

	var redirectErr redirectionError
	assert.False(t, errors.As(err, &redirectErr), "redirect uri errors must never be redirected")

	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidRedirectURI, idpErr.Code)
	assert.Empty(t, oidctest.AuthnSessions(t, ctx), "no session should be staged")
}

func TestInitAuth_UnsupportedResponseType(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	req := request{
		ClientID: oidctest.ClientID,
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: "token",
			Scopes:       "openid",
			State:        "random_state",
		},
	}

	// When.
	_, err := initAuth(ctx, req)

	// Then. The redirect uri is registered, so the error is redirectable.
	var redirectErr redirectionError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, goidp.ErrorCodeUnsupportedResponseType, redirectErr.code)
	assert.Equal(t, "random_state", redirectErr.State)
}

func TestInitAuth_InvalidScope(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	req := request{
		ClientID: oidctest.ClientID,
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid admin",
		},
	}

	// When.
	_, err := initAuth(ctx, req)

	// Then.
	var redirectErr redirectionError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, goidp.ErrorCodeInvalidScope, redirectErr.code)
}

func TestInitAuth_OfflineAccessRequiresRefreshGrant(t *testing.T) {
	// Given. The client is not allowed the refresh token grant.
	ctx := oidctest.NewContext(t)
	client := oidctest.NewClient(t)
	client.GrantTypes = []goidp.GrantType{goidp.GrantAuthorizationCode}
	require.Nil(t, ctx.ClientManager.Save(nil, client))

	req := validRequest()
	req.Scopes = "openid offline_access"

	// When.
	_, err := initAuth(ctx, req)

	// Then.
	var redirectErr redirectionError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, goidp.ErrorCodeInvalidScope, redirectErr.code)
}

func TestInitAuth_InvalidClientID(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	req := request{
		ClientID: "unknown_client",
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid",
		},
	}

	// When.
	_, err := initAuth(ctx, req)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidClient, idpErr.Code)
}

func TestAuthenticateUser(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)

	// When.
	err = authenticateUser(ctx, resp.ID, passwordAuthnRequest{
		Username: oidctest.Username,
		Password: oidctest.UserPassword,
	})

	// Then.
	require.Nil(t, err)
	session, err := ctx.AuthnSessionByID(resp.ID)
	require.Nil(t, err)
	assert.Equal(t, oidctest.UserID, session.Subject)
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)

	// When.
	err = authenticateUser(ctx, resp.ID, passwordAuthnRequest{
		Username: oidctest.Username,
		Password: "wrong_password",
	})

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeAccessDenied, idpErr.Code)
	assert.Equal(t, http.StatusUnauthorized, idpErr.StatusCode())
}

func TestGrantAuth(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)
	require.Nil(t, authenticateUser(ctx, resp.ID, passwordAuthnRequest{
		Username: oidctest.Username,
		Password: oidctest.UserPassword,
	}))

	// When.
	grantResp, err := grantAuth(ctx, resp.ID)

	// Then.
	require.Nil(t, err)
	assert.Contains(t, grantResp.RedirectURI, oidctest.ClientRedirectURI)
	assert.Contains(t, grantResp.RedirectURI, "code=")
	assert.Contains(t, grantResp.RedirectURI, "state=random_state")

	session, err := ctx.AuthnSessionByID(resp.ID)
	require.Nil(t, err)
	assert.Equal(t, goidp.StatusGranted, session.Status)
	assert.Len(t, session.AuthCode, authCodeLength)
}

func TestGrantAuth_WithoutAuthentication(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)

	// When.
	_, err = grantAuth(ctx, resp.ID)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeAccessDenied, idpErr.Code)
}

func TestGrantAuth_ExpiredSession(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)

	session, err := ctx.AuthnSessionByID(resp.ID)
	require.Nil(t, err)
	session.ExpiresAtTimestamp = timeutil.TimestampNow() - 1
	require.Nil(t, ctx.SaveAuthnSession(session))

	// When.
	_, err = grantAuth(ctx, resp.ID)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeSessionExpired, idpErr.Code)
	assert.Empty(t, oidctest.AuthnSessions(t, ctx), "expired sessions are removed on read")
}

func TestDenyAuth(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)
	resp, err := initAuth(ctx, validRequest())
	require.Nil(t, err)

	// When.
	denyResp, err := denyAuth(ctx, resp.ID)

	// Then.
	require.Nil(t, err)
	assert.Contains(t, denyResp.RedirectURI, "error=access_denied")
	assert.Empty(t, oidctest.AuthnSessions(t, ctx))
}

func TestNewRedirectionError(t *testing.T) {
	// Given.
	params := goidp.AuthorizationParameters{
		RedirectURI: oidctest.ClientRedirectURI,
		State:       "random_state",
	}

	// When.
	err := newRedirectionError(goidp.ErrorCodeInvalidScope, "invalid scope", params)

	// Then.
	assert.EqualError(t, err, "invalid_scope invalid scope")

	var redirectErr redirectionError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, goidp.ErrorCodeInvalidScope, redirectErr.code)
	assert.Equal(t, "random_state", redirectErr.State)

	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidScope, idpErr.Code)
}

func validRequest() request {
	return request{
		ClientID: oidctest.ClientID,
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  oidctest.ClientRedirectURI,
			ResponseType: goidp.ResponseTypeCode,
			Scopes:       "openid profile",
			State:        "random_state",
		},
	}
}
