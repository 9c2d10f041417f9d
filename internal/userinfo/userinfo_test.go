package userinfo

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/oidctest"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accessToken = "opaque_access_token"

func TestUserInfo(t *testing.T) {
	// Given.
	ctx := newBearerContext(t, accessToken)
	saveActiveGrant(t, ctx, "openid profile email")

	// When.
	claims, err := userInfo(ctx)

	// Then.
	require.Nil(t, err)
	assert.Equal(t, oidctest.UserID, claims["sub"])
	assert.Equal(t, "Test User", claims["name"])
	assert.Equal(t, "test@example.com", claims["email"])
	assert.Equal(t, true, claims["email_verified"])
}

func TestUserInfo_ClaimsFollowScopes(t *testing.T) {
	// Given. The token has no email scope.
	ctx := newBearerContext(t, accessToken)
	saveActiveGrant(t, ctx, "openid profile")

	// When.
	claims, err := userInfo(ctx)

	// Then.
	require.Nil(t, err)
	assert.Equal(t, "Test User", claims["name"])
	assert.NotContains(t, claims, "email")
	assert.NotContains(t, claims, "email_verified")
}

func TestUserInfo_MissingOpenIDScope(t *testing.T) {
	// Given.
	ctx := newBearerContext(t, accessToken)
	saveActiveGrant(t, ctx, "profile")

	// When.
	_, err := userInfo(ctx)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeAccessDenied, idpErr.Code)
}

func TestUserInfo_NoToken(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)

	// When.
	_, err := userInfo(ctx)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidToken, idpErr.Code)
}

func TestUserInfo_InactiveToken(t *testing.T) {
	// Given.
	ctx := newBearerContext(t, "unknown_token")

	// When.
	_, err := userInfo(ctx)

	// Then.
	var idpErr goidp.Error
	require.True(t, errors.As(err, &idpErr))
	assert.Equal(t, goidp.ErrorCodeInvalidToken, idpErr.Code)
}

func TestDeleteAccount(t *testing.T) {
	// Given.
	ctx := newBearerContext(t, accessToken)
	saveActiveGrant(t, ctx, "openid profile")
	require.Nil(t, ctx.SaveGrantSession(&goidp.GrantSession{
		ID: "other_grant", Subject: oidctest.UserID, ClientID: "another_client",
	}))

	// When.
	err := deleteAccount(ctx)

	// Then. The user and every grant they gave are gone, regardless of the
	// client.
	require.Nil(t, err)
	assert.Empty(t, oidctest.GrantSessions(t, ctx))
	_, err = ctx.User(oidctest.UserID)
	assert.NotNil(t, err)
}

func newBearerContext(t *testing.T, token string) oidc.Context {
	config := oidctest.NewConfig(t)
	req := httptest.NewRequest(http.MethodGet, "/test_tenant/v1/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return oidc.NewContext(httptest.NewRecorder(), req, config)
}

func saveActiveGrant(t *testing.T, ctx oidc.Context, activeScopes string) {
	now := timeutil.TimestampNow()
	require.Nil(t, ctx.SaveGrantSession(&goidp.GrantSession{
		ID:                         "test_grant_session",
		TokenID:                    hashutil.Thumbprint(accessToken),
		Subject:                    oidctest.UserID,
		TenantID:                   oidctest.TenantID,
		ClientID:                   oidctest.ClientID,
		GrantedScopes:              "openid profile email",
		ActiveScopes:               activeScopes,
		TokenLifetimeSecs:          60,
		LastTokenIssuedAtTimestamp: now,
		CreatedAtTimestamp:         now,
		ExpiresAtTimestamp:         now + 600,
	}))
}
