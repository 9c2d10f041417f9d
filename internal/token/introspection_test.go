package token

import (
	"testing"

	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/oidctest"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospect_AccessToken(t *testing.T) {
	// Given.
	config := oidctest.NewConfig(t)
	ctx := newClientAuthnContext(t, config)
	session := newGrantedAuthnSession(t, ctx)
	resp, err := generateGrant(ctx, request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	})
	require.Nil(t, err)

	// When.
	info, err := introspect(ctx, introspectionRequest{token: resp.AccessToken})

	// Then.
	require.Nil(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, goidp.TokenHintAccess, info.TokenUsage)
	assert.Equal(t, oidctest.ClientID, info.ClientID)
	assert.Equal(t, oidctest.UserID, info.Subject)
	assert.Equal(t, "openid profile", info.Scopes)
}

func TestIntrospect_RefreshToken(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	grantSession := newRefreshableGrantSession(t, ctx, "random_refresh_token")

	// When.
	info, err := introspect(ctx, introspectionRequest{
		token:         "random_refresh_token",
		tokenTypeHint: goidp.TokenHintRefresh,
	})

	// Then.
	require.Nil(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, goidp.TokenHintRefresh, info.TokenUsage)
	assert.Equal(t, grantSession.ExpiresAtTimestamp, info.ExpiresAtTimestamp)
}

func TestIntrospect_TokenOfAnotherClient(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	grantSession := newRefreshableGrantSession(t, ctx, "random_refresh_token")
	grantSession.ClientID = "another_client"
	require.Nil(t, ctx.SaveGrantSession(grantSession))

	// When.
	info, err := introspect(ctx, introspectionRequest{
		token:         "random_refresh_token",
		tokenTypeHint: goidp.TokenHintRefresh,
	})

	// Then. The result is indistinguishable from a token that never existed.
	require.Nil(t, err)
	assert.False(t, info.IsActive)
	assert.Empty(t, info.ClientID)
	assert.Empty(t, info.Subject)
	assert.Empty(t, info.Scopes)
}

func TestIntrospect_UnknownToken(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))

	// When.
	info, err := introspect(ctx, introspectionRequest{token: "unknown_token"})

	// Then.
	require.Nil(t, err)
	assert.False(t, info.IsActive)
}

func TestIntrospect_RevokedGrant(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	grantSession := newRefreshableGrantSession(t, ctx, "random_refresh_token")
	grantSession.Revoked = true
	require.Nil(t, ctx.SaveGrantSession(grantSession))

	// When.
	info, err := introspect(ctx, introspectionRequest{
		token:         "random_refresh_token",
		tokenTypeHint: goidp.TokenHintRefresh,
	})

	// Then.
	require.Nil(t, err)
	assert.False(t, info.IsActive)
}

func TestIntrospect_RotatedOutRefreshToken(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	grantSession := newRefreshableGrantSession(t, ctx, "current_token")
	grantSession.RotatedRefreshTokens = []string{"old_token"}
	require.Nil(t, ctx.SaveGrantSession(grantSession))

	// When.
	info, err := introspect(ctx, introspectionRequest{
		token:         "old_token",
		tokenTypeHint: goidp.TokenHintRefresh,
	})

	// Then.
	require.Nil(t, err)
	assert.False(t, info.IsActive)
}

func TestIntrospect_ExpiredAccessToken(t *testing.T) {
	// Given.
	ctx := newClientAuthnContext(t, oidctest.NewConfig(t))
	grantSession := newRefreshableGrantSession(t, ctx, "random_refresh_token")
	grantSession.TokenID = hashutil.Thumbprint("opaque_access_token")
	grantSession.LastTokenIssuedAtTimestamp = timeutil.TimestampNow() - 120
	require.Nil(t, ctx.SaveGrantSession(grantSession))

	// When.
	info, err := introspect(ctx, introspectionRequest{token: "opaque_access_token"})

	// Then.
	require.Nil(t, err)
	assert.False(t, info.IsActive)
}

func TestIntrospect_OpaqueAccessTokenWithRefreshTokenLength(t *testing.T) {
	// Given. Opaque access tokens sized exactly like refresh tokens.
	config := oidctest.NewConfig(t)
	config.TokenFormat = goidp.TokenFormatOpaque
	config.OpaqueTokenLength = refreshTokenLength
	ctx := newClientAuthnContext(t, config)
	session := newGrantedAuthnSession(t, ctx)
	resp, err := generateGrant(ctx, request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	})
	require.Nil(t, err)
	require.Len(t, resp.AccessToken, refreshTokenLength)

	// When. No hint is given.
	info, err := introspect(ctx, introspectionRequest{token: resp.AccessToken})

	// Then. The token still resolves as an access token.
	require.Nil(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, goidp.TokenHintAccess, info.TokenUsage)
}

func TestIntrospect_AfterKeyRotation(t *testing.T) {
	// Given. An access token signed with the original tenant key.
	config := oidctest.NewConfig(t)
	ctx := newClientAuthnContext(t, config)
	session := newGrantedAuthnSession(t, ctx)
	resp, err := generateGrant(ctx, request{
		grantType:         goidp.GrantAuthorizationCode,
		authorizationCode: session.AuthCode,
		redirectURI:       oidctest.ClientRedirectURI,
	})
	require.Nil(t, err)

	// When. A new key is added and activated while the old one stays in the
	// set.
	rotatedKeyID := "rotated_rsa256_key"
	config.PrivateJWKS.Keys = append(config.PrivateJWKS.Keys,
		oidctest.PrivateRS256JWK(t, rotatedKeyID))
	config.ActiveKeyID = rotatedKeyID

	info, err := introspect(ctx, introspectionRequest{token: resp.AccessToken})

	// Then. The old token stays valid, new tokens are signed with the new
	// key, and both keys remain published.
	require.Nil(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, goidp.TokenHintAccess, info.TokenUsage)

	newToken, err := makeToken(ctx, oidctest.UserID, oidctest.ClientID, "openid")
	require.Nil(t, err)
	assert.Equal(t, rotatedKeyID, newToken.KeyID)

	var keyIDs []string
	for _, key := range ctx.PublicJWKS().Keys {
		keyIDs = append(keyIDs, key.KeyID)
	}
	assert.Contains(t, keyIDs, oidctest.KeyID)
	assert.Contains(t, keyIDs, rotatedKeyID)
}

func TestIntrospect_NoClientCredentials(t *testing.T) {
	// Given.
	ctx := oidctest.NewContext(t)

	// When.
	_, err := introspect(ctx, introspectionRequest{token: "random_token"})

	// Then.
	assert.NotNil(t, err, "introspection requires client authentication")
}
