package token

import (
	"encoding/json"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/internal/clientutil"
	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/joseutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

var inactiveToken = goidp.TokenInfo{IsActive: false}

func introspect(ctx oidc.Context, req introspectionRequest) (goidp.TokenInfo, error) {
	client, err := clientutil.Authenticated(ctx)
	if err != nil {
		return goidp.TokenInfo{}, err
	}

	if req.token == "" {
		return goidp.TokenInfo{}, goidp.NewError(goidp.ErrorCodeInvalidRequest, "token is required")
	}

	info := IntrospectionInfo(ctx, req.token, req.tokenTypeHint)

	// A client can only introspect its own tokens. Tokens of other clients
	// read as inactive, the same as tokens that never existed.
	if info.ClientID != client.ID {
		return inactiveToken, nil
	}

	return info, nil
}

// IntrospectionInfo resolves a token to its introspection result. Tokens that
// are unknown, expired or revoked resolve to the inactive result, with no
// error distinguishing the cases. Refresh tokens are recognized by a storage
// lookup, not by their shape, so an opaque access token configured with the
// same length as a refresh token still resolves as an access token.
func IntrospectionInfo(ctx oidc.Context, token string, hint goidp.TokenTypeHint) goidp.TokenInfo {
	if hint != goidp.TokenHintAccess {
		if grantSession, err := ctx.GrantSessionByRefreshToken(token); err == nil {
			return refreshTokenInfo(grantSession, token)
		}
		if hint == goidp.TokenHintRefresh {
			return inactiveToken
		}
	}

	return accessTokenInfo(ctx, token)
}

func accessTokenInfo(ctx oidc.Context, token string) goidp.TokenInfo {
	tokenID, ok := extractTokenID(ctx, token)
	if !ok {
		return inactiveToken
	}

	grantSession, err := ctx.GrantSessionByTokenID(tokenID)
	if err != nil || grantSession.Revoked || grantSession.HasLastTokenExpired() {
		return inactiveToken
	}

	return goidp.TokenInfo{
		IsActive:           true,
		TokenUsage:         goidp.TokenHintAccess,
		Scopes:             grantSession.ActiveScopes,
		ClientID:           grantSession.ClientID,
		Subject:            grantSession.Subject,
		ExpiresAtTimestamp: grantSession.LastTokenIssuedAtTimestamp + grantSession.TokenLifetimeSecs,
	}
}

func refreshTokenInfo(grantSession *goidp.GrantSession, token string) goidp.TokenInfo {
	if grantSession.Revoked || grantSession.IsExpired() ||
		grantSession.RefreshToken != token {
		return inactiveToken
	}

	return goidp.TokenInfo{
		IsActive:           true,
		TokenUsage:         goidp.TokenHintRefresh,
		Scopes:             grantSession.GrantedScopes,
		ClientID:           grantSession.ClientID,
		Subject:            grantSession.Subject,
		ExpiresAtTimestamp: grantSession.ExpiresAtTimestamp,
	}
}

// extractTokenID maps a token to the id its grant session is stored under.
// Opaque tokens are stored under their thumbprint; for JWT tokens the
// signature is verified against the tenant keys and the jti claim is
// extracted.
func extractTokenID(ctx oidc.Context, token string) (string, bool) {
	if !joseutil.IsJWS(token) {
		return hashutil.Thumbprint(token), token != ""
	}

	parsedToken, err := jose.ParseSigned(token, ctx.SigAlgs())
	if err != nil {
		return "", false
	}

	if len(parsedToken.Signatures) != 1 {
		return "", false
	}

	keys := ctx.PrivateJWKS.Key(parsedToken.Signatures[0].Header.KeyID)
	if len(keys) == 0 {
		return "", false
	}

	payload, err := parsedToken.Verify(keys[0].Public())
	if err != nil {
		return "", false
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", false
	}

	tokenID, ok := claims[goidp.ClaimTokenID].(string)
	return tokenID, ok && tokenID != ""
}
