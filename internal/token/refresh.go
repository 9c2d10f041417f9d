package token

import (
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func generateRefreshTokenGrant(
	ctx oidc.Context,
	req request,
	client *goidp.Client,
) (response, error) {
	if err := validateGrantType(ctx, client, goidp.GrantRefreshToken); err != nil {
		return response{}, err
	}

	if req.refreshToken == "" {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidRequest, "refresh_token is required")
	}

	grantSession, err := ctx.GrantSessionByRefreshToken(req.refreshToken)
	if err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInvalidGrant, "invalid refresh token", err)
	}

	if err := validateRefreshTokenGrant(ctx, req, client, grantSession); err != nil {
		return response{}, err
	}

	scopes := grantSession.GrantedScopes
	if req.scopes != "" {
		if !strutil.ContainsAllScopes(grantSession.GrantedScopes, req.scopes) {
			return response{}, goidp.NewError(goidp.ErrorCodeInvalidScope,
				"the scopes requested exceed the scopes granted")
		}
		scopes = req.scopes
	}

	token, err := makeToken(ctx, grantSession.Subject, client.ID, scopes)
	if err != nil {
		return response{}, err
	}

	if ctx.RefreshTokenRotationIsEnabled {
		newRefreshToken := strutil.Random(refreshTokenLength)
		if err := ctx.RotateRefreshToken(grantSession.ID, req.refreshToken, newRefreshToken); err != nil {
			// Another request rotated the token between the read and now.
			return response{}, goidp.WrapError(goidp.ErrorCodeInvalidGrant, "invalid refresh token", err)
		}
		// Storages backed by shared memory may already reflect the rotation
		// on the loaded session.
		if grantSession.RefreshToken != newRefreshToken {
			grantSession.RotatedRefreshTokens = append(grantSession.RotatedRefreshTokens, req.refreshToken)
			grantSession.RefreshToken = newRefreshToken
		}
	}

	grantSession.ActiveScopes = scopes
	grantSession.TokenID = token.ID
	grantSession.KeyID = token.KeyID
	grantSession.TokenLifetimeSecs = token.LifetimeSecs
	grantSession.LastTokenIssuedAtTimestamp = timeutil.TimestampNow()
	if err := ctx.SaveGrantSession(grantSession); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the grant session", err)
	}

	resp := response{
		AccessToken:  token.Value,
		ExpiresIn:    token.LifetimeSecs,
		TokenType:    goidp.TokenTypeBearer,
		Scopes:       scopes,
		RefreshToken: grantSession.RefreshToken,
	}

	if strutil.ContainsOpenID(scopes) {
		idToken, err := makeIDToken(ctx, grantSession, token.Value)
		if err != nil {
			return response{}, err
		}
		resp.IDToken = idToken
	}

	return resp, nil
}

func validateRefreshTokenGrant(
	ctx oidc.Context,
	req request,
	client *goidp.Client,
	grantSession *goidp.GrantSession,
) error {
	if grantSession.ClientID != client.ID {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the refresh token was not issued to the client")
	}

	// A rotated out refresh token resolves to its grant session but is no
	// longer the current one. Presenting it means the token leaked or the
	// client replayed it, so the whole token family is revoked.
	if grantSession.RefreshToken != req.refreshToken {
		_ = ctx.DeleteGrantSession(grantSession.ID)
		ctx.Logger().WarnContext(ctx.Context(), "rotated refresh token was reused, revoking the token family",
			"tenant_id", ctx.TenantID, "client_id", client.ID, "grant_session_id", grantSession.ID)
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "invalid refresh token")
	}

	if grantSession.Revoked {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the grant was revoked")
	}

	if grantSession.IsExpired() {
		_ = ctx.DeleteGrantSession(grantSession.ID)
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the refresh token is expired")
	}

	return nil
}
