// Package token implements token issuance and introspection. Access tokens
// can be self-contained JWTs or opaque strings; either way every token
// resolves to a grant session holding its state.
package token

import (
	"slices"

	"github.com/google/uuid"
	"github.com/idpsrv/go-idp/internal/clientutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func generateGrant(ctx oidc.Context, req request) (response, error) {
	client, err := clientutil.Authenticated(ctx)
	if err != nil {
		return response{}, err
	}

	switch req.grantType {
	case goidp.GrantAuthorizationCode:
		return generateAuthorizationCodeGrant(ctx, req, client)
	case goidp.GrantRefreshToken:
		return generateRefreshTokenGrant(ctx, req, client)
	default:
		return response{}, goidp.NewError(goidp.ErrorCodeUnsupportedGrantType, "unsupported grant type")
	}
}

func generateAuthorizationCodeGrant(
	ctx oidc.Context,
	req request,
	client *goidp.Client,
) (response, error) {
	if err := validateGrantType(ctx, client, goidp.GrantAuthorizationCode); err != nil {
		return response{}, err
	}

	if req.authorizationCode == "" {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidRequest, "code is required")
	}

	session, err := ctx.ConsumeAuthnSessionByAuthCode(req.authorizationCode)
	if err != nil {
		// The code was either never issued or already redeemed. If it was
		// redeemed, the grant issued for it must be revoked.
		_ = ctx.DeleteGrantSessionByAuthCode(req.authorizationCode)
		return response{}, goidp.WrapError(goidp.ErrorCodeInvalidGrant, "invalid authorization code", err)
	}

	if err := validateAuthorizationCodeGrant(req, client, session); err != nil {
		return response{}, err
	}

	token, err := makeToken(ctx, session.Subject, client.ID, session.GrantedScopes)
	if err != nil {
		return response{}, err
	}

	grantSession := newGrantSession(ctx, session, client, token)
	if err := ctx.SaveGrantSession(grantSession); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the grant session", err)
	}

	resp := response{
		AccessToken:  token.Value,
		ExpiresIn:    token.LifetimeSecs,
		TokenType:    goidp.TokenTypeBearer,
		Scopes:       grantSession.GrantedScopes,
		RefreshToken: grantSession.RefreshToken,
	}

	if strutil.ContainsOpenID(grantSession.GrantedScopes) {
		idToken, err := makeIDToken(ctx, grantSession, token.Value)
		if err != nil {
			return response{}, err
		}
		resp.IDToken = idToken
	}

	return resp, nil
}

func validateAuthorizationCodeGrant(
	req request,
	client *goidp.Client,
	session *goidp.AuthnSession,
) error {
	if session.ClientID != client.ID {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the code was not issued to the client")
	}

	if session.IsExpired() {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the authorization code is expired")
	}

	if session.Status != goidp.StatusGranted {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "the authorization was not granted")
	}

	// The redirect_uri must repeat the value of the authorization request
	// exactly.
	if req.redirectURI != session.RedirectURI {
		return goidp.NewError(goidp.ErrorCodeInvalidGrant, "invalid redirect_uri")
	}

	return nil
}

func validateGrantType(ctx oidc.Context, client *goidp.Client, grantType goidp.GrantType) error {
	if !slices.Contains(ctx.GrantTypes, grantType) || !client.IsGrantTypeAllowed(grantType) {
		return goidp.NewError(goidp.ErrorCodeUnauthorizedClient, "grant type not allowed")
	}
	return nil
}

func newGrantSession(
	ctx oidc.Context,
	session *goidp.AuthnSession,
	client *goidp.Client,
	token Token,
) *goidp.GrantSession {
	now := timeutil.TimestampNow()
	grantSession := &goidp.GrantSession{
		ID:                         uuid.NewString(),
		TokenID:                    token.ID,
		AuthCode:                   session.AuthCode,
		Subject:                    session.Subject,
		TenantID:                   ctx.TenantID,
		ClientID:                   client.ID,
		GrantedScopes:              session.GrantedScopes,
		ActiveScopes:               session.GrantedScopes,
		Nonce:                      session.Nonce,
		KeyID:                      token.KeyID,
		TokenLifetimeSecs:          token.LifetimeSecs,
		LastTokenIssuedAtTimestamp: now,
		CreatedAtTimestamp:         now,
		ExpiresAtTimestamp:         now + token.LifetimeSecs,
	}

	if client.IsGrantTypeAllowed(goidp.GrantRefreshToken) &&
		slices.Contains(ctx.GrantTypes, goidp.GrantRefreshToken) {
		grantSession.RefreshToken = strutil.Random(refreshTokenLength)
		grantSession.ExpiresAtTimestamp = now + ctx.RefreshTokenLifetimeSecs
	}

	return grantSession
}
