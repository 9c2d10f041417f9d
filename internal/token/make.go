package token

import (
	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func makeToken(ctx oidc.Context, subject, clientID, scopes string) (Token, error) {
	if ctx.TokenFormat == goidp.TokenFormatOpaque {
		return makeOpaqueToken(ctx), nil
	}

	return makeJWTToken(ctx, subject, clientID, scopes)
}

// makeOpaqueToken builds a random opaque token. The grant session is stored
// under the token's thumbprint, never under the raw token value.
func makeOpaqueToken(ctx oidc.Context) Token {
	value := strutil.Random(ctx.OpaqueTokenLength)
	return Token{
		ID:           hashutil.Thumbprint(value),
		Value:        value,
		Format:       goidp.TokenFormatOpaque,
		LifetimeSecs: ctx.TokenLifetimeSecs,
	}
}

func makeJWTToken(ctx oidc.Context, subject, clientID, scopes string) (Token, error) {
	jwk, err := ctx.SigningJWK()
	if err != nil {
		return Token{}, err
	}

	jwtID := uuid.NewString()
	now := timeutil.TimestampNow()
	claims := map[string]any{
		goidp.ClaimIssuer:   ctx.Issuer(),
		goidp.ClaimSubject:  subject,
		goidp.ClaimAudience: clientID,
		goidp.ClaimClientID: clientID,
		goidp.ClaimScope:    scopes,
		goidp.ClaimIssuedAt: now,
		goidp.ClaimExpiry:   now + ctx.TokenLifetimeSecs,
		goidp.ClaimTokenID:  jwtID,
	}

	signed, err := ctx.Sign(claims, nil)
	if err != nil {
		return Token{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not sign the access token", err)
	}

	return Token{
		ID:           jwtID,
		Value:        signed,
		Format:       goidp.TokenFormatJWT,
		LifetimeSecs: ctx.TokenLifetimeSecs,
		KeyID:        jwk.KeyID,
	}, nil
}

// makeIDToken builds the signed ID token for a grant. The at_hash claim binds
// it to the access token issued alongside it.
func makeIDToken(ctx oidc.Context, grantSession *goidp.GrantSession, accessToken string) (string, error) {
	jwk, err := ctx.SigningJWK()
	if err != nil {
		return "", err
	}

	now := timeutil.TimestampNow()
	claims := map[string]any{
		goidp.ClaimIssuer:   ctx.Issuer(),
		goidp.ClaimSubject:  grantSession.Subject,
		goidp.ClaimAudience: grantSession.ClientID,
		goidp.ClaimIssuedAt: now,
		goidp.ClaimExpiry:   now + ctx.IDTokenLifetimeSecs,
		goidp.ClaimAccessTokenHash: hashutil.HalfHash(accessToken,
			jose.SignatureAlgorithm(jwk.Algorithm)),
	}
	if grantSession.Nonce != "" {
		claims[goidp.ClaimNonce] = grantSession.Nonce
	}

	idToken, err := ctx.Sign(claims, nil)
	if err != nil {
		return "", goidp.WrapError(goidp.ErrorCodeInternalError, "could not sign the id token", err)
	}

	return idToken, nil
}
