// Package userinfo serves the claims of the end user behind an access token
// and the endpoint for an end user to delete their own account.
package userinfo

import (
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/internal/token"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

// claimsByScope maps each scope to the user claims it unlocks. The sub claim
// is always returned and is not listed here.
var claimsByScope = map[string][]string{
	goidp.ScopeProfile: {"name", "given_name", "family_name", "preferred_username", "locale"},
	goidp.ScopeEmail:   {"email", "email_verified"},
}

func userInfo(ctx oidc.Context) (map[string]any, error) {
	info, err := activeTokenInfo(ctx)
	if err != nil {
		return nil, err
	}

	if !strutil.ContainsOpenID(info.Scopes) {
		return nil, goidp.NewError(goidp.ErrorCodeAccessDenied, "the token is missing the openid scope")
	}

	user, err := ctx.User(info.Subject)
	if err != nil {
		return nil, goidp.WrapError(goidp.ErrorCodeInvalidToken, "invalid token", err)
	}

	claims := map[string]any{
		goidp.ClaimSubject: user.ID,
	}
	for _, scope := range strutil.SplitWithSpaces(info.Scopes) {
		for _, claim := range claimsByScope[scope] {
			if value, ok := user.Claims[claim]; ok {
				claims[claim] = value
			}
		}
	}

	return claims, nil
}

// deleteAccount removes the end user behind the token and every grant they
// gave. Outstanding tokens die with the grants.
func deleteAccount(ctx oidc.Context) error {
	info, err := activeTokenInfo(ctx)
	if err != nil {
		return err
	}

	if err := ctx.DeleteGrantSessionsBySubject(info.Subject); err != nil {
		return goidp.WrapError(goidp.ErrorCodeInternalError, "could not delete the grant sessions", err)
	}

	if err := ctx.DeleteUser(info.Subject); err != nil {
		return goidp.WrapError(goidp.ErrorCodeInternalError, "could not delete the user", err)
	}

	return nil
}

func activeTokenInfo(ctx oidc.Context) (goidp.TokenInfo, error) {
	accessToken, ok := ctx.BearerToken()
	if !ok {
		return goidp.TokenInfo{}, goidp.NewError(goidp.ErrorCodeInvalidToken, "no token found")
	}

	info := token.IntrospectionInfo(ctx, accessToken, goidp.TokenHintAccess)
	if !info.IsActive || info.TokenUsage != goidp.TokenHintAccess || info.Subject == "" {
		return goidp.TokenInfo{}, goidp.NewError(goidp.ErrorCodeInvalidToken, "invalid token")
	}

	return info, nil
}
