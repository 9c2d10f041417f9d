package authorize

import (
	"slices"

	"github.com/idpsrv/go-idp/internal/clientutil"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func validateRequest(ctx oidc.Context, req request, client *goidp.Client) error {
	// The redirect URI is validated first and with exact matching. Failures
	// here are never reported via redirect.
	if !client.IsRedirectURIAllowed(req.RedirectURI) {
		return goidp.NewError(goidp.ErrorCodeInvalidRedirectURI, "invalid redirect_uri")
	}

	return validateParams(ctx, req.AuthorizationParameters, client)
}

// validateParams checks the remaining parameters. At this point the redirect
// URI is known to be registered, so errors are redirectable.
func validateParams(
	ctx oidc.Context,
	params goidp.AuthorizationParameters,
	client *goidp.Client,
) error {
	if params.ResponseType == "" ||
		!slices.Contains(ctx.ResponseTypes, params.ResponseType) ||
		!client.IsResponseTypeAllowed(params.ResponseType) {
		return newRedirectionError(goidp.ErrorCodeUnsupportedResponseType,
			"invalid response_type", params)
	}

	if params.Scopes == "" || !clientutil.AreScopesAllowed(client, ctx.Scopes, params.Scopes) {
		return newRedirectionError(goidp.ErrorCodeInvalidScope, "invalid scope", params)
	}

	if strutil.ContainsOfflineAccess(params.Scopes) &&
		!client.IsGrantTypeAllowed(goidp.GrantRefreshToken) {
		return newRedirectionError(goidp.ErrorCodeInvalidScope,
			"refresh_token grant is required for using the scope offline_access", params)
	}

	if params.ResponseType == goidp.ResponseTypeIDToken &&
		strutil.ContainsOpenID(params.Scopes) && params.Nonce == "" {
		return newRedirectionError(goidp.ErrorCodeInvalidRequest,
			"nonce is required for the id_token response type", params)
	}

	return nil
}
