// Package logout implements RP-initiated logout. A logout revokes the end
// user's grants with the requesting client and is idempotent, so replaying a
// logout request is harmless.
package logout

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

type request struct {
	idTokenHint           string
	clientID              string
	postLogoutRedirectURI string
	state                 string
}

func newRequest(r *http.Request) request {
	return request{
		idTokenHint:           r.FormValue("id_token_hint"),
		clientID:              r.FormValue("client_id"),
		postLogoutRedirectURI: r.FormValue("post_logout_redirect_uri"),
		state:                 r.FormValue("state"),
	}
}

// logout ends the sessions identified by the id token hint and returns the
// redirect target when the client registered one.
func logout(ctx oidc.Context, req request) (string, error) {
	if req.idTokenHint == "" {
		return "", goidp.NewError(goidp.ErrorCodeInvalidRequest, "id_token_hint is required")
	}

	subject, audience, err := validateIDTokenHint(ctx, req.idTokenHint)
	if err != nil {
		return "", err
	}

	clientID := req.clientID
	if clientID == "" {
		clientID = audience
	}
	if clientID != audience {
		return "", goidp.NewError(goidp.ErrorCodeInvalidRequest,
			"client_id does not match the id_token_hint")
	}

	redirectURL, err := postLogoutRedirectURL(ctx, req, clientID)
	if err != nil {
		return "", err
	}

	// Deleting grants that are already gone is not an error, which makes the
	// whole operation idempotent.
	if err := ctx.DeleteGrantSessionsBySubjectAndClient(subject, clientID); err != nil {
		return "", goidp.WrapError(goidp.ErrorCodeInternalError, "could not delete the grant sessions", err)
	}

	return redirectURL, nil
}

// validateIDTokenHint verifies the hint against the tenant keys and returns
// its subject and audience. Expiry is deliberately not checked, an expired id
// token is still acceptable proof for logout.
func validateIDTokenHint(ctx oidc.Context, idTokenHint string) (sub, aud string, err error) {
	parsedToken, err := jose.ParseSigned(idTokenHint, ctx.SigAlgs())
	if err != nil {
		return "", "", goidp.WrapError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint", err)
	}

	if len(parsedToken.Signatures) != 1 {
		return "", "", goidp.NewError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint")
	}

	keys := ctx.PrivateJWKS.Key(parsedToken.Signatures[0].Header.KeyID)
	if len(keys) == 0 {
		return "", "", goidp.NewError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint")
	}

	payload, err := parsedToken.Verify(keys[0].Public())
	if err != nil {
		return "", "", goidp.WrapError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint", err)
	}

	var claims struct {
		Issuer   string `json:"iss"`
		Subject  string `json:"sub"`
		Audience string `json:"aud"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", "", goidp.WrapError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint", err)
	}

	if claims.Issuer != ctx.Issuer() || claims.Subject == "" || claims.Audience == "" {
		return "", "", goidp.NewError(goidp.ErrorCodeInvalidRequest, "invalid id_token_hint")
	}

	return claims.Subject, claims.Audience, nil
}

func postLogoutRedirectURL(ctx oidc.Context, req request, clientID string) (string, error) {
	if req.postLogoutRedirectURI == "" {
		return "", nil
	}

	client, err := ctx.Client(clientID)
	if err != nil {
		return "", goidp.WrapError(goidp.ErrorCodeInvalidRequest, "invalid client_id", err)
	}

	if !client.IsPostLogoutRedirectURIAllowed(req.postLogoutRedirectURI) {
		return "", goidp.NewError(goidp.ErrorCodeInvalidRequest, "invalid post_logout_redirect_uri")
	}

	if req.state == "" {
		return req.postLogoutRedirectURI, nil
	}

	parsedURL, _ := url.Parse(req.postLogoutRedirectURI)
	query := parsedURL.Query()
	query.Set("state", req.state)
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String(), nil
}
