// Package clientutil authenticates clients against their registered
// authentication method.
package clientutil

import (
	"slices"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"golang.org/x/crypto/bcrypt"
)

const (
	idFormPostParam     = "client_id"
	secretFormPostParam = "client_secret"
)

// Authenticated fetches the client associated to the request and returns it
// if the client is authenticated according to its authentication method.
func Authenticated(ctx oidc.Context) (*goidp.Client, error) {
	id, err := extractID(ctx)
	if err != nil {
		return nil, err
	}

	client, err := ctx.Client(id)
	if err != nil {
		return nil, goidp.WrapError(goidp.ErrorCodeInvalidClient, "client not found", err)
	}

	if err := authenticate(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// AreScopesAllowed reports whether the requested scopes are a subset of both
// the client's and the tenant's scopes.
func AreScopesAllowed(c *goidp.Client, tenantScopes, requestedScopes string) bool {
	return strutil.ContainsAllScopes(c.Scopes, requestedScopes) &&
		strutil.ContainsAllScopes(tenantScopes, requestedScopes)
}

func extractID(ctx oidc.Context) (string, error) {
	basicID, _, _ := ctx.Request.BasicAuth()
	postID := ctx.Request.PostFormValue(idFormPostParam)

	if basicID == "" && postID == "" {
		return "", goidp.NewError(goidp.ErrorCodeInvalidClient, "client id not informed")
	}

	if basicID != "" && postID != "" && basicID != postID {
		return "", goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid client id")
	}

	if basicID != "" {
		return basicID, nil
	}
	return postID, nil
}

func authenticate(ctx oidc.Context, client *goidp.Client) error {
	if !slices.Contains(ctx.TokenAuthnMethods, client.AuthnMethod) {
		return goidp.NewError(goidp.ErrorCodeInvalidClient, "authentication method not allowed")
	}

	switch client.AuthnMethod {
	case goidp.ClientAuthnNone:
		return nil
	case goidp.ClientAuthnSecretPost:
		return authenticateSecretPost(ctx, client)
	case goidp.ClientAuthnSecretBasic:
		return authenticateSecretBasic(ctx, client)
	default:
		return goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid authentication method")
	}
}

func authenticateSecretPost(ctx oidc.Context, c *goidp.Client) error {
	if c.ID != ctx.Request.PostFormValue(idFormPostParam) {
		return goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid client id")
	}

	secret := ctx.Request.PostFormValue(secretFormPostParam)
	if secret == "" {
		return goidp.NewError(goidp.ErrorCodeInvalidClient, "client secret not informed")
	}
	return validateSecret(c, secret)
}

func authenticateSecretBasic(ctx oidc.Context, c *goidp.Client) error {
	id, secret, ok := ctx.Request.BasicAuth()
	if !ok {
		return goidp.NewError(goidp.ErrorCodeInvalidClient,
			"client basic authentication not informed")
	}

	if c.ID != id {
		return goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid client id")
	}

	return validateSecret(c, secret)
}

func validateSecret(client *goidp.Client, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(client.HashedSecret), []byte(secret))
	if err != nil {
		return goidp.WrapError(goidp.ErrorCodeInvalidClient, "invalid client secret", err)
	}
	return nil
}
