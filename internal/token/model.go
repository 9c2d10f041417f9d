package token

import (
	"net/http"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

const refreshTokenLength = 99

type request struct {
	grantType         goidp.GrantType
	authorizationCode string
	redirectURI       string
	refreshToken      string
	scopes            string
}

func newRequest(r *http.Request) request {
	return request{
		grantType:         goidp.GrantType(r.PostFormValue("grant_type")),
		authorizationCode: r.PostFormValue("code"),
		redirectURI:       r.PostFormValue("redirect_uri"),
		refreshToken:      r.PostFormValue("refresh_token"),
		scopes:            r.PostFormValue("scope"),
	}
}

type response struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scopes       string `json:"scope,omitempty"`
}

type introspectionRequest struct {
	token         string
	tokenTypeHint goidp.TokenTypeHint
}

func newIntrospectionRequest(r *http.Request) introspectionRequest {
	return introspectionRequest{
		token:         r.PostFormValue("token"),
		tokenTypeHint: goidp.TokenTypeHint(r.PostFormValue("token_type_hint")),
	}
}

// Token is an access token as issued, before it is bound to a grant session.
type Token struct {
	// ID is the value access tokens are looked up by during introspection.
	// For JWT tokens it is the jti claim, for opaque tokens it is the token
	// value itself.
	ID           string
	Value        string
	Format       goidp.TokenFormat
	LifetimeSecs int
	// KeyID is set for JWT tokens only.
	KeyID string
}
