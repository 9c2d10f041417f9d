package authorize

import (
	"net/http"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

const (
	authCodeLength       = 30
	authCodeLifetimeSecs = 60
)

type request struct {
	ClientID string
	goidp.AuthorizationParameters
}

func newRequest(r *http.Request) request {
	return request{
		ClientID: r.URL.Query().Get("client_id"),
		AuthorizationParameters: goidp.AuthorizationParameters{
			RedirectURI:  r.URL.Query().Get("redirect_uri"),
			ResponseType: goidp.ResponseType(r.URL.Query().Get("response_type")),
			Scopes:       r.URL.Query().Get("scope"),
			State:        r.URL.Query().Get("state"),
			Nonce:        r.URL.Query().Get("nonce"),
		},
	}
}

// response is the session reference returned when an authorization request
// is staged.
type response struct {
	ID        string                   `json:"id"`
	Status    goidp.AuthnSessionStatus `json:"status"`
	ExpiresIn int                      `json:"expires_in"`
}

type passwordAuthnRequest struct {
	Username string
	Password string
}

func newPasswordAuthnRequest(r *http.Request) passwordAuthnRequest {
	return passwordAuthnRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
}

// grantResponse carries the redirect target the front end navigates to after
// the session reaches a terminal status.
type grantResponse struct {
	RedirectURI string `json:"redirect_uri"`
}
