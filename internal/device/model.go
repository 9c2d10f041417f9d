package device

import (
	"net/http"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type bindRequest struct {
	// AuthnSessionID references the staged authorization the device will
	// answer for.
	AuthnSessionID string
	// Subject is the end user the device is enrolled to, asserted by the
	// companion app over the out-of-band channel.
	Subject string
}

func newBindRequest(r *http.Request) bindRequest {
	return bindRequest{
		AuthnSessionID: r.PostFormValue("authorization_id"),
		Subject:        r.PostFormValue("sub"),
	}
}

type response struct {
	ID             string                    `json:"id"`
	AuthnSessionID string                    `json:"authorization_id"`
	Status         goidp.DeviceSessionStatus `json:"status"`
	ExpiresIn      int                       `json:"expires_in,omitempty"`
	// RedirectURI is filled on approval so the waiting front end can resume
	// the flow with the authorization code.
	RedirectURI string `json:"redirect_uri,omitempty"`
}
