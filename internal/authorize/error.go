package authorize

import (
	"fmt"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

// redirectionError is an error that is safe to report on the client's
// registered redirect URI. It is only built after the redirect URI has been
// validated against the registration.
type redirectionError struct {
	code goidp.ErrorCode
	desc string
	goidp.AuthorizationParameters
}

func (err redirectionError) Error() string {
	return fmt.Sprintf("%s %s", err.code, err.desc)
}

func (err redirectionError) Unwrap() error {
	return goidp.NewError(err.code, err.desc)
}

func newRedirectionError(
	code goidp.ErrorCode,
	desc string,
	params goidp.AuthorizationParameters,
) error {
	return redirectionError{
		code:                    code,
		desc:                    desc,
		AuthorizationParameters: params,
	}
}
