package authorize

import (
	"errors"
	"net/url"

	"github.com/idpsrv/go-idp/internal/oidc"
)

// writeOrRedirectError reports the error on the registered redirect URI when
// it is safe to do so, and as a plain JSON error otherwise.
func writeOrRedirectError(ctx oidc.Context, err error) {
	var redirectErr redirectionError
	if !errors.As(err, &redirectErr) {
		ctx.WriteError(err)
		return
	}

	ctx.NotifyError(err)

	params := map[string]string{
		"error":             string(redirectErr.code),
		"error_description": redirectErr.desc,
	}
	if redirectErr.State != "" {
		params["state"] = redirectErr.State
	}
	ctx.Redirect(urlWithQueryParams(redirectErr.RedirectURI, params))
}

func urlWithQueryParams(redirectURI string, params map[string]string) string {
	if len(params) == 0 {
		return redirectURI
	}

	parsedURL, _ := url.Parse(redirectURI)
	query := parsedURL.Query()
	for param, value := range params {
		query.Set(param, value)
	}
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String()
}
