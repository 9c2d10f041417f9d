package logout

import (
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointLogout,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleLogout), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointLogout,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleLogout), middlewares...),
	)
}

func handleLogout(ctx oidc.Context) {
	req := newRequest(ctx.Request)
	redirectURL, err := logout(ctx, req)
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if redirectURL == "" {
		ctx.WriteStatus(http.StatusNoContent)
		return
	}

	ctx.Redirect(redirectURL)
}
