package authorize

import (
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointAuthorize,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleInit), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointAuthorize+"/{id}/password-authentication",
		goidp.ApplyMiddlewares(oidc.Handler(config, handlePasswordAuthn), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointAuthorize+"/{id}/authorize",
		goidp.ApplyMiddlewares(oidc.Handler(config, handleGrant), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointAuthorize+"/{id}/deny",
		goidp.ApplyMiddlewares(oidc.Handler(config, handleDeny), middlewares...),
	)
}

func handleInit(ctx oidc.Context) {
	req := newRequest(ctx.Request)
	resp, err := initAuth(ctx, req)
	if err != nil {
		writeOrRedirectError(ctx, err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handlePasswordAuthn(ctx oidc.Context) {
	req := newPasswordAuthnRequest(ctx.Request)
	if err := authenticateUser(ctx, ctx.Request.PathValue("id"), req); err != nil {
		ctx.WriteError(err)
		return
	}

	ctx.WriteStatus(http.StatusNoContent)
}

func handleGrant(ctx oidc.Context) {
	resp, err := grantAuth(ctx, ctx.Request.PathValue("id"))
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handleDeny(ctx oidc.Context) {
	resp, err := denyAuth(ctx, ctx.Request.PathValue("id"))
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}
