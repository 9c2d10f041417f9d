package token

import (
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointToken,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleGrantCreation), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointIntrospection,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleIntrospection), middlewares...),
	)
}

func handleGrantCreation(ctx oidc.Context) {
	req := newRequest(ctx.Request)
	resp, err := generateGrant(ctx, req)
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handleIntrospection(ctx oidc.Context) {
	req := newIntrospectionRequest(ctx.Request)
	info, err := introspect(ctx, req)
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(info, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}
