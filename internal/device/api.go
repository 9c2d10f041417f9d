package device

import (
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointDevice+"/{deviceId}/authentications",
		goidp.ApplyMiddlewares(oidc.Handler(config, handleBind), middlewares...),
	)
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointDevice+"/{deviceId}/authentications/latest",
		goidp.ApplyMiddlewares(oidc.Handler(config, handlePollLatest), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointDevice+"/{deviceId}/authentications/{id}/approve",
		goidp.ApplyMiddlewares(oidc.Handler(config, handleApprove), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointDevice+"/{deviceId}/authentications/{id}/deny",
		goidp.ApplyMiddlewares(oidc.Handler(config, handleDeny), middlewares...),
	)
}

func handleBind(ctx oidc.Context) {
	req := newBindRequest(ctx.Request)
	resp, err := bindDevice(ctx, ctx.Request.PathValue("deviceId"), req)
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusCreated); err != nil {
		ctx.WriteError(err)
	}
}

func handlePollLatest(ctx oidc.Context) {
	resp, err := pollLatest(ctx, ctx.Request.PathValue("deviceId"))
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handleApprove(ctx oidc.Context) {
	resp, err := approveDevice(ctx, ctx.Request.PathValue("deviceId"), ctx.Request.PathValue("id"))
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handleDeny(ctx oidc.Context) {
	resp, err := denyDevice(ctx, ctx.Request.PathValue("deviceId"), ctx.Request.PathValue("id"))
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(resp, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}
