package userinfo

import (
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointUserInfo,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleUserInfo), middlewares...),
	)
	router.Handle(
		"POST "+config.EndpointPrefix+config.EndpointUserInfo,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleUserInfo), middlewares...),
	)
	router.Handle(
		"DELETE "+config.EndpointPrefix+config.EndpointAccount,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleAccountDeletion), middlewares...),
	)
}

func handleUserInfo(ctx oidc.Context) {
	claims, err := userInfo(ctx)
	if err != nil {
		ctx.WriteError(err)
		return
	}

	if err := ctx.Write(claims, http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

func handleAccountDeletion(ctx oidc.Context) {
	if err := deleteAccount(ctx); err != nil {
		ctx.WriteError(err)
		return
	}

	ctx.WriteStatus(http.StatusNoContent)
}
