package discovery

import (
	"fmt"
	"net/http"

	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

func RegisterHandlers(router *http.ServeMux, config *oidc.Configuration, middlewares ...goidp.MiddlewareFunc) {
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointWellKnown,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleWellKnown), middlewares...),
	)
	router.Handle(
		"GET "+config.EndpointPrefix+config.EndpointJWKS,
		goidp.ApplyMiddlewares(oidc.Handler(config, handleJWKS), middlewares...),
	)
}

func handleWellKnown(ctx oidc.Context) {
	if err := ctx.Write(newOpenIDConfiguration(ctx), http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}

// handleJWKS serves the tenant public keys. All keys in the set are served,
// not only the active one, so tokens signed before a rotation stay
// verifiable.
func handleJWKS(ctx oidc.Context) {
	if ctx.JWKSCacheMaxAgeSecs > 0 {
		ctx.Response.Header().Set("Cache-Control",
			fmt.Sprintf("public, max-age=%d", ctx.JWKSCacheMaxAgeSecs))
	}

	if err := ctx.Write(ctx.PublicJWKS(), http.StatusOK); err != nil {
		ctx.WriteError(err)
	}
}
