// Package discovery exposes the tenant's OpenID Provider metadata and its
// public key set.
package discovery

import (
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

type openIDConfiguration struct {
	Issuer                string                  `json:"issuer"`
	AuthorizationEndpoint string                  `json:"authorization_endpoint"`
	TokenEndpoint         string                  `json:"token_endpoint"`
	IntrospectionEndpoint string                  `json:"introspection_endpoint"`
	UserInfoEndpoint      string                  `json:"userinfo_endpoint"`
	EndSessionEndpoint    string                  `json:"end_session_endpoint"`
	JWKSEndpoint          string                  `json:"jwks_uri"`
	GrantTypes            []goidp.GrantType       `json:"grant_types_supported"`
	ResponseTypes         []goidp.ResponseType    `json:"response_types_supported"`
	Scopes                []string                `json:"scopes_supported"`
	TokenAuthnMethods     []goidp.ClientAuthnType `json:"token_endpoint_auth_methods_supported"`
	SubjectTypes          []string                `json:"subject_types_supported"`
	IDTokenSigAlgs        []string                `json:"id_token_signing_alg_values_supported"`
}

func newOpenIDConfiguration(ctx oidc.Context) openIDConfiguration {
	var sigAlgs []string
	for _, alg := range ctx.SigAlgs() {
		sigAlgs = append(sigAlgs, string(alg))
	}

	return openIDConfiguration{
		Issuer:                ctx.Issuer(),
		AuthorizationEndpoint: ctx.BaseURL() + ctx.EndpointAuthorize,
		TokenEndpoint:         ctx.BaseURL() + ctx.EndpointToken,
		IntrospectionEndpoint: ctx.BaseURL() + ctx.EndpointIntrospection,
		UserInfoEndpoint:      ctx.BaseURL() + ctx.EndpointUserInfo,
		EndSessionEndpoint:    ctx.BaseURL() + ctx.EndpointLogout,
		JWKSEndpoint:          ctx.BaseURL() + ctx.EndpointJWKS,
		GrantTypes:            ctx.GrantTypes,
		ResponseTypes:         ctx.ResponseTypes,
		Scopes:                strutil.SplitWithSpaces(ctx.Scopes),
		TokenAuthnMethods:     ctx.TokenAuthnMethods,
		SubjectTypes:          []string{"public"},
		IDTokenSigAlgs:        sigAlgs,
	}
}
