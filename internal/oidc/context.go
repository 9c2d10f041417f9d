package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/internal/joseutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

type Context struct {
	Response http.ResponseWriter
	Request  *http.Request
	*Configuration
}

func NewContext(
	w http.ResponseWriter,
	r *http.Request,
	config *Configuration,
) Context {
	return Context{
		Configuration: config,
		Response:      w,
		Request:       r,
	}
}

func Handler(
	config *Configuration,
	exec func(ctx Context),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exec(NewContext(w, r, config))
	}
}

func (ctx Context) Context() context.Context {
	return ctx.Request.Context()
}

// Issuer is the value written to the "iss" claim of every token the tenant
// signs. It is unique per tenant.
func (ctx Context) Issuer() string {
	return ctx.Host + "/" + ctx.TenantID
}

func (ctx Context) BaseURL() string {
	return ctx.Host + ctx.EndpointPrefix
}

func (ctx Context) Logger() *slog.Logger {
	if ctx.Configuration.Logger == nil {
		return slog.Default()
	}
	return ctx.Configuration.Logger
}

//---------------------------------------- HTTP ----------------------------------------//

func (ctx Context) Write(obj any, status int) error {
	// Check if the request was terminated before writing anything.
	if ctx.Request.Context().Err() != nil {
		return ctx.Request.Context().Err()
	}

	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	return json.NewEncoder(ctx.Response).Encode(obj)
}

func (ctx Context) WriteStatus(status int) {
	ctx.Response.WriteHeader(status)
}

func (ctx Context) WriteError(err error) {
	ctx.NotifyError(err)

	var idpErr goidp.Error
	if !errors.As(err, &idpErr) {
		idpErr = goidp.NewError(goidp.ErrorCodeInternalError, "internal error")
	}

	if err := ctx.Write(idpErr, idpErr.StatusCode()); err != nil {
		ctx.Response.WriteHeader(http.StatusInternalServerError)
	}
}

func (ctx Context) NotifyError(err error) {
	ctx.Logger().DebugContext(ctx.Context(), "request resulted in error",
		slog.String("tenant_id", ctx.TenantID), slog.String("error", err.Error()))

	if ctx.NotifyErrorFunc == nil {
		return
	}

	ctx.NotifyErrorFunc(ctx.Request, err)
}

func (ctx Context) Redirect(redirectURL string) {
	http.Redirect(ctx.Response, ctx.Request, redirectURL, http.StatusSeeOther)
}

// BearerToken extracts the access token sent in the Authorization header.
func (ctx Context) BearerToken() (string, bool) {
	authorizationHeader := ctx.Request.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authorizationHeader, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

//---------------------------------------- Keys ----------------------------------------//

// SigningJWK returns the tenant's active signing key.
func (ctx Context) SigningJWK() (jose.JSONWebKey, error) {
	keys := ctx.PrivateJWKS.Key(ctx.ActiveKeyID)
	if len(keys) == 0 {
		return jose.JSONWebKey{}, goidp.NewError(goidp.ErrorCodeInternalError,
			"the active signing key is not available")
	}

	return keys[0], nil
}

// PublicJWKS returns the tenant key set with the private information removed.
func (ctx Context) PublicJWKS() jose.JSONWebKeySet {
	publicJWKS := jose.JSONWebKeySet{}
	for _, jwk := range ctx.PrivateJWKS.Keys {
		publicJWKS.Keys = append(publicJWKS.Keys, jwk.Public())
	}

	return publicJWKS
}

// SigAlgs returns the signature algorithms of the keys in the tenant JWKS.
func (ctx Context) SigAlgs() []jose.SignatureAlgorithm {
	var algs []jose.SignatureAlgorithm
	for _, jwk := range ctx.PrivateJWKS.Keys {
		algs = append(algs, jose.SignatureAlgorithm(jwk.Algorithm))
	}

	return algs
}

// Sign serializes the claims as a JWT signed with the active tenant key.
func (ctx Context) Sign(claims map[string]any, opts *jose.SignerOptions) (string, error) {
	jwk, err := ctx.SigningJWK()
	if err != nil {
		return "", err
	}

	if opts == nil {
		opts = &jose.SignerOptions{}
	}
	opts = opts.WithHeader("kid", jwk.KeyID)

	return joseutil.Sign(claims, jose.SigningKey{
		Algorithm: jose.SignatureAlgorithm(jwk.Algorithm),
		Key:       jwk.Key,
	}, opts)
}

//---------------------------------------- CRUD ----------------------------------------//

func (ctx Context) Client(id string) (*goidp.Client, error) {
	for _, staticClient := range ctx.StaticClients {
		if staticClient.ID == id {
			return staticClient, nil
		}
	}

	return ctx.ClientManager.Client(ctx.Context(), id)
}

func (ctx Context) SaveAuthnSession(session *goidp.AuthnSession) error {
	return ctx.AuthnSessionManager.Save(ctx.Context(), session)
}

func (ctx Context) AuthnSessionByID(id string) (*goidp.AuthnSession, error) {
	return ctx.AuthnSessionManager.SessionByID(ctx.Context(), id)
}

func (ctx Context) ConsumeAuthnSessionByAuthCode(code string) (*goidp.AuthnSession, error) {
	return ctx.AuthnSessionManager.ConsumeByAuthCode(ctx.Context(), code)
}

func (ctx Context) DeleteAuthnSession(id string) error {
	return ctx.AuthnSessionManager.Delete(ctx.Context(), id)
}

func (ctx Context) SaveDeviceSession(session *goidp.DeviceSession) error {
	return ctx.DeviceSessionManager.Save(ctx.Context(), session)
}

func (ctx Context) DeviceSessionByID(id string) (*goidp.DeviceSession, error) {
	return ctx.DeviceSessionManager.SessionByID(ctx.Context(), id)
}

func (ctx Context) LatestDeviceSession(deviceID string) (*goidp.DeviceSession, error) {
	return ctx.DeviceSessionManager.LatestByDeviceID(ctx.Context(), deviceID)
}

func (ctx Context) SaveGrantSession(session *goidp.GrantSession) error {
	return ctx.GrantSessionManager.Save(ctx.Context(), session)
}

func (ctx Context) GrantSessionByTokenID(id string) (*goidp.GrantSession, error) {
	return ctx.GrantSessionManager.SessionByTokenID(ctx.Context(), id)
}

func (ctx Context) GrantSessionByRefreshToken(token string) (*goidp.GrantSession, error) {
	return ctx.GrantSessionManager.SessionByRefreshToken(ctx.Context(), token)
}

func (ctx Context) RotateRefreshToken(id, oldToken, newToken string) error {
	return ctx.GrantSessionManager.RotateRefreshToken(ctx.Context(), id, oldToken, newToken)
}

func (ctx Context) DeleteGrantSession(id string) error {
	return ctx.GrantSessionManager.Delete(ctx.Context(), id)
}

func (ctx Context) DeleteGrantSessionByAuthCode(code string) error {
	return ctx.GrantSessionManager.DeleteByAuthCode(ctx.Context(), code)
}

func (ctx Context) DeleteGrantSessionsBySubjectAndClient(subject, clientID string) error {
	return ctx.GrantSessionManager.DeleteBySubjectAndClient(ctx.Context(), subject, clientID)
}

func (ctx Context) DeleteGrantSessionsBySubject(subject string) error {
	return ctx.GrantSessionManager.DeleteBySubject(ctx.Context(), subject)
}

func (ctx Context) User(id string) (*goidp.User, error) {
	return ctx.UserManager.User(ctx.Context(), id)
}

func (ctx Context) UserByUsername(username string) (*goidp.User, error) {
	return ctx.UserManager.UserByUsername(ctx.Context(), username)
}

func (ctx Context) DeleteUser(id string) error {
	return ctx.UserManager.Delete(ctx.Context(), id)
}
