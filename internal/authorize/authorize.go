package authorize

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/strutil"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"golang.org/x/crypto/bcrypt"
)

// initAuth validates an authorization request and stages it as a pending
// session. Nothing in the registry is mutated when validation fails.
func initAuth(ctx oidc.Context, req request) (response, error) {
	if req.ClientID == "" {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid client_id")
	}

	client, err := ctx.Client(req.ClientID)
	if err != nil {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidClient, "invalid client_id")
	}

	if err := validateRequest(ctx, req, client); err != nil {
		return response{}, err
	}

	session := newAuthnSession(ctx, req)
	if err := ctx.SaveAuthnSession(session); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the session", err)
	}

	return response{
		ID:        session.ID,
		Status:    session.Status,
		ExpiresIn: session.ExpiresAtTimestamp - session.CreatedAtTimestamp,
	}, nil
}

// authenticateUser resolves the password authentication interaction for a
// staged session and binds the end user as its subject.
func authenticateUser(ctx oidc.Context, sessionID string, req passwordAuthnRequest) error {
	session, err := pendingSession(ctx, sessionID)
	if err != nil {
		return err
	}

	// Failed end user authentication is reported as 401, not as the 403 the
	// access_denied code maps to by default.
	user, err := ctx.UserByUsername(req.Username)
	if err != nil {
		return goidp.NewErrorWithStatus(goidp.ErrorCodeAccessDenied,
			"invalid credentials", http.StatusUnauthorized)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		return goidp.NewErrorWithStatus(goidp.ErrorCodeAccessDenied,
			"invalid credentials", http.StatusUnauthorized)
	}

	session.Subject = user.ID
	if err := ctx.SaveAuthnSession(session); err != nil {
		return goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the session", err)
	}

	return nil
}

func grantAuth(ctx oidc.Context, sessionID string) (grantResponse, error) {
	session, err := pendingSession(ctx, sessionID)
	if err != nil {
		return grantResponse{}, err
	}

	redirectURL, err := Grant(ctx, session)
	if err != nil {
		return grantResponse{}, err
	}

	return grantResponse{RedirectURI: redirectURL}, nil
}

func denyAuth(ctx oidc.Context, sessionID string) (grantResponse, error) {
	session, err := pendingSession(ctx, sessionID)
	if err != nil {
		return grantResponse{}, err
	}

	redirectURL, err := Deny(ctx, session)
	if err != nil {
		return grantResponse{}, err
	}

	return grantResponse{RedirectURI: redirectURL}, nil
}

// Grant moves the session to the granted status, generates the authorization
// code and returns the redirect target carrying it. It is shared with the
// device tracker, which grants sessions on device approval.
func Grant(ctx oidc.Context, session *goidp.AuthnSession) (string, error) {
	if session.Subject == "" {
		return "", goidp.NewError(goidp.ErrorCodeAccessDenied, "the end user is not authenticated")
	}

	session.Status = goidp.StatusGranted
	session.GrantScopes(session.Scopes)
	session.AuthCode = strutil.Random(authCodeLength)
	session.ExpiresAtTimestamp = timeutil.TimestampNow() + authCodeLifetimeSecs
	if err := ctx.SaveAuthnSession(session); err != nil {
		return "", goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the session", err)
	}

	params := map[string]string{"code": session.AuthCode}
	if session.State != "" {
		params["state"] = session.State
	}
	return urlWithQueryParams(session.RedirectURI, params), nil
}

// Deny terminates the session with the denied status. The client is informed
// through the standard access_denied redirect.
func Deny(ctx oidc.Context, session *goidp.AuthnSession) (string, error) {
	session.Status = goidp.StatusDenied
	if err := ctx.DeleteAuthnSession(session.ID); err != nil {
		return "", goidp.WrapError(goidp.ErrorCodeInternalError, "could not delete the session", err)
	}

	params := map[string]string{
		"error":             string(goidp.ErrorCodeAccessDenied),
		"error_description": "the end user denied the authorization request",
	}
	if session.State != "" {
		params["state"] = session.State
	}
	return urlWithQueryParams(session.RedirectURI, params), nil
}

// pendingSession loads a session that can still be acted on. Expiry is
// enforced here, on read.
func pendingSession(ctx oidc.Context, sessionID string) (*goidp.AuthnSession, error) {
	session, err := ctx.AuthnSessionByID(sessionID)
	if err != nil {
		return nil, goidp.WrapError(goidp.ErrorCodeInvalidRequest, "could not load the session", err)
	}

	if session.IsExpired() {
		_ = ctx.DeleteAuthnSession(session.ID)
		return nil, goidp.NewError(goidp.ErrorCodeSessionExpired, "the session is expired")
	}

	if session.Status != goidp.StatusPending && session.Status != goidp.StatusDevicePending {
		return nil, goidp.NewError(goidp.ErrorCodeInvalidRequest, "the session is in a terminal status")
	}

	return session, nil
}

func newAuthnSession(ctx oidc.Context, req request) *goidp.AuthnSession {
	now := timeutil.TimestampNow()
	return &goidp.AuthnSession{
		ID:                      uuid.NewString(),
		TenantID:                ctx.TenantID,
		ClientID:                req.ClientID,
		Status:                  goidp.StatusPending,
		CreatedAtTimestamp:      now,
		ExpiresAtTimestamp:      now + ctx.AuthnSessionTimeoutSecs,
		AuthorizationParameters: req.AuthorizationParameters,
	}
}
