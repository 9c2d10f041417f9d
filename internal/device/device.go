// Package device tracks out-of-band authentication device sessions. A poll
// is a plain state read; approvals are pushed by the companion app, never
// waited for on an open connection.
package device

import (
	"github.com/google/uuid"
	"github.com/idpsrv/go-idp/internal/authorize"
	"github.com/idpsrv/go-idp/internal/oidc"
	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/idpsrv/go-idp/pkg/goidp"
)

// bindDevice starts a device authentication for a staged authorization
// session.
func bindDevice(ctx oidc.Context, deviceID string, req bindRequest) (response, error) {
	if req.AuthnSessionID == "" {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidRequest, "authorization_id is required")
	}

	authnSession, err := ctx.AuthnSessionByID(req.AuthnSessionID)
	if err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInvalidRequest, "could not load the session", err)
	}

	if authnSession.IsExpired() {
		return response{}, goidp.NewError(goidp.ErrorCodeSessionExpired, "the session is expired")
	}

	if authnSession.Status != goidp.StatusPending {
		return response{}, goidp.NewError(goidp.ErrorCodeInvalidRequest, "the session cannot start a device authentication")
	}

	authnSession.Status = goidp.StatusDevicePending
	if err := ctx.SaveAuthnSession(authnSession); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the session", err)
	}

	now := timeutil.TimestampNow()
	session := &goidp.DeviceSession{
		ID:                 uuid.NewString(),
		DeviceID:           deviceID,
		AuthnSessionID:     authnSession.ID,
		Subject:            req.Subject,
		Status:             goidp.DeviceStatusPending,
		CreatedAtTimestamp: now,
		UpdatedAtTimestamp: now,
		ExpiresAtTimestamp: now + ctx.DeviceSessionTimeoutSecs,
	}
	if err := ctx.SaveDeviceSession(session); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the device session", err)
	}

	return newResponse(session), nil
}

// pollLatest returns the current status of the newest session for the
// device. It never blocks and never transitions state; a pending session
// past its TTL simply reads as timed out.
func pollLatest(ctx oidc.Context, deviceID string) (response, error) {
	session, err := ctx.LatestDeviceSession(deviceID)
	if err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeDeviceNotFound,
			"no authentication found for the device", err)
	}

	return newResponse(session), nil
}

func approveDevice(ctx oidc.Context, deviceID, sessionID string) (response, error) {
	session, err := activeSession(ctx, deviceID, sessionID)
	if err != nil {
		return response{}, err
	}

	authnSession, err := ctx.AuthnSessionByID(session.AuthnSessionID)
	if err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInvalidRequest, "could not load the session", err)
	}
	// A subject asserted by the device takes precedence, but a binding
	// without one must not discard a subject already authenticated by other
	// means.
	if session.Subject != "" {
		authnSession.Subject = session.Subject
	}

	redirectURL, err := authorize.Grant(ctx, authnSession)
	if err != nil {
		return response{}, err
	}

	session.Status = goidp.DeviceStatusApproved
	session.UpdatedAtTimestamp = timeutil.TimestampNow()
	if err := ctx.SaveDeviceSession(session); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the device session", err)
	}

	resp := newResponse(session)
	resp.RedirectURI = redirectURL
	return resp, nil
}

func denyDevice(ctx oidc.Context, deviceID, sessionID string) (response, error) {
	session, err := activeSession(ctx, deviceID, sessionID)
	if err != nil {
		return response{}, err
	}

	authnSession, err := ctx.AuthnSessionByID(session.AuthnSessionID)
	if err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInvalidRequest, "could not load the session", err)
	}

	if _, err := authorize.Deny(ctx, authnSession); err != nil {
		return response{}, err
	}

	session.Status = goidp.DeviceStatusDenied
	session.UpdatedAtTimestamp = timeutil.TimestampNow()
	if err := ctx.SaveDeviceSession(session); err != nil {
		return response{}, goidp.WrapError(goidp.ErrorCodeInternalError, "could not save the device session", err)
	}

	return newResponse(session), nil
}

// activeSession loads a device session that can still receive an approval
// decision. Expiry is enforced on read.
func activeSession(ctx oidc.Context, deviceID, sessionID string) (*goidp.DeviceSession, error) {
	session, err := ctx.DeviceSessionByID(sessionID)
	if err != nil || session.DeviceID != deviceID {
		return nil, goidp.NewError(goidp.ErrorCodeDeviceNotFound,
			"no authentication found for the device")
	}

	if session.IsExpired() {
		return nil, goidp.NewError(goidp.ErrorCodeSessionExpired, "the device session is expired")
	}

	if session.Status != goidp.DeviceStatusPending {
		return nil, goidp.NewError(goidp.ErrorCodeInvalidRequest, "the device session is in a terminal status")
	}

	return session, nil
}

func newResponse(session *goidp.DeviceSession) response {
	resp := response{
		ID:             session.ID,
		AuthnSessionID: session.AuthnSessionID,
		Status:         session.CurrentStatus(),
	}
	if resp.Status == goidp.DeviceStatusPending {
		resp.ExpiresIn = session.ExpiresAtTimestamp - timeutil.TimestampNow()
	}
	return resp
}
