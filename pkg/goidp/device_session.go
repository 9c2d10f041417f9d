package goidp

import (
	"context"

	"github.com/idpsrv/go-idp/internal/timeutil"
)

// DeviceSessionManager contains all the logic needed to manage
// authentication device sessions.
type DeviceSessionManager interface {
	Save(ctx context.Context, session *DeviceSession) error
	SessionByID(ctx context.Context, id string) (*DeviceSession, error)
	// LatestByDeviceID returns the most recently created session for the
	// device.
	LatestByDeviceID(ctx context.Context, deviceID string) (*DeviceSession, error)
	Delete(ctx context.Context, id string) error
}

type DeviceSessionStatus string

const (
	DeviceStatusPending  DeviceSessionStatus = "pending"
	DeviceStatusApproved DeviceSessionStatus = "approved"
	DeviceStatusDenied   DeviceSessionStatus = "denied"
	DeviceStatusTimedOut DeviceSessionStatus = "timed_out"
)

// DeviceSession tracks an out-of-band device authentication linked to an
// authorization session. Polling it is a plain read; expiry is computed from
// the TTL on read instead of a background sweep.
type DeviceSession struct {
	ID                 string              `json:"id" bson:"_id"`
	DeviceID           string              `json:"device_id" bson:"device_id"`
	AuthnSessionID     string              `json:"authorization_id" bson:"authorization_id"`
	Subject            string              `json:"sub,omitempty" bson:"sub,omitempty"`
	Status             DeviceSessionStatus `json:"status" bson:"status"`
	CreatedAtTimestamp int                 `json:"created_at" bson:"created_at"`
	UpdatedAtTimestamp int                 `json:"updated_at" bson:"updated_at"`
	ExpiresAtTimestamp int                 `json:"expires_at" bson:"expires_at"`
}

func (s *DeviceSession) IsExpired() bool {
	return timeutil.TimestampNow() > s.ExpiresAtTimestamp
}

// CurrentStatus resolves the status as seen by a poll, accounting for the
// TTL. A pending session past its expiry reads as timed out.
func (s *DeviceSession) CurrentStatus() DeviceSessionStatus {
	if s.Status == DeviceStatusPending && s.IsExpired() {
		return DeviceStatusTimedOut
	}
	return s.Status
}
