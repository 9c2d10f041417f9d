package goidp

import (
	"testing"

	"github.com/idpsrv/go-idp/internal/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestDeviceSessionCurrentStatus(t *testing.T) {
	now := timeutil.TimestampNow()

	testCases := []struct {
		name     string
		session  DeviceSession
		expected DeviceSessionStatus
	}{
		{
			"pending within ttl",
			DeviceSession{Status: DeviceStatusPending, ExpiresAtTimestamp: now + 60},
			DeviceStatusPending,
		},
		{
			// The timeout is computed on read, a pending session past its
			// ttl reads as timed out without any write.
			"pending past ttl",
			DeviceSession{Status: DeviceStatusPending, ExpiresAtTimestamp: now - 1},
			DeviceStatusTimedOut,
		},
		{
			"approved past ttl",
			DeviceSession{Status: DeviceStatusApproved, ExpiresAtTimestamp: now - 1},
			DeviceStatusApproved,
		},
		{
			"denied within ttl",
			DeviceSession{Status: DeviceStatusDenied, ExpiresAtTimestamp: now + 60},
			DeviceStatusDenied,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.session.CurrentStatus())
		})
	}
}
