package storage

import (
	"context"
	"testing"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantSessionByRefreshToken(t *testing.T) {
	// Given.
	manager := NewGrantSessionManager()
	session := &goidp.GrantSession{
		ID:                   "grant_id",
		RefreshToken:         "current_token",
		RotatedRefreshTokens: []string{"old_token"},
	}
	require.Nil(t, manager.Save(context.Background(), session))

	// Then.
	found, err := manager.SessionByRefreshToken(context.Background(), "current_token")
	require.Nil(t, err)
	assert.Equal(t, "grant_id", found.ID)

	// A rotated out token still resolves to the session, so reuse can be
	// detected.
	found, err = manager.SessionByRefreshToken(context.Background(), "old_token")
	require.Nil(t, err)
	assert.Equal(t, "grant_id", found.ID)

	_, err = manager.SessionByRefreshToken(context.Background(), "unknown_token")
	assert.NotNil(t, err)
}

func TestRotateRefreshToken(t *testing.T) {
	// Given.
	manager := NewGrantSessionManager()
	session := &goidp.GrantSession{
		ID:           "grant_id",
		RefreshToken: "current_token",
	}
	require.Nil(t, manager.Save(context.Background(), session))

	// When.
	err := manager.RotateRefreshToken(context.Background(), "grant_id", "current_token", "new_token")

	// Then.
	require.Nil(t, err)
	found, err := manager.SessionByRefreshToken(context.Background(), "new_token")
	require.Nil(t, err)
	assert.Equal(t, "new_token", found.RefreshToken)
	assert.Contains(t, found.RotatedRefreshTokens, "current_token")
}

func TestRotateRefreshToken_FailsWhenAlreadyRotated(t *testing.T) {
	// Given.
	manager := NewGrantSessionManager()
	session := &goidp.GrantSession{
		ID:           "grant_id",
		RefreshToken: "current_token",
	}
	require.Nil(t, manager.Save(context.Background(), session))
	require.Nil(t, manager.RotateRefreshToken(context.Background(), "grant_id", "current_token", "new_token"))

	// When.
	err := manager.RotateRefreshToken(context.Background(), "grant_id", "current_token", "another_token")

	// Then. Only one of two concurrent rotations of the same token can win.
	assert.NotNil(t, err)
}

func TestDeleteGrantSessionsBySubjectAndClient(t *testing.T) {
	// Given.
	manager := NewGrantSessionManager()
	require.Nil(t, manager.Save(context.Background(), &goidp.GrantSession{
		ID: "grant1", Subject: "user1", ClientID: "client1",
	}))
	require.Nil(t, manager.Save(context.Background(), &goidp.GrantSession{
		ID: "grant2", Subject: "user1", ClientID: "client2",
	}))

	// When.
	err := manager.DeleteBySubjectAndClient(context.Background(), "user1", "client1")

	// Then.
	require.Nil(t, err)
	assert.NotContains(t, manager.Sessions, "grant1")
	assert.Len(t, manager.Sessions, 1)
}
