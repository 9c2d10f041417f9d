package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type GrantSessionManager struct {
	Sessions map[string]*goidp.GrantSession
	mu       sync.RWMutex
}

func NewGrantSessionManager() *GrantSessionManager {
	return &GrantSessionManager{
		Sessions: make(map[string]*goidp.GrantSession),
	}
}

func (m *GrantSessionManager) Save(_ context.Context, session *goidp.GrantSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sessions[session.ID] = session
	return nil
}

func (m *GrantSessionManager) SessionByTokenID(_ context.Context, tokenID string) (*goidp.GrantSession, error) {
	session, exists := m.firstSession(func(s *goidp.GrantSession) bool {
		return s.TokenID == tokenID
	})
	if !exists {
		return nil, errors.New("entity not found")
	}

	return session, nil
}

func (m *GrantSessionManager) SessionByRefreshToken(_ context.Context, refreshToken string) (*goidp.GrantSession, error) {
	session, exists := m.firstSession(func(s *goidp.GrantSession) bool {
		return s.RefreshToken == refreshToken ||
			slices.Contains(s.RotatedRefreshTokens, refreshToken)
	})
	if !exists {
		return nil, errors.New("entity not found")
	}

	return session, nil
}

// RotateRefreshToken swaps the current refresh token under a single lock.
// The check-and-set on oldToken guarantees at most one of two concurrent
// rotations with the same token succeeds.
func (m *GrantSessionManager) RotateRefreshToken(_ context.Context, id, oldToken, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.Sessions[id]
	if !exists {
		return errors.New("entity not found")
	}

	if session.RefreshToken != oldToken {
		return errors.New("refresh token already rotated")
	}

	session.RotatedRefreshTokens = append(session.RotatedRefreshTokens, oldToken)
	session.RefreshToken = newToken
	return nil
}

func (m *GrantSessionManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Sessions, id)
	return nil
}

func (m *GrantSessionManager) DeleteByAuthCode(_ context.Context, code string) error {
	m.deleteMatching(func(s *goidp.GrantSession) bool {
		return s.AuthCode != "" && s.AuthCode == code
	})
	return nil
}

func (m *GrantSessionManager) DeleteBySubjectAndClient(_ context.Context, subject, clientID string) error {
	m.deleteMatching(func(s *goidp.GrantSession) bool {
		return s.Subject == subject && s.ClientID == clientID
	})
	return nil
}

func (m *GrantSessionManager) DeleteBySubject(_ context.Context, subject string) error {
	m.deleteMatching(func(s *goidp.GrantSession) bool {
		return s.Subject == subject
	})
	return nil
}

func (m *GrantSessionManager) deleteMatching(condition func(*goidp.GrantSession) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.Sessions {
		if condition(session) {
			delete(m.Sessions, id)
		}
	}
}

func (m *GrantSessionManager) firstSession(condition func(*goidp.GrantSession) bool) (*goidp.GrantSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*goidp.GrantSession, 0, len(m.Sessions))
	for _, s := range m.Sessions {
		sessions = append(sessions, s)
	}

	return findFirst(sessions, condition)
}

var _ goidp.GrantSessionManager = NewGrantSessionManager()
