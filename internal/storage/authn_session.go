package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type AuthnSessionManager struct {
	Sessions map[string]*goidp.AuthnSession
	mu       sync.RWMutex
	maxSize  int
}

func NewAuthnSessionManager(maxSize int) *AuthnSessionManager {
	return &AuthnSessionManager{
		Sessions: make(map[string]*goidp.AuthnSession),
		maxSize:  maxSize,
	}
}

func (m *AuthnSessionManager) Save(_ context.Context, session *goidp.AuthnSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sessions) >= m.maxSize {
		removeOldest(m.Sessions, func(s *goidp.AuthnSession) int {
			return s.CreatedAtTimestamp
		})
	}

	m.Sessions[session.ID] = session
	return nil
}

func (m *AuthnSessionManager) SessionByID(_ context.Context, id string) (*goidp.AuthnSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.Sessions[id]
	if !exists {
		return nil, errors.New("entity not found")
	}

	return session, nil
}

// ConsumeByAuthCode removes and returns the session holding the code under a
// single lock, so a replayed code cannot be consumed twice.
func (m *AuthnSessionManager) ConsumeByAuthCode(_ context.Context, code string) (*goidp.AuthnSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.Sessions {
		if session.AuthCode != "" && session.AuthCode == code {
			delete(m.Sessions, id)
			return session, nil
		}
	}

	return nil, errors.New("entity not found")
}

func (m *AuthnSessionManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Sessions, id)
	return nil
}

var _ goidp.AuthnSessionManager = NewAuthnSessionManager(0)
