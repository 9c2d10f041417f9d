package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type DeviceSessionManager struct {
	Sessions map[string]*goidp.DeviceSession
	mu       sync.RWMutex
	maxSize  int
}

func NewDeviceSessionManager(maxSize int) *DeviceSessionManager {
	return &DeviceSessionManager{
		Sessions: make(map[string]*goidp.DeviceSession),
		maxSize:  maxSize,
	}
}

func (m *DeviceSessionManager) Save(_ context.Context, session *goidp.DeviceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sessions) >= m.maxSize {
		removeOldest(m.Sessions, func(s *goidp.DeviceSession) int {
			return s.CreatedAtTimestamp
		})
	}

	m.Sessions[session.ID] = session
	return nil
}

func (m *DeviceSessionManager) SessionByID(_ context.Context, id string) (*goidp.DeviceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.Sessions[id]
	if !exists {
		return nil, errors.New("entity not found")
	}

	return session, nil
}

func (m *DeviceSessionManager) LatestByDeviceID(_ context.Context, deviceID string) (*goidp.DeviceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *goidp.DeviceSession
	for _, session := range m.Sessions {
		if session.DeviceID != deviceID {
			continue
		}
		if latest == nil || session.CreatedAtTimestamp > latest.CreatedAtTimestamp {
			latest = session
		}
	}

	if latest == nil {
		return nil, errors.New("entity not found")
	}

	return latest, nil
}

func (m *DeviceSessionManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Sessions, id)
	return nil
}

var _ goidp.DeviceSessionManager = NewDeviceSessionManager(0)
