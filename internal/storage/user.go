package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type UserManager struct {
	Users map[string]*goidp.User
	mu    sync.RWMutex
}

func NewUserManager() *UserManager {
	return &UserManager{
		Users: make(map[string]*goidp.User),
	}
}

func (m *UserManager) Save(_ context.Context, user *goidp.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Users[user.ID] = user
	return nil
}

func (m *UserManager) User(_ context.Context, id string) (*goidp.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.Users[id]
	if !exists {
		return nil, errors.New("entity not found")
	}

	return user, nil
}

func (m *UserManager) UserByUsername(_ context.Context, username string) (*goidp.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.Users {
		if user.Username == username {
			return user, nil
		}
	}

	return nil, errors.New("entity not found")
}

func (m *UserManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Users, id)
	return nil
}

var _ goidp.UserManager = NewUserManager()
