package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

type ClientManager struct {
	Clients map[string]*goidp.Client
	mu      sync.RWMutex
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		Clients: make(map[string]*goidp.Client),
	}
}

func (m *ClientManager) Save(_ context.Context, client *goidp.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Clients[client.ID] = client
	return nil
}

func (m *ClientManager) Client(_ context.Context, id string) (*goidp.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.Clients[id]
	if !exists {
		return nil, errors.New("entity not found")
	}

	return client, nil
}

func (m *ClientManager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Clients, id)
	return nil
}

var _ goidp.ClientManager = NewClientManager()
