package decisionlog

import (
	"context"
	"sync"

	id "birthregistry/pkg/domain"
)

// InMemoryStore keeps admin actions in insertion order per registration.
type InMemoryStore struct {
	mu      sync.RWMutex
	actions map[id.RegistrationNumber][]AdminAction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{actions: make(map[id.RegistrationNumber][]AdminAction)}
}

func (s *InMemoryStore) Append(_ context.Context, action AdminAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[action.RegistrationNumber] = append(s.actions[action.RegistrationNumber], action)
	return nil
}

func (s *InMemoryStore) ListByRegistration(_ context.Context, regNumber id.RegistrationNumber) ([]AdminAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AdminAction{}, s.actions[regNumber]...), nil
}
