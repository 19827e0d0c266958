package hospital

import (
	"context"
	"sync"

	id "birthregistry/pkg/domain"
	"birthregistry/pkg/platform/sentinel"
)

// InMemoryStore is the default store. Good enough for the single-session
// reference scope; swap for PostgresStore in deployments.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[id.HospitalID]*Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[id.HospitalID]*Notification)}
}

func (s *InMemoryStore) Save(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.HospitalID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	clone := *n
	s.notifications[n.HospitalID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, hospitalID id.HospitalID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[hospitalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *n
	return &clone, nil
}
