package registration

import (
	"context"
	"sort"
	"sync"

	id "birthregistry/pkg/domain"
	"birthregistry/pkg/platform/sentinel"
)

// InMemoryStore is the default registration store.
type InMemoryStore struct {
	mu            sync.RWMutex
	registrations map[id.RegistrationNumber]*ParentRegistration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{registrations: make(map[id.RegistrationNumber]*ParentRegistration)}
}

func (s *InMemoryStore) Save(_ context.Context, r *ParentRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.RegistrationNumber]; ok {
		return sentinel.ErrAlreadyUsed
	}
	clone := *r
	s.registrations[r.RegistrationNumber] = &clone
	return nil
}

func (s *InMemoryStore) FindByNumber(_ context.Context, regNumber id.RegistrationNumber) (*ParentRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[regNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter) ([]*ParentRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ParentRegistration, 0, len(s.registrations))
	for _, r := range s.registrations {
		if filter.Matches(r) {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmissionDate.Before(out[j].SubmissionDate)
	})
	return out, nil
}

func (s *InMemoryStore) HospitalIDClaimed(_ context.Context, hospitalID id.HospitalID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.registrations {
		if r.HospitalData.HospitalID == hospitalID && r.Status != StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) FindByHospitalID(_ context.Context, hospitalID id.HospitalID) (*ParentRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.registrations {
		if r.HospitalData.HospitalID == hospitalID && r.Status != StatusRejected {
			clone := *r
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Execute(_ context.Context, regNumber id.RegistrationNumber,
	validate func(*ParentRegistration) error,
	mutate func(*ParentRegistration)) (*ParentRegistration, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[regNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	// Validate against a copy so a failed validation leaves the record
	// untouched.
	work := *r
	if err := validate(&work); err != nil {
		return nil, err
	}
	mutate(&work)
	s.registrations[regNumber] = &work

	clone := work
	return &clone, nil
}
