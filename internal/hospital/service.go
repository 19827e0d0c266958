package hospital

import (
	"context"
	"errors"

	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/platform/sentinel"
	"birthregistry/pkg/requestcontext"
)

// maxMintAttempts caps hospital ID regeneration on store conflicts.
const maxMintAttempts = 5

// Service handles hospital notification intake. It mints hospital IDs and
// keeps orchestration out of the HTTP layer.
type Service struct {
	store Store
	rand  id.Rand
}

func NewService(store Store) *Service {
	return &Service{store: store, rand: id.DefaultRand}
}

// WithRand overrides the randomness source. Tests use it for deterministic
// hospital IDs.
func (s *Service) WithRand(rnd id.Rand) *Service {
	s.rand = rnd
	return s
}

// Create validates intake fields, mints a hospital ID, and persists the
// notification. On an ID collision it regenerates up to maxMintAttempts
// before failing with CodeIdentifierExhausted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Notification, error) {
	now := requestcontext.Now(ctx)

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		hospitalID := id.NewHospitalID(now, s.rand)
		n, err := NewNotification(hospitalID, req, now)
		if err != nil {
			return nil, err
		}
		err = s.store.Save(ctx, n)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save hospital notification")
		}
	}
	return nil, dErrors.New(dErrors.CodeIdentifierExhausted, "could not mint an unused hospital ID")
}

// Get returns the notification for a hospital ID. The parent intake UI
// calls this before submission to show the fields being embedded.
func (s *Service) Get(ctx context.Context, hospitalID id.HospitalID) (*Notification, error) {
	n, err := s.store.FindByID(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "hospital ID not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load hospital notification")
	}
	return n, nil
}
