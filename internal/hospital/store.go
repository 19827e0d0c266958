package hospital

import (
	"context"

	id "birthregistry/pkg/domain"
)

// Store persists hospital notifications. Implementations return
// sentinel.ErrAlreadyUsed when the hospital ID is taken and
// sentinel.ErrNotFound on missing records; the service translates both into
// domain errors.
type Store interface {
	Save(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, hospitalID id.HospitalID) (*Notification, error)
}
