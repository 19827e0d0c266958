package registration

import (
	"context"

	id "birthregistry/pkg/domain"
)

// Store persists parent registrations. All writes are whole-record replaces;
// the workflow engine produces the full next-state record.
//
// Implementations return sentinel.ErrAlreadyUsed when a registration number
// is taken and sentinel.ErrNotFound on missing records.
type Store interface {
	// Save creates a new registration. Fails with sentinel.ErrAlreadyUsed
	// when the registration number already exists.
	Save(ctx context.Context, r *ParentRegistration) error

	FindByNumber(ctx context.Context, regNumber id.RegistrationNumber) (*ParentRegistration, error)

	// List returns registrations matching the filter, ordered by submission
	// date ascending.
	List(ctx context.Context, filter Filter) ([]*ParentRegistration, error)

	// HospitalIDClaimed reports whether a non-rejected registration already
	// references the hospital ID. Rejected registrations release their claim
	// so a resubmission can reuse the notification.
	HospitalIDClaimed(ctx context.Context, hospitalID id.HospitalID) (bool, error)

	// FindByHospitalID returns the non-rejected registration referencing the
	// hospital ID, or sentinel.ErrNotFound when the ID is unclaimed. At most
	// one such registration exists at a time.
	FindByHospitalID(ctx context.Context, hospitalID id.HospitalID) (*ParentRegistration, error)

	// Execute atomically loads a registration, runs validate, and if it
	// passes applies mutate and persists. The lock (mutex or FOR UPDATE) is
	// held across both callbacks.
	Execute(ctx context.Context, regNumber id.RegistrationNumber,
		validate func(*ParentRegistration) error,
		mutate func(*ParentRegistration)) (*ParentRegistration, error)
}
