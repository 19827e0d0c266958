package decisionlog

import (
	"context"

	id "birthregistry/pkg/domain"
)

// Store is the append-only persistence port for admin actions.
type Store interface {
	Append(ctx context.Context, action AdminAction) error

	// ListByRegistration returns all actions for a registration in insertion
	// order. The reconciler's tie-break depends on that ordering.
	ListByRegistration(ctx context.Context, regNumber id.RegistrationNumber) ([]AdminAction, error)
}
