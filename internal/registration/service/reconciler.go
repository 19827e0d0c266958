package service

import (
	"context"

	"birthregistry/internal/decisionlog"
	"birthregistry/internal/registration"
	id "birthregistry/pkg/domain"
)

// Reconcile recomputes a registration's authoritative status from its admin
// action log and persists the result.
//
// The admin decision and the citizen-facing status view update
// independently, so a registration row can lag its log. Reconcile selects
// the action with the greatest ActionDate (ties resolve by log order,
// last-appended wins — a deliberate, arbitrary tie-break) and applies it
// only when it is strictly newer than the record's LastUpdated. The
// strictly-newer guard makes the operation idempotent and prevents a
// late-replayed older action from moving the status backward.
func (s *Service) Reconcile(ctx context.Context, regNumber id.RegistrationNumber) (*registration.ParentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Reconcile")
	defer span.End()

	reg, err := s.registrations.FindByNumber(ctx, regNumber)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}

	actions, err := s.actions.ListByRegistration(ctx, regNumber)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}
	latest, ok := latestAction(actions)
	if !ok || !latest.ActionDate.After(reg.EffectiveLastUpdated()) {
		return reg, nil
	}

	updated, err := s.registrations.Execute(ctx, regNumber,
		func(r *registration.ParentRegistration) error {
			// Re-check under the lock; another reconcile may have won.
			if !latest.ActionDate.After(r.EffectiveLastUpdated()) {
				return errAlreadyCurrent
			}
			return nil
		},
		func(r *registration.ParentRegistration) {
			applyAction(r, latest)
		},
	)
	if err != nil {
		if err == errAlreadyCurrent {
			return reg, nil
		}
		return nil, translateRegistrationErr(err)
	}

	s.metrics.IncReconcileApplied()
	return updated, nil
}

type alreadyCurrent struct{}

func (alreadyCurrent) Error() string { return "registration already current" }

var errAlreadyCurrent error = alreadyCurrent{}

// latestAction returns the action with the maximum ActionDate. Equal dates
// keep the later log entry because the scan uses !Before.
func latestAction(actions []decisionlog.AdminAction) (decisionlog.AdminAction, bool) {
	if len(actions) == 0 {
		return decisionlog.AdminAction{}, false
	}
	best := actions[0]
	for _, a := range actions[1:] {
		if !a.ActionDate.Before(best.ActionDate) {
			best = a
		}
	}
	return best, true
}

// applyAction rewrites the decision fields from a log entry. Exactly one of
// the terminal date fields stays set afterwards.
func applyAction(r *registration.ParentRegistration, action decisionlog.AdminAction) {
	when := action.ActionDate
	switch action.Action {
	case decisionlog.ActionApproved:
		r.Status = registration.StatusApproved
		r.ApprovalDate = &when
		r.RejectionDate = nil
		r.RejectionReason = ""
	case decisionlog.ActionRejected:
		r.Status = registration.StatusRejected
		r.RejectionDate = &when
		r.RejectionReason = action.Reason
		r.ApprovalDate = nil
	}
	r.LastUpdated = when
}
