// Package service implements the registration workflow engine: submission,
// review transitions, admin decisions, and status reconciliation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"birthregistry/internal/decisionlog"
	"birthregistry/internal/hospital"
	"birthregistry/internal/registration"
	regmetrics "birthregistry/internal/registration/metrics"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/platform/sentinel"
	"birthregistry/pkg/requestcontext"
)

// maxMintAttempts caps registration number regeneration on store conflicts.
const maxMintAttempts = 5

// HospitalLookup is the slice of the hospital store the engine needs.
type HospitalLookup interface {
	FindByID(ctx context.Context, hospitalID id.HospitalID) (*hospital.Notification, error)
}

// DecisionPublisher mirrors admin actions onto an event stream. A nil
// publisher disables publishing.
type DecisionPublisher interface {
	Publish(ctx context.Context, action decisionlog.AdminAction) error
}

// Service orchestrates the registration workflow. Transition rules live on
// the model; the service sequences store access, the action log, events,
// and metrics.
type Service struct {
	registrations registration.Store
	hospitals     HospitalLookup
	actions       decisionlog.Store
	publisher     DecisionPublisher
	logger        *slog.Logger
	metrics       *regmetrics.Metrics
	rand          id.Rand
	tracer        trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p DecisionPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRand overrides the randomness source for deterministic tests.
func WithRand(rnd id.Rand) Option {
	return func(s *Service) { s.rand = rnd }
}

func New(registrations registration.Store, hospitals HospitalLookup, actions decisionlog.Store, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		hospitals:     hospitals,
		actions:       actions,
		logger:        slog.Default(),
		rand:          id.DefaultRand,
		tracer:        otel.Tracer("birthregistry/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the parent application, embeds a snapshot of the hospital
// notification, and creates a pending registration.
//
// A hospital ID may back at most one non-rejected registration. A rejection
// releases the claim; a resubmission may name the rejected registration it
// supersedes, and the back-reference is validated when present.
func (s *Service) Submit(ctx context.Context, req registration.SubmitRequest) (*registration.ParentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit")
	defer span.End()

	start := time.Now()
	now := requestcontext.Now(ctx)

	if _, err := id.ParseHospitalID(req.HospitalID.String()); err != nil {
		return nil, err
	}

	notification, err := s.hospitals.FindByID(ctx, req.HospitalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "hospital ID not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load hospital notification")
	}

	claimed, err := s.registrations.HospitalIDClaimed(ctx, req.HospitalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check hospital ID claim")
	}
	if claimed {
		return nil, dErrors.New(dErrors.CodeConflict, "hospital ID is already referenced by a registration")
	}

	if !req.Supersedes.IsZero() {
		prior, err := s.registrations.FindByNumber(ctx, req.Supersedes)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "superseded registration not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load superseded registration")
		}
		if prior.Status != registration.StatusRejected {
			return nil, dErrors.New(dErrors.CodeConflict, "only a rejected registration can be superseded")
		}
	}

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		regNumber := id.NewRegistrationNumber(now, s.rand)
		reg, err := registration.NewRegistration(regNumber, req, *notification, now)
		if err != nil {
			return nil, err
		}
		err = s.registrations.Save(ctx, reg)
		if err == nil {
			s.metrics.IncSubmissions()
			s.metrics.ObserveSubmitDuration(time.Since(start).Seconds())
			s.logger.InfoContext(ctx, "registration submitted",
				"registration_number", reg.RegistrationNumber,
				"hospital_id", req.HospitalID,
				"request_id", requestcontext.RequestID(ctx),
			)
			return reg, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
		}
	}
	return nil, dErrors.New(dErrors.CodeIdentifierExhausted, "could not mint an unused registration number")
}

// MarkUnderReview moves a pending registration to under_review. Calling it
// on a registration already under review is a no-op; calling it on a
// terminal registration fails with CodeInvalidTransition.
func (s *Service) MarkUnderReview(ctx context.Context, regNumber id.RegistrationNumber) (*registration.ParentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.MarkUnderReview")
	defer span.End()

	now := requestcontext.Now(ctx)
	reg, err := s.registrations.Execute(ctx, regNumber,
		func(r *registration.ParentRegistration) error {
			return r.CanMarkUnderReview()
		},
		func(r *registration.ParentRegistration) {
			r.ApplyUnderReview(now)
		},
	)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}
	return reg, nil
}

// Approve applies a terminal approval decision and appends it to the admin
// action log.
func (s *Service) Approve(ctx context.Context, regNumber id.RegistrationNumber, adminID string) (*registration.ParentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Approve")
	defer span.End()

	now := requestcontext.Now(ctx)
	reg, err := s.registrations.Execute(ctx, regNumber,
		func(r *registration.ParentRegistration) error {
			return r.CanDecide()
		},
		func(r *registration.ParentRegistration) {
			r.ApplyApproval(now)
		},
	)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}

	if err := s.recordDecision(ctx, decisionlog.AdminAction{
		ID:                 uuid.NewString(),
		RegistrationNumber: regNumber,
		Action:             decisionlog.ActionApproved,
		ActionDate:         now,
		AdminID:            adminID,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncDecision(string(decisionlog.ActionApproved))
	return reg, nil
}

// Reject applies a terminal rejection decision. The reason is mandatory and
// is stored on both the registration and the log entry.
func (s *Service) Reject(ctx context.Context, regNumber id.RegistrationNumber, adminID, reason string) (*registration.ParentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Reject")
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.NewValidation(map[string]string{"reason": "required"})
	}

	now := requestcontext.Now(ctx)
	reg, err := s.registrations.Execute(ctx, regNumber,
		func(r *registration.ParentRegistration) error {
			return r.CanDecide()
		},
		func(r *registration.ParentRegistration) {
			r.ApplyRejection(now, reason)
		},
	)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}

	if err := s.recordDecision(ctx, decisionlog.AdminAction{
		ID:                 uuid.NewString(),
		RegistrationNumber: regNumber,
		Action:             decisionlog.ActionRejected,
		Reason:             reason,
		ActionDate:         now,
		AdminID:            adminID,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncDecision(string(decisionlog.ActionRejected))
	return reg, nil
}

// BulkResult reports the outcome of one item in a bulk decision.
type BulkResult struct {
	RegistrationNumber id.RegistrationNumber `json:"registration_number"`
	OK                 bool                  `json:"ok"`
	Error              string                `json:"error,omitempty"`
}

// BulkApprove applies Approve to each registration sequentially.
// Best-effort: a failure is recorded per item and does not roll back
// successes already applied.
func (s *Service) BulkApprove(ctx context.Context, regNumbers []id.RegistrationNumber, adminID string) []BulkResult {
	results := make([]BulkResult, 0, len(regNumbers))
	for _, rn := range regNumbers {
		_, err := s.Approve(ctx, rn, adminID)
		results = append(results, toBulkResult(rn, err))
	}
	return results
}

// BulkReject applies Reject with a shared reason to each registration
// sequentially, with the same best-effort policy as BulkApprove.
func (s *Service) BulkReject(ctx context.Context, regNumbers []id.RegistrationNumber, adminID, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(regNumbers))
	for _, rn := range regNumbers {
		_, err := s.Reject(ctx, rn, adminID, reason)
		results = append(results, toBulkResult(rn, err))
	}
	return results
}

// Get returns a registration without reconciling. Most readers want
// Reconcile instead.
func (s *Service) Get(ctx context.Context, regNumber id.RegistrationNumber) (*registration.ParentRegistration, error) {
	reg, err := s.registrations.FindByNumber(ctx, regNumber)
	if err != nil {
		return nil, translateRegistrationErr(err)
	}
	return reg, nil
}

// List returns registrations matching the filter. The admin UI lists open
// registrations with Filter{Statuses: {pending, under_review}}.
func (s *Service) List(ctx context.Context, filter registration.Filter) ([]*registration.ParentRegistration, error) {
	regs, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

// FindByHospitalID returns the non-rejected registration referencing the
// hospital ID. The hospital lookup view derives its display status from the
// returned registration's status.
func (s *Service) FindByHospitalID(ctx context.Context, hospitalID id.HospitalID) (*registration.ParentRegistration, error) {
	reg, err := s.registrations.FindByHospitalID(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no registration references this hospital ID")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration by hospital ID")
	}
	return reg, nil
}

// recordDecision appends the action to the authoritative log and mirrors it
// onto the event stream. The append is fail-closed; publishing is not — the
// log is the source of truth and the stream is a mirror.
func (s *Service) recordDecision(ctx context.Context, action decisionlog.AdminAction) error {
	if err := s.actions.Append(ctx, action); err != nil {
		s.logger.ErrorContext(ctx, "admin action append failed",
			"registration_number", action.RegistrationNumber,
			"action", action.Action,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record admin action")
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, action); err != nil {
			s.logger.WarnContext(ctx, "decision event publish failed",
				"registration_number", action.RegistrationNumber,
				"error", err,
			)
		}
	}
	return nil
}

func toBulkResult(rn id.RegistrationNumber, err error) BulkResult {
	if err != nil {
		return BulkResult{RegistrationNumber: rn, OK: false, Error: err.Error()}
	}
	return BulkResult{RegistrationNumber: rn, OK: true}
}

func translateRegistrationErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "registration store failure")
}
