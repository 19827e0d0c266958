package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"birthregistry/internal/decisionlog"
	"birthregistry/internal/hospital"
	"birthregistry/internal/registration"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/platform/sentinel"
	"birthregistry/pkg/requestcontext"
)

// seqRand returns 0, 1, 2, ... so every mint attempt produces a new suffix.
type seqRand struct{ n int }

func (r *seqRand) IntN(int) int {
	v := r.n
	r.n++
	return v
}

// capturePublisher records published actions.
type capturePublisher struct {
	published []decisionlog.AdminAction
}

func (p *capturePublisher) Publish(_ context.Context, action decisionlog.AdminAction) error {
	p.published = append(p.published, action)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	regStore  *registration.InMemoryStore
	hospitals *hospital.InMemoryStore
	actions   *decisionlog.InMemoryStore
	publisher *capturePublisher
	svc       *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.regStore = registration.NewInMemoryStore()
	s.hospitals = hospital.NewInMemoryStore()
	s.actions = decisionlog.NewInMemoryStore()
	s.publisher = &capturePublisher{}
	s.svc = New(s.regStore, s.hospitals, s.actions,
		WithPublisher(s.publisher),
		WithRand(&seqRand{}),
	)
	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) seedNotification(hospitalID string) id.HospitalID {
	hid := id.HospitalID(hospitalID)
	s.Require().NoError(s.hospitals.Save(s.ctx, &hospital.Notification{
		HospitalID:   hid,
		ChildName:    "Baby Sharma",
		Gender:       "male",
		DateOfBirth:  s.now.AddDate(0, 0, -10),
		WeightKg:     3.2,
		HospitalName: "City General Hospital",
		UploadDate:   s.now.AddDate(0, 0, -9),
	}))
	return hid
}

func (s *ServiceSuite) submitRequest(hospitalID id.HospitalID) registration.SubmitRequest {
	return registration.SubmitRequest{
		HospitalID:     hospitalID,
		FinalChildName: "Aarav Sharma",
		ChildGender:    "male",
		ChildDOB:       s.now.AddDate(0, 0, -10),
		ChildTOB:       "08:15",
		FatherName:     "Rohit Sharma",
		MotherName:     "Priya Sharma",
		Aadhaar:        "123412341234",
		Phone:          "9876543210",
		Address:        "12 MG Road",
		City:           "Pune",
		State:          "Maharashtra",
		Pincode:        "411001",
	}
}

func (s *ServiceSuite) submit(hospitalID id.HospitalID) *registration.ParentRegistration {
	reg, err := s.svc.Submit(s.ctx, s.submitRequest(hospitalID))
	s.Require().NoError(err)
	return reg
}

func (s *ServiceSuite) TestSubmit() {
	s.Run("creates a pending registration with the hospital snapshot", func() {
		hid := s.seedNotification("HSP-123456789")
		reg := s.submit(hid)

		s.Regexp(`^REG-20250314-\d{3}$`, reg.RegistrationNumber.String())
		s.Equal(registration.StatusPending, reg.Status)
		s.Equal("City General Hospital", reg.HospitalData.HospitalName)
		s.Equal(s.now, reg.SubmissionDate)
	})

	s.Run("rejects a malformed hospital ID", func() {
		req := s.submitRequest("HSP-12")
		_, err := s.svc.Submit(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects an unknown hospital ID", func() {
		_, err := s.svc.Submit(s.ctx, s.submitRequest("HSP-999999999"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("a hospital ID backs at most one open registration", func() {
		hid := s.seedNotification("HSP-222222222")
		s.submit(hid)

		_, err := s.svc.Submit(s.ctx, s.submitRequest(hid))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestResubmissionAfterRejection() {
	hid := s.seedNotification("HSP-123456789")
	first := s.submit(hid)

	_, err := s.svc.Reject(s.ctx, first.RegistrationNumber, "admin-1", "aadhaar mismatch")
	s.Require().NoError(err)

	s.Run("rejection releases the hospital ID claim", func() {
		req := s.submitRequest(hid)
		req.Supersedes = first.RegistrationNumber
		second, err := s.svc.Submit(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(first.RegistrationNumber, second.Supersedes)
		s.NotEqual(first.RegistrationNumber, second.RegistrationNumber)
	})

	s.Run("supersedes must name an existing registration", func() {
		hid2 := s.seedNotification("HSP-333333333")
		req := s.submitRequest(hid2)
		req.Supersedes = "REG-20250301-999"
		_, err := s.svc.Submit(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestResubmissionWithoutSupersedes() {
	hid := s.seedNotification("HSP-123456789")
	first := s.submit(hid)

	_, err := s.svc.Reject(s.ctx, first.RegistrationNumber, "admin-1", "aadhaar mismatch")
	s.Require().NoError(err)

	// The back-reference is optional; a plain resubmission reclaims the
	// released hospital ID.
	second, err := s.svc.Submit(s.ctx, s.submitRequest(hid))
	s.Require().NoError(err)
	s.True(second.Supersedes.IsZero())
}

func (s *ServiceSuite) TestFindByHospitalID() {
	hid := s.seedNotification("HSP-123456789")
	reg := s.submit(hid)

	found, err := s.svc.FindByHospitalID(s.ctx, hid)
	s.Require().NoError(err)
	s.Equal(reg.RegistrationNumber, found.RegistrationNumber)

	_, err = s.svc.FindByHospitalID(s.ctx, "HSP-999999999")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSupersedesRequiresRejectedPrior() {
	hid := s.seedNotification("HSP-123456789")
	first := s.submit(hid)

	hid2 := s.seedNotification("HSP-444444444")
	req := s.submitRequest(hid2)
	req.Supersedes = first.RegistrationNumber

	_, err := s.svc.Submit(s.ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestMarkUnderReview() {
	hid := s.seedNotification("HSP-123456789")
	reg := s.submit(hid)

	reviewed, err := s.svc.MarkUnderReview(s.ctx, reg.RegistrationNumber)
	s.Require().NoError(err)
	s.Equal(registration.StatusUnderReview, reviewed.Status)

	// Idempotent.
	again, err := s.svc.MarkUnderReview(s.ctx, reg.RegistrationNumber)
	s.Require().NoError(err)
	s.Equal(registration.StatusUnderReview, again.Status)
}

func (s *ServiceSuite) TestApprove() {
	hid := s.seedNotification("HSP-123456789")
	reg := s.submit(hid)

	laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	approved, err := s.svc.Approve(laterCtx, reg.RegistrationNumber, "admin-1")
	s.Require().NoError(err)
	s.Equal(registration.StatusApproved, approved.Status)
	s.Require().NotNil(approved.ApprovalDate)
	s.Equal(s.now.Add(time.Hour), *approved.ApprovalDate)

	s.Run("appends to the action log", func() {
		actions, err := s.actions.ListByRegistration(s.ctx, reg.RegistrationNumber)
		s.Require().NoError(err)
		s.Require().Len(actions, 1)
		s.Equal(decisionlog.ActionApproved, actions[0].Action)
		s.Equal("admin-1", actions[0].AdminID)
	})

	s.Run("mirrors onto the event stream", func() {
		s.Require().Len(s.publisher.published, 1)
		s.Equal(reg.RegistrationNumber, s.publisher.published[0].RegistrationNumber)
	})

	s.Run("a decided registration cannot be decided again", func() {
		_, err := s.svc.Reject(s.ctx, reg.RegistrationNumber, "admin-2", "changed my mind")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *ServiceSuite) TestRejectRequiresReason() {
	hid := s.seedNotification("HSP-123456789")
	reg := s.submit(hid)

	for _, reason := range []string{"", "   "} {
		_, err := s.svc.Reject(s.ctx, reg.RegistrationNumber, "admin-1", reason)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Fields(err), "reason")
	}

	// The registration is untouched.
	current, err := s.svc.Get(s.ctx, reg.RegistrationNumber)
	s.Require().NoError(err)
	s.Equal(registration.StatusPending, current.Status)

	actions, err := s.actions.ListByRegistration(s.ctx, reg.RegistrationNumber)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestBulkDecisionsAreBestEffort() {
	hidA := s.seedNotification("HSP-111111111")
	hidB := s.seedNotification("HSP-222222222")
	regA := s.submit(hidA)
	regB := s.submit(hidB)

	_, err := s.svc.Reject(s.ctx, regB.RegistrationNumber, "admin-1", "duplicate")
	s.Require().NoError(err)

	results := s.svc.BulkApprove(s.ctx, []id.RegistrationNumber{
		regA.RegistrationNumber,
		regB.RegistrationNumber,
		"REG-20250314-999",
	}, "admin-1")

	s.Require().Len(results, 3)
	s.True(results[0].OK)
	s.False(results[1].OK)
	s.Contains(results[1].Error, "already rejected")
	s.False(results[2].OK)

	// The failure did not roll back the first approval.
	approved, err := s.svc.Get(s.ctx, regA.RegistrationNumber)
	s.Require().NoError(err)
	s.Equal(registration.StatusApproved, approved.Status)
}

func (s *ServiceSuite) TestGetUnknownRegistration() {
	_, err := s.svc.Get(s.ctx, "REG-20250314-999")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestList() {
	hidA := s.seedNotification("HSP-111111111")
	hidB := s.seedNotification("HSP-222222222")
	regA := s.submit(hidA)
	s.submit(hidB)

	_, err := s.svc.Approve(s.ctx, regA.RegistrationNumber, "admin-1")
	s.Require().NoError(err)

	open, err := s.svc.List(s.ctx, registration.Filter{
		Statuses: []registration.Status{registration.StatusPending, registration.StatusUnderReview},
	})
	s.Require().NoError(err)
	s.Len(open, 1)
}

// conflictRegStore reports every save as a collision to drive the mint loop
// to exhaustion.
type conflictRegStore struct {
	registration.Store
	saves int
}

func (c *conflictRegStore) Save(context.Context, *registration.ParentRegistration) error {
	c.saves++
	return sentinel.ErrAlreadyUsed
}

func (s *ServiceSuite) TestNumberMintingExhaustion() {
	hid := s.seedNotification("HSP-123456789")

	conflicting := &conflictRegStore{Store: s.regStore}
	svc := New(conflicting, s.hospitals, s.actions, WithRand(&seqRand{}))

	_, err := svc.Submit(s.ctx, s.submitRequest(hid))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeIdentifierExhausted))
	s.Equal(5, conflicting.saves)
}
