package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"birthregistry/internal/hospital"
	"birthregistry/internal/registration"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
)

type RendererSuite struct {
	suite.Suite
	renderer *Renderer
	now      time.Time
}

func TestRendererSuite(t *testing.T) {
	suite.Run(t, new(RendererSuite))
}

func (s *RendererSuite) SetupTest() {
	s.renderer = NewRenderer("test-signing-key", "https://certificates.example.gov.in/")
	s.now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *RendererSuite) approvedRegistration() *registration.ParentRegistration {
	approval := s.now.Add(48 * time.Hour)
	return &registration.ParentRegistration{
		RegistrationNumber: id.RegistrationNumber("REG-20250314-042"),
		HospitalData: hospital.Notification{
			HospitalID:   id.HospitalID("HSP-123456789"),
			HospitalName: "City General Hospital",
		},
		FinalChildName: "Aarav Sharma",
		ChildGender:    "male",
		ChildDOB:       time.Date(2025, 3, 4, 8, 15, 0, 0, time.UTC),
		FatherName:     "Rohit Sharma",
		MotherName:     "Priya Sharma",
		Address:        "12 MG Road",
		City:           "Pune",
		State:          "Maharashtra",
		Pincode:        "411001",
		Status:         registration.StatusApproved,
		SubmissionDate: s.now,
		LastUpdated:    approval,
		ApprovalDate:   &approval,
	}
}

func (s *RendererSuite) TestRenderApproved() {
	view, err := s.renderer.Render(s.approvedRegistration())
	s.Require().NoError(err)

	s.Equal("BC/2025/0314/042", view.CertificateNumber)
	s.Equal("Aarav Sharma", view.ChildName)
	s.Equal("04/03/2025", view.DateOfBirth)
	s.Equal("City General Hospital", view.PlaceOfBirth)
	s.Equal("12 MG Road, Pune, Maharashtra - 411001", view.Address)
	s.Equal("REG-20250314-042", view.RegistrationNumber)
	s.Equal("14/03/2025", view.RegistrationDate)
	s.Equal("16/03/2025", view.IssueDate)
	s.Equal("Pune", view.LocalArea)
	s.Equal("Maharashtra", view.State)
	s.NotEmpty(view.VerificationToken)
	s.Equal("https://certificates.example.gov.in/certificate?regNumber=REG-20250314-042", view.VerificationURL)
}

func (s *RendererSuite) TestRenderRequiresApproval() {
	for _, status := range []registration.Status{
		registration.StatusPending,
		registration.StatusUnderReview,
		registration.StatusRejected,
	} {
		reg := s.approvedRegistration()
		reg.Status = status
		reg.ApprovalDate = nil

		_, err := s.renderer.Render(reg)
		s.Require().Error(err, "status %s", status)
		s.True(dErrors.HasCode(err, dErrors.CodeNotApproved))
	}
}

func (s *RendererSuite) TestRenderIsDeterministic() {
	reg := s.approvedRegistration()
	first, err := s.renderer.Render(reg)
	s.Require().NoError(err)
	second, err := s.renderer.Render(reg)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *RendererSuite) TestMissingFieldsRenderAsNA() {
	reg := s.approvedRegistration()
	reg.PlaceOfBirth = ""
	reg.HospitalData.HospitalName = ""
	reg.City = ""
	reg.State = ""
	reg.Address = ""
	reg.Pincode = ""

	view, err := s.renderer.Render(reg)
	s.Require().NoError(err)
	s.Equal("N/A", view.PlaceOfBirth)
	s.Equal("N/A", view.LocalArea)
	s.Equal("N/A", view.State)
	s.Equal("N/A", view.Address)
}

func (s *RendererSuite) TestExplicitPlaceOfBirthWins() {
	reg := s.approvedRegistration()
	reg.PlaceOfBirth = "Home, Pune"

	view, err := s.renderer.Render(reg)
	s.Require().NoError(err)
	s.Equal("Home, Pune", view.PlaceOfBirth)
}

func (s *RendererSuite) TestVerify() {
	reg := s.approvedRegistration()
	view, err := s.renderer.Render(reg)
	s.Require().NoError(err)

	s.Run("accepts the rendered token", func() {
		s.NoError(s.renderer.Verify(reg, view.VerificationToken))
	})

	s.Run("rejects a tampered token", func() {
		err := s.renderer.Verify(reg, view.VerificationToken+"x")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects a token signed with a different key", func() {
		other := NewRenderer("other-key", "https://certificates.example.gov.in")
		otherView, err := other.Render(reg)
		s.Require().NoError(err)

		err = s.renderer.Verify(reg, otherView.VerificationToken)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("refuses non-approved registrations", func() {
		pending := s.approvedRegistration()
		pending.Status = registration.StatusPending
		err := s.renderer.Verify(pending, view.VerificationToken)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotApproved))
	})
}
