package hospital

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
	"birthregistry/pkg/platform/sentinel"
	"birthregistry/pkg/requestcontext"
)

type HospitalServiceSuite struct {
	suite.Suite
	store *InMemoryStore
	svc   *Service
	ctx   context.Context
}

func TestHospitalServiceSuite(t *testing.T) {
	suite.Run(t, new(HospitalServiceSuite))
}

func (s *HospitalServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.svc = NewService(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
}

func validRequest() CreateRequest {
	return CreateRequest{
		ChildName:       "Aarav Sharma",
		Gender:          "male",
		DateOfBirth:     time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
		TimeOfBirth:     "04:32",
		WeightKg:        3.2,
		AttendingDoctor: "Dr. Mehta",
		HospitalName:    "City General Hospital",
		HospitalRegNo:   "CGH-4411",
	}
}

func (s *HospitalServiceSuite) TestCreateMintsHospitalID() {
	n, err := s.svc.Create(s.ctx, validRequest())
	s.Require().NoError(err)
	s.Regexp(`^HSP-\d{9}$`, n.HospitalID.String())
	s.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), n.UploadDate)

	found, err := s.svc.Get(s.ctx, n.HospitalID)
	s.Require().NoError(err)
	s.Equal(n.ChildName, found.ChildName)
}

func (s *HospitalServiceSuite) TestCreateValidation() {
	s.Run("rejects future date of birth", func() {
		req := validRequest()
		req.DateOfBirth = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		_, err := s.svc.Create(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Fields(err), "date_of_birth")
	})

	s.Run("rejects out-of-range weight", func() {
		req := validRequest()
		req.WeightKg = 12
		_, err := s.svc.Create(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Fields(err), "weight_kg")
	})

	s.Run("rejects missing child name", func() {
		req := validRequest()
		req.ChildName = "  "
		_, err := s.svc.Create(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *HospitalServiceSuite) TestGetUnknownID() {
	_, err := s.svc.Get(s.ctx, id.HospitalID("HSP-000000000"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// conflictStore rejects every save with ErrAlreadyUsed to exercise the
// retry cap.
type conflictStore struct{ saves int }

func (c *conflictStore) Save(context.Context, *Notification) error {
	c.saves++
	return sentinel.ErrAlreadyUsed
}

func (c *conflictStore) FindByID(context.Context, id.HospitalID) (*Notification, error) {
	return nil, sentinel.ErrNotFound
}

func (s *HospitalServiceSuite) TestCreateIdentifierExhausted() {
	store := &conflictStore{}
	svc := NewService(store)

	_, err := svc.Create(s.ctx, validRequest())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeIdentifierExhausted))
	s.Equal(5, store.saves)
}

func (s *HospitalServiceSuite) TestStoreReturnsCopies() {
	n, err := s.svc.Create(s.ctx, validRequest())
	s.Require().NoError(err)

	first, err := s.svc.Get(s.ctx, n.HospitalID)
	s.Require().NoError(err)
	first.ChildName = "mutated"

	second, err := s.svc.Get(s.ctx, n.HospitalID)
	s.Require().NoError(err)
	s.Equal("Aarav Sharma", second.ChildName)
}
