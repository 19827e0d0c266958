package registration

import (
	"regexp"
	"strings"
	"time"

	"birthregistry/internal/hospital"
	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
)

// Status is the authoritative workflow state of a parent registration.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// IsTerminal reports whether no further transitions are defined.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsOpen reports whether the registration still awaits an admin decision.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

// ParentRegistration is a citizen-submitted application linking to a
// hospital notification.
//
// Invariants:
//   - HospitalData is an embedded by-value snapshot; later changes to the
//     source notification do not propagate
//   - approved and rejected are mutually exclusive terminal states, reachable
//     only from pending/under_review
//   - at most one of ApprovalDate/RejectionDate is ever set
//   - RejectionReason is non-empty iff Status is rejected
//   - SubmissionDate is immutable; records are superseded, never deleted
type ParentRegistration struct {
	RegistrationNumber id.RegistrationNumber `json:"registration_number"`

	HospitalData hospital.Notification `json:"hospital_data"`

	FinalChildName string    `json:"final_child_name"`
	ChildGender    string    `json:"child_gender"`
	ChildDOB       time.Time `json:"child_dob"`
	ChildTOB       string    `json:"child_tob"`
	PlaceOfBirth   string    `json:"place_of_birth,omitempty"`

	FatherName string `json:"father_name"`
	MotherName string `json:"mother_name"`
	Aadhaar    string `json:"aadhaar"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`

	Status          Status     `json:"status"`
	SubmissionDate  time.Time  `json:"submission_date"`
	LastUpdated     time.Time  `json:"last_updated"`
	ApprovalDate    *time.Time `json:"approval_date,omitempty"`
	RejectionDate   *time.Time `json:"rejection_date,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	// Supersedes references the rejected registration this one replaces,
	// when the submission is a resubmission.
	Supersedes id.RegistrationNumber `json:"supersedes,omitempty"`
}

var (
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// maxChildAge bounds how far in the past a date of birth may lie.
const maxChildAge = 100 * 365 * 24 * time.Hour

// SubmitRequest carries the parent intake fields. HospitalID must reference
// an existing notification; its data is snapshotted into the registration.
type SubmitRequest struct {
	HospitalID id.HospitalID `json:"hospital_id"`

	FinalChildName string    `json:"final_child_name"`
	ChildGender    string    `json:"child_gender"`
	ChildDOB       time.Time `json:"child_dob"`
	ChildTOB       string    `json:"child_tob"`
	PlaceOfBirth   string    `json:"place_of_birth"`

	FatherName string `json:"father_name"`
	MotherName string `json:"mother_name"`
	Aadhaar    string `json:"aadhaar"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`

	Supersedes id.RegistrationNumber `json:"supersedes"`
}

// NewRegistration validates the submission and builds a pending registration
// with the hospital snapshot embedded by value.
func NewRegistration(regNumber id.RegistrationNumber, req SubmitRequest, snapshot hospital.Notification, now time.Time) (*ParentRegistration, error) {
	fields := map[string]string{}

	if strings.TrimSpace(req.FinalChildName) == "" {
		fields["final_child_name"] = "required"
	}
	if req.ChildGender == "" {
		fields["child_gender"] = "required"
	}
	switch {
	case req.ChildDOB.IsZero():
		fields["child_dob"] = "required"
	case req.ChildDOB.After(now):
		fields["child_dob"] = "must not be in the future"
	case now.Sub(req.ChildDOB) > maxChildAge:
		fields["child_dob"] = "more than 100 years in the past"
	}
	if strings.TrimSpace(req.FatherName) == "" {
		fields["father_name"] = "required"
	}
	if strings.TrimSpace(req.MotherName) == "" {
		fields["mother_name"] = "required"
	}
	if !aadhaarPattern.MatchString(req.Aadhaar) {
		fields["aadhaar"] = "must be 12 digits"
	}
	if !phonePattern.MatchString(req.Phone) {
		fields["phone"] = "must be 10 digits"
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		fields["email"] = "malformed"
	}
	if strings.TrimSpace(req.Address) == "" {
		fields["address"] = "required"
	}
	if !pincodePattern.MatchString(req.Pincode) {
		fields["pincode"] = "must be 6 digits"
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}

	return &ParentRegistration{
		RegistrationNumber: regNumber,
		HospitalData:       snapshot,
		FinalChildName:     strings.TrimSpace(req.FinalChildName),
		ChildGender:        req.ChildGender,
		ChildDOB:           req.ChildDOB,
		ChildTOB:           req.ChildTOB,
		PlaceOfBirth:       strings.TrimSpace(req.PlaceOfBirth),
		FatherName:         strings.TrimSpace(req.FatherName),
		MotherName:         strings.TrimSpace(req.MotherName),
		Aadhaar:            req.Aadhaar,
		Phone:              req.Phone,
		Email:              req.Email,
		Address:            strings.TrimSpace(req.Address),
		City:               strings.TrimSpace(req.City),
		State:              strings.TrimSpace(req.State),
		Pincode:            req.Pincode,
		Status:             StatusPending,
		SubmissionDate:     now,
		LastUpdated:        now,
		Supersedes:         req.Supersedes,
	}, nil
}

// CanMarkUnderReview checks the pending → under_review transition.
// under_review → under_review is allowed so the operation stays idempotent.
func (r *ParentRegistration) CanMarkUnderReview() error {
	if r.Status.IsOpen() {
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidTransition, "registration is already "+string(r.Status))
}

// ApplyUnderReview transitions to under_review. Call CanMarkUnderReview first.
func (r *ParentRegistration) ApplyUnderReview(now time.Time) {
	if r.Status == StatusUnderReview {
		return
	}
	r.Status = StatusUnderReview
	r.LastUpdated = now
}

// CanDecide checks that a terminal decision is still possible.
func (r *ParentRegistration) CanDecide() error {
	if r.Status.IsOpen() {
		return nil
	}
	return dErrors.New(dErrors.CodeInvalidTransition, "registration is already "+string(r.Status))
}

// ApplyApproval transitions to approved. Call CanDecide first.
func (r *ParentRegistration) ApplyApproval(now time.Time) {
	r.Status = StatusApproved
	r.ApprovalDate = &now
	r.LastUpdated = now
}

// ApplyRejection transitions to rejected with the given reason.
// Call CanDecide first; the service validates the reason.
func (r *ParentRegistration) ApplyRejection(now time.Time, reason string) {
	r.Status = StatusRejected
	r.RejectionDate = &now
	r.RejectionReason = reason
	r.LastUpdated = now
}

// EffectiveLastUpdated is the timestamp the reconciler compares action dates
// against. Falls back to the submission date for records written before
// LastUpdated existed.
func (r *ParentRegistration) EffectiveLastUpdated() time.Time {
	if r.LastUpdated.IsZero() {
		return r.SubmissionDate
	}
	return r.LastUpdated
}

// Filter narrows List results.
type Filter struct {
	Statuses []Status
}

// Matches reports whether the registration passes the filter.
func (f Filter) Matches(r *ParentRegistration) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}
