package hospital

import (
	"strings"
	"time"

	id "birthregistry/pkg/domain"
	dErrors "birthregistry/pkg/domain-errors"
)

// Notification is a hospital-submitted record of a birth event.
//
// Invariants:
//   - HospitalID is unique and assigned at creation
//   - DateOfBirth is not in the future
//   - WeightKg is within 0.5–10
//   - Immutable after creation; never deleted
//
// Notifications carry no status of their own. The display status citizens
// see is derived from the linked registration at render time, which avoids
// dual writes for a value that is never authoritative here.
type Notification struct {
	HospitalID      id.HospitalID `json:"hospital_id"`
	ChildName       string        `json:"child_name"`
	Gender          string        `json:"gender"`
	DateOfBirth     time.Time     `json:"date_of_birth"`
	TimeOfBirth     string        `json:"time_of_birth"`
	WeightKg        float64       `json:"weight_kg"`
	AttendingDoctor string        `json:"attending_doctor"`
	HospitalName    string        `json:"hospital_name"`
	HospitalRegNo   string        `json:"hospital_reg_no"`
	UploadDate      time.Time     `json:"upload_date"`
}

// NewNotification validates intake fields and builds a notification. The
// hospital ID is minted by the service, not the caller.
func NewNotification(hospitalID id.HospitalID, req CreateRequest, now time.Time) (*Notification, error) {
	fields := map[string]string{}

	if strings.TrimSpace(req.ChildName) == "" {
		fields["child_name"] = "required"
	}
	if req.Gender == "" {
		fields["gender"] = "required"
	}
	if req.DateOfBirth.IsZero() {
		fields["date_of_birth"] = "required"
	} else if req.DateOfBirth.After(now) {
		fields["date_of_birth"] = "must not be in the future"
	}
	if req.WeightKg < 0.5 || req.WeightKg > 10 {
		fields["weight_kg"] = "must be between 0.5 and 10"
	}
	if strings.TrimSpace(req.HospitalName) == "" {
		fields["hospital_name"] = "required"
	}
	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}

	return &Notification{
		HospitalID:      hospitalID,
		ChildName:       strings.TrimSpace(req.ChildName),
		Gender:          req.Gender,
		DateOfBirth:     req.DateOfBirth,
		TimeOfBirth:     req.TimeOfBirth,
		WeightKg:        req.WeightKg,
		AttendingDoctor: strings.TrimSpace(req.AttendingDoctor),
		HospitalName:    strings.TrimSpace(req.HospitalName),
		HospitalRegNo:   strings.TrimSpace(req.HospitalRegNo),
		UploadDate:      now,
	}, nil
}

// CreateRequest carries the intake fields from the hospital staff UI.
type CreateRequest struct {
	ChildName       string    `json:"child_name"`
	Gender          string    `json:"gender"`
	DateOfBirth     time.Time `json:"date_of_birth"`
	TimeOfBirth     string    `json:"time_of_birth"`
	WeightKg        float64   `json:"weight_kg"`
	AttendingDoctor string    `json:"attending_doctor"`
	HospitalName    string    `json:"hospital_name"`
	HospitalRegNo   string    `json:"hospital_reg_no"`
}
