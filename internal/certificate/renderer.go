// Package certificate derives printable certificate payloads from approved
// registrations. Rendering is a pure transformation: no storage, no clock,
// deterministic for a given record.
package certificate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"birthregistry/internal/registration"
	dErrors "birthregistry/pkg/domain-errors"
)

// View is the flat, display-ready certificate payload. Absent optional
// fields render as "N/A" so the presentation layer never branches.
type View struct {
	CertificateNumber string `json:"certificate_number"`

	ChildName    string `json:"child_name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	PlaceOfBirth string `json:"place_of_birth"`

	FatherName string `json:"father_name"`
	MotherName string `json:"mother_name"`
	Address    string `json:"address"`

	RegistrationNumber string `json:"registration_number"`
	HospitalID         string `json:"hospital_id"`
	RegistrationDate   string `json:"registration_date"`
	IssueDate          string `json:"issue_date"`

	LocalArea string `json:"local_area"`
	State     string `json:"state"`

	// VerificationToken is an opaque HMAC suitable for embedding in a QR
	// payload; VerificationURL is the citizen-facing link.
	VerificationToken string `json:"verification_token"`
	VerificationURL   string `json:"verification_url"`
}

const displayDate = "02/01/2006"

// Renderer builds certificate views and verification tokens.
type Renderer struct {
	hmacKey []byte
	origin  string
}

func NewRenderer(hmacKey, origin string) *Renderer {
	return &Renderer{hmacKey: []byte(hmacKey), origin: strings.TrimRight(origin, "/")}
}

// Render derives the certificate view for an approved registration.
// Fails with CodeNotApproved for any other status.
func (re *Renderer) Render(reg *registration.ParentRegistration) (*View, error) {
	if reg.Status != registration.StatusApproved {
		return nil, dErrors.New(dErrors.CodeNotApproved, "certificate is only available for approved registrations")
	}

	issueDate := ""
	if reg.ApprovalDate != nil {
		issueDate = reg.ApprovalDate.Format(displayDate)
	}

	return &View{
		CertificateNumber:  certificateNumber(reg),
		ChildName:          orNA(reg.FinalChildName),
		Gender:             orNA(reg.ChildGender),
		DateOfBirth:        formatDate(reg.ChildDOB),
		PlaceOfBirth:       firstNonEmpty(reg.PlaceOfBirth, reg.HospitalData.HospitalName, "N/A"),
		FatherName:         orNA(reg.FatherName),
		MotherName:         orNA(reg.MotherName),
		Address:            joinAddress(reg),
		RegistrationNumber: reg.RegistrationNumber.String(),
		HospitalID:         orNA(reg.HospitalData.HospitalID.String()),
		RegistrationDate:   formatDate(reg.SubmissionDate),
		IssueDate:          orNA(issueDate),
		LocalArea:          orNA(reg.City),
		State:              orNA(reg.State),
		VerificationToken:  re.token(reg),
		VerificationURL:    fmt.Sprintf("%s/certificate?regNumber=%s", re.origin, reg.RegistrationNumber),
	}, nil
}

// Verify checks a presented token against the registration. A token only
// verifies for the approved record it was rendered from.
func (re *Renderer) Verify(reg *registration.ParentRegistration, token string) error {
	if reg.Status != registration.StatusApproved {
		return dErrors.New(dErrors.CodeNotApproved, "registration is not approved")
	}
	if !hmac.Equal([]byte(re.token(reg)), []byte(token)) {
		return dErrors.New(dErrors.CodeBadRequest, "verification token does not match")
	}
	return nil
}

// certificateNumber is BC/<year>/<MMDD>/<sequence> where year, month, and
// day come from the submission date and the sequence is the last token of
// the registration number.
func certificateNumber(reg *registration.ParentRegistration) string {
	d := reg.SubmissionDate
	return fmt.Sprintf("BC/%d/%s/%s", d.Year(), d.Format("0102"), reg.RegistrationNumber.SequenceSuffix())
}

// token binds registration number, child name, date of birth, and issue
// date under the renderer's key.
func (re *Renderer) token(reg *registration.ParentRegistration) string {
	issue := ""
	if reg.ApprovalDate != nil {
		issue = reg.ApprovalDate.UTC().Format(time.RFC3339)
	}
	mac := hmac.New(sha256.New, re.hmacKey)
	fmt.Fprintf(mac, "%s|%s|%s|%s",
		reg.RegistrationNumber,
		reg.FinalChildName,
		reg.ChildDOB.UTC().Format(time.RFC3339),
		issue,
	)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func joinAddress(reg *registration.ParentRegistration) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{reg.Address, reg.City, reg.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	joined := strings.Join(parts, ", ")
	if reg.Pincode != "" {
		joined = joined + " - " + reg.Pincode
	}
	return orNA(strings.TrimSpace(joined))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(displayDate)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
