// Package domain holds identifier value types shared across the service.
package domain

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	dErrors "birthregistry/pkg/domain-errors"
)

// HospitalID identifies a hospital birth notification. Format: HSP- followed
// by nine digits (six from the mint timestamp, three random).
type HospitalID string

// RegistrationNumber identifies a parent registration. Format:
// REG-YYYYMMDD-NNN where the date is the submission date.
type RegistrationNumber string

var (
	hospitalIDPattern         = regexp.MustCompile(`^HSP-\d{9}$`)
	registrationNumberPattern = regexp.MustCompile(`^REG-\d{8}-\d{3}$`)
)

// Rand is the randomness source used by the identifier constructors. It is
// an interface so tests can inject a deterministic source.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the process-wide math/rand/v2 source, which is safe for
// concurrent use.
var DefaultRand Rand = globalRand{}

// NewHospitalID mints a hospital ID from the given time and randomness
// source. Collisions are improbable but not impossible; the store boundary
// is the uniqueness authority and callers retry on conflict.
func NewHospitalID(now time.Time, rnd Rand) HospitalID {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	tail := millis[len(millis)-6:]
	return HospitalID(fmt.Sprintf("HSP-%s%03d", tail, rnd.IntN(1000)))
}

// NewRegistrationNumber mints a registration number for the given submission
// date. The three-digit suffix is random; uniqueness is enforced by the
// store with caller-side retries.
func NewRegistrationNumber(date time.Time, rnd Rand) RegistrationNumber {
	return RegistrationNumber(fmt.Sprintf("REG-%s-%03d", date.Format("20060102"), rnd.IntN(1000)))
}

// ParseHospitalID validates the wire format of a hospital ID.
func ParseHospitalID(s string) (HospitalID, error) {
	if !hospitalIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeBadRequest, "hospital ID must match HSP-XXXXXXXXX")
	}
	return HospitalID(s), nil
}

// ParseRegistrationNumber validates the wire format of a registration number.
func ParseRegistrationNumber(s string) (RegistrationNumber, error) {
	if !registrationNumberPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeBadRequest, "registration number must match REG-YYYYMMDD-NNN")
	}
	return RegistrationNumber(s), nil
}

func (h HospitalID) String() string { return string(h) }
func (h HospitalID) IsZero() bool   { return h == "" }

func (r RegistrationNumber) String() string { return string(r) }
func (r RegistrationNumber) IsZero() bool   { return r == "" }

// SequenceSuffix returns the last dash-delimited token of the registration
// number. The certificate number derivation reuses it.
func (r RegistrationNumber) SequenceSuffix() string {
	parts := strings.Split(string(r), "-")
	return parts[len(parts)-1]
}
