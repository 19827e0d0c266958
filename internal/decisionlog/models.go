// Package decisionlog keeps the append-only record of administrator
// decisions. The log, not the registration row, is the source of truth for
// status reconciliation.
package decisionlog

import (
	"time"

	id "birthregistry/pkg/domain"
)

// Action is an admin decision outcome.
type Action string

const (
	ActionApproved Action = "approved"
	ActionRejected Action = "rejected"
)

// AdminAction is one append-only log entry. Entries are never mutated or
// deleted; multiple entries may reference the same registration over time.
type AdminAction struct {
	ID                 string                `json:"id"`
	RegistrationNumber id.RegistrationNumber `json:"registration_number"`
	Action             Action                `json:"action"`
	Reason             string                `json:"reason,omitempty"`
	ActionDate         time.Time             `json:"action_date"`
	AdminID            string                `json:"admin_id"`
}
