package models

import "time"

// AlertKind distinguishes notification waves. Duplicate suppression is keyed
// on (donor, request) only, matching the legacy behaviour; the kind column
// exists so a wave-aware suppression policy stays a query change.
type AlertKind string

const (
	AlertNewRequest     AlertKind = "new_request"
	AlertUnitsNeeded    AlertKind = "units_needed"
	AlertNotYetEligible AlertKind = "not_yet_eligible"
	AlertAcceptance     AlertKind = "acceptance"
	AlertDirect         AlertKind = "direct"
)

// DonorAlert is an informational message to a donor or a hospital, optionally
// tied to a request. Alerts are not read-tracked for correctness.
type DonorAlert struct {
	ID         string    `db:"id" json:"id"`
	DonorID    *string   `db:"donor_id" json:"donor_id,omitempty"`
	RequestID  *string   `db:"request_id" json:"request_id,omitempty"`
	HospitalID *string   `db:"hospital_id" json:"hospital_id,omitempty"`
	Kind       AlertKind `db:"kind" json:"kind"`
	Message    string    `db:"message" json:"message"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
