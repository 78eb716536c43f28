package models

import "time"

// AcceptanceStatus tracks a donor's commitment to a request. The only
// transition is accepted -> completed, performed by hospital confirmation.
type AcceptanceStatus string

const (
	AcceptanceAccepted  AcceptanceStatus = "accepted"
	AcceptanceCompleted AcceptanceStatus = "completed"
)

// DonorAcceptance records a donor's commitment to fulfill part of a blood
// request. At most one acceptance may exist per (donor, request) pair,
// enforced by a unique constraint in the donor_acceptances table.
type DonorAcceptance struct {
	ID           string           `db:"id" json:"id"`
	DonorID      string           `db:"donor_id" json:"donor_id"`
	RequestID    string           `db:"request_id" json:"request_id"`
	Status       AcceptanceStatus `db:"status" json:"status"`
	Note         *string          `db:"note" json:"note,omitempty"`
	UnitsDonated *int             `db:"units_donated" json:"units_donated,omitempty"`
	AcceptedAt   time.Time        `db:"accepted_at" json:"accepted_at"`
	CompletedAt  *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// PendingAcceptance is the hospital-facing view of an unconfirmed acceptance.
type PendingAcceptance struct {
	ID           string    `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"request_id"`
	RequestCode  string    `db:"request_code" json:"request_code"`
	BloodType    string    `db:"blood_type" json:"blood_type"`
	UnitsNeeded  int       `db:"units_needed" json:"units_needed"`
	Urgency      string    `db:"urgency" json:"urgency"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	DonorID      string    `db:"donor_id" json:"donor_id"`
	DonorName    string    `db:"donor_name" json:"donor_name"`
	DonorContact string    `db:"donor_contact" json:"donor_contact"`
	Note         *string   `db:"note" json:"note,omitempty"`
	AcceptedAt   time.Time `db:"accepted_at" json:"accepted_at"`
}

// DonationHistoryEntry summarises one acceptance in a donor's history.
type DonationHistoryEntry struct {
	RequestCode  string           `db:"request_code" json:"request_code"`
	BloodType    string           `db:"blood_type" json:"blood_type"`
	UnitsNeeded  int              `db:"units_needed" json:"units_needed"`
	HospitalName *string          `db:"hospital_name" json:"hospital_name,omitempty"`
	Status       AcceptanceStatus `db:"status" json:"status"`
	UnitsDonated *int             `db:"units_donated" json:"units_donated,omitempty"`
	AcceptedAt   time.Time        `db:"accepted_at" json:"accepted_at"`
}
