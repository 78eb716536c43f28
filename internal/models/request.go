package models

import "time"

// RequestStatus is the lifecycle state of a blood request. Fulfilled and
// cancelled are terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

// Urgency tiers for blood requests.
const (
	UrgencyNormal    = "normal"
	UrgencyUrgent    = "urgent"
	UrgencyEmergency = "emergency"
)

// BloodRequest represents a patient's need for blood. UnitsNeeded decreases
// as partial fulfillments are confirmed and must stay positive while the
// request is pending; UnitsRequested keeps the original ask.
type BloodRequest struct {
	ID             string        `db:"id" json:"id"`
	RequestCode    string        `db:"request_code" json:"request_code"`
	PatientID      string        `db:"patient_id" json:"patient_id"`
	HospitalID     *string       `db:"hospital_id" json:"hospital_id,omitempty"`
	BloodType      string        `db:"blood_type" json:"blood_type"`
	Urgency        string        `db:"urgency" json:"urgency"`
	Status         RequestStatus `db:"status" json:"status"`
	UnitsNeeded    int           `db:"units_needed" json:"units_needed"`
	UnitsRequested int           `db:"units_requested" json:"units_requested"`
	ContactName    *string       `db:"contact_name" json:"contact_name,omitempty"`
	ContactPhone   *string       `db:"contact_phone" json:"contact_phone,omitempty"`
	RequiredBy     *string       `db:"required_by" json:"required_by,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`

	// Joined fields populated by list queries.
	PatientName      string  `db:"patient_name" json:"patient_name,omitempty"`
	PatientLocation  string  `db:"patient_location" json:"patient_location,omitempty"`
	HospitalName     *string `db:"hospital_name" json:"hospital_name,omitempty"`
	HospitalLocation *string `db:"hospital_location" json:"hospital_location,omitempty"`
}

// RequestFilter captures filtering criteria for listing blood requests.
type RequestFilter struct {
	Status     RequestStatus
	BloodType  string
	PatientID  string
	HospitalID string
	Page       int
	PageSize   int
}
