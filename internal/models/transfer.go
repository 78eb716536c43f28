package models

import "time"

// TransferStatus is the lifecycle state of an inter-hospital transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// BloodTransfer records stock moving between hospitals, or from a hospital
// directly to a patient when ToHospitalID is nil.
type BloodTransfer struct {
	ID             string         `db:"id" json:"id"`
	FromHospitalID string         `db:"from_hospital_id" json:"from_hospital_id"`
	ToHospitalID   *string        `db:"to_hospital_id" json:"to_hospital_id,omitempty"`
	BloodType      string         `db:"blood_type" json:"blood_type"`
	Units          int            `db:"units" json:"units"`
	Status         TransferStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
