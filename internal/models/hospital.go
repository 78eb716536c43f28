package models

import "time"

// Hospital represents a registered hospital account.
type Hospital struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Location     string    `db:"location" json:"location"`
	Contact      string    `db:"contact" json:"contact"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryItem is a per-hospital, per-blood-type unit counter. Counters are
// adjusted with atomic SQL increments, never read-modify-write of a document.
type InventoryItem struct {
	HospitalID string    `db:"hospital_id" json:"hospital_id"`
	BloodType  string    `db:"blood_type" json:"blood_type"`
	Units      int       `db:"units" json:"units"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// BloodTypes enumerates the groups tracked in hospital inventories.
var BloodTypes = []string{
	"A Positive", "A Negative",
	"A1 Positive", "A1B Positive",
	"A2 Negative", "A2B Negative", "A2B Positive",
	"AB Positive",
	"B Positive", "B Negative",
	"O Positive", "O Negative",
	"Bombay Blood Group",
}

// IsValidBloodType reports whether the given group is tracked.
func IsValidBloodType(bloodType string) bool {
	for _, known := range BloodTypes {
		if known == bloodType {
			return true
		}
	}
	return false
}
