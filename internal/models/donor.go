package models

import "time"

// Gender values recognised by the eligibility rules. Any other value falls
// back to the conservative donation gap.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// EligibilityStatus is the cached eligibility verdict for a donor. It mirrors
// the output of the eligibility computation at the time it was last refreshed
// and must never be trusted across a mutation of LastDonated.
type EligibilityStatus string

const (
	Eligible    EligibilityStatus = "eligible"
	NotEligible EligibilityStatus = "not eligible"
)

// Donor represents a registered blood donor.
type Donor struct {
	ID                string            `db:"id" json:"id"`
	Name              string            `db:"name" json:"name"`
	BloodType         string            `db:"blood_type" json:"blood_type"`
	Location          string            `db:"location" json:"location"`
	Contact           string            `db:"contact" json:"contact"`
	Email             *string           `db:"email" json:"email,omitempty"`
	PasswordHash      *string           `db:"password_hash" json:"-"`
	Gender            *string           `db:"gender" json:"gender,omitempty"`
	Available         bool              `db:"available" json:"available"`
	DonationsCount    int               `db:"donations_count" json:"donations_count"`
	LastDonated       *time.Time        `db:"last_donated" json:"last_donated,omitempty"`
	NextEligible      *time.Time        `db:"next_eligible" json:"next_eligible,omitempty"`
	EligibilityStatus EligibilityStatus `db:"eligibility_status" json:"eligibility_status"`
	Latitude          *float64          `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64          `db:"longitude" json:"longitude,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// DonorFilter captures filtering criteria for listing donors.
type DonorFilter struct {
	BloodType string
	Available *bool
	Search    string
	Page      int
	PageSize  int
}

// LeaderboardEntry is a single row of the donation-count ranking.
type LeaderboardEntry struct {
	DonorID           string            `db:"id" json:"donor_id"`
	Name              string            `db:"name" json:"name"`
	BloodType         string            `db:"blood_type" json:"blood_type"`
	Location          string            `db:"location" json:"location"`
	DonationsCount    int               `db:"donations_count" json:"donations_count"`
	EligibilityStatus EligibilityStatus `db:"eligibility_status" json:"eligibility_status"`
}

// LeaderboardPosition describes a donor's rank among all donors.
type LeaderboardPosition struct {
	Position       int  `json:"position"`
	TotalDonors    int  `json:"total_donors"`
	DonationsCount int  `json:"donations_count"`
	TopTwenty      bool `json:"top_twenty"`
}
