package models

import "time"

// Patient represents a patient who may request blood.
type Patient struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	BloodType  string    `db:"blood_type" json:"blood_type"`
	Location   string    `db:"location" json:"location"`
	Contact    string    `db:"contact" json:"contact"`
	Gender     *string   `db:"gender" json:"gender,omitempty"`
	Age        *int      `db:"age" json:"age,omitempty"`
	Problem    *string   `db:"problem" json:"problem,omitempty"`
	District   *string   `db:"district" json:"district,omitempty"`
	State      *string   `db:"state" json:"state,omitempty"`
	HospitalID *string   `db:"hospital_id" json:"hospital_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
