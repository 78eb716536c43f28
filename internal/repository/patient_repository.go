package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clotsync/clotsync-api/internal/models"
)

const patientColumns = "id, name, blood_type, location, contact, gender, age, problem, district, state, hospital_id, created_at, updated_at"

// PatientRepository manages persistence for patients.
type PatientRepository struct {
	db *sqlx.DB
}

// NewPatientRepository constructs a PatientRepository.
func NewPatientRepository(db *sqlx.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts a new patient record.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now

	const query = `INSERT INTO patients (id, name, blood_type, location, contact, gender, age, problem, district, state, hospital_id, created_at, updated_at)
		VALUES (:id, :name, :blood_type, :location, :contact, :gender, :age, :problem, :district, :state, :hospital_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

// FindByID fetches a patient by ID.
func (r *PatientRepository) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE id = $1", patientColumns)
	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

// FindByNameAndContact locates a patient by the (name, contact) pair used as
// the upsert key of the no-login request flow.
func (r *PatientRepository) FindByNameAndContact(ctx context.Context, name, contact string) (*models.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE name = $1 AND contact = $2", patientColumns)
	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, name, contact); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update modifies an existing patient record.
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	patient.UpdatedAt = time.Now().UTC()
	const query = `UPDATE patients SET name = :name, blood_type = :blood_type, location = :location, contact = :contact, gender = :gender, age = :age, problem = :problem, district = :district, state = :state, hospital_id = :hospital_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return nil
}
