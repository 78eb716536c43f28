package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clotsync/clotsync-api/internal/models"
)

const requestColumns = `r.id, r.request_code, r.patient_id, r.hospital_id, r.blood_type, r.urgency, r.status, r.units_needed, r.units_requested, r.contact_name, r.contact_phone, r.required_by, r.created_at, r.updated_at,
	p.name AS patient_name, p.location AS patient_location, h.name AS hospital_name, h.location AS hospital_location`

const requestJoins = `FROM blood_requests r
	JOIN patients p ON p.id = r.patient_id
	LEFT JOIN hospitals h ON h.id = r.hospital_id`

// RequestRepository manages persistence for blood requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new blood request.
func (r *RequestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	if request.UnitsRequested == 0 {
		request.UnitsRequested = request.UnitsNeeded
	}

	const query = `INSERT INTO blood_requests (id, request_code, patient_id, hospital_id, blood_type, urgency, status, units_needed, units_requested, contact_name, contact_phone, required_by, created_at, updated_at)
		VALUES (:id, :request_code, :patient_id, :hospital_id, :blood_type, :urgency, :status, :units_needed, :units_requested, :contact_name, :contact_phone, :required_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create blood request: %w", err)
	}
	return nil
}

// FindByID fetches a request with patient and hospital context attached.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1", requestColumns, requestJoins)
	var request models.BloodRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching filters along with total count.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.BloodRequest, int, error) {
	base := requestJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.BloodType != "" {
		conditions = append(conditions, fmt.Sprintf("r.blood_type = $%d", len(args)+1))
		args = append(args, filter.BloodType)
	}
	if filter.PatientID != "" {
		conditions = append(conditions, fmt.Sprintf("r.patient_id = $%d", len(args)+1))
		args = append(args, filter.PatientID)
	}
	if filter.HospitalID != "" {
		conditions = append(conditions, fmt.Sprintf("r.hospital_id = $%d", len(args)+1))
		args = append(args, filter.HospitalID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", requestColumns, base, size, offset)
	var requests []models.BloodRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list blood requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count blood requests: %w", err)
	}

	return requests, total, nil
}

// LatestPendingForPatient returns the newest pending request of a patient.
func (r *RequestRepository) LatestPendingForPatient(ctx context.Context, patientID string) (*models.BloodRequest, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.patient_id = $1 AND r.status = $2 ORDER BY r.created_at DESC LIMIT 1", requestColumns, requestJoins)
	var request models.BloodRequest
	if err := r.db.GetContext(ctx, &request, query, patientID, models.RequestPending); err != nil {
		return nil, err
	}
	return &request, nil
}

// ExistsForPatientSince reports whether the patient created any request at or
// after the given instant. Backs the one-request-per-day guard.
func (r *RequestRepository) ExistsForPatientSince(ctx context.Context, patientID string, since time.Time) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM blood_requests WHERE patient_id = $1 AND created_at >= $2 LIMIT 1", patientID, since)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check patient requests: %w", err)
	}
	return true, nil
}

// Cancel marks a pending request cancelled.
func (r *RequestRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE blood_requests SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, models.RequestCancelled, time.Now().UTC(), models.RequestPending)
	if err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRequestNotPending
	}
	return nil
}
