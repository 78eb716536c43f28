package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clotsync/clotsync-api/internal/models"
)

const alertColumns = "id, donor_id, request_id, hospital_id, kind, message, is_read, created_at"

// AlertRepository manages persistence for donor and hospital alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs an AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts an alert record.
func (r *AlertRepository) Create(ctx context.Context, alert *models.DonorAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO donor_alerts (id, donor_id, request_id, hospital_id, kind, message, is_read, created_at)
		VALUES (:id, :donor_id, :request_id, :hospital_id, :kind, :message, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ExistsForDonorAndRequest reports whether the donor already holds any alert
// for the request. This is the duplicate-suppression key for both
// notification waves.
func (r *AlertRepository) ExistsForDonorAndRequest(ctx context.Context, donorID, requestID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM donor_alerts WHERE donor_id = $1 AND request_id = $2 LIMIT 1", donorID, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check alert: %w", err)
	}
	return true, nil
}

// AlertedDonorIDs returns the set of donor IDs already alerted for a request,
// letting a notification wave skip duplicates with one query.
func (r *AlertRepository) AlertedDonorIDs(ctx context.Context, requestID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT donor_id FROM donor_alerts WHERE request_id = $1 AND donor_id IS NOT NULL", requestID); err != nil {
		return nil, fmt.Errorf("alerted donors: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListForDonor returns a donor's alerts, newest first.
func (r *AlertRepository) ListForDonor(ctx context.Context, donorID string) ([]models.DonorAlert, error) {
	query := fmt.Sprintf("SELECT %s FROM donor_alerts WHERE donor_id = $1 ORDER BY created_at DESC", alertColumns)
	var alerts []models.DonorAlert
	if err := r.db.SelectContext(ctx, &alerts, query, donorID); err != nil {
		return nil, fmt.Errorf("donor alerts: %w", err)
	}
	return alerts, nil
}

// ListForHospital returns hospital-directed alerts, newest first.
func (r *AlertRepository) ListForHospital(ctx context.Context, hospitalID string) ([]models.DonorAlert, error) {
	query := fmt.Sprintf("SELECT %s FROM donor_alerts WHERE hospital_id = $1 AND donor_id IS NULL ORDER BY created_at DESC", alertColumns)
	var alerts []models.DonorAlert
	if err := r.db.SelectContext(ctx, &alerts, query, hospitalID); err != nil {
		return nil, fmt.Errorf("hospital alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flags an alert as read.
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE donor_alerts SET is_read = TRUE WHERE id = $1", id); err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return nil
}
