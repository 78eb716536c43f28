package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clotsync/clotsync-api/internal/models"
)

// ErrDuplicateAcceptance is returned when the (donor, request) unique
// constraint rejects a second acceptance. The constraint, not a
// query-then-insert check, is what closes the race between two simultaneous
// accepts.
var ErrDuplicateAcceptance = errors.New("acceptance already exists for donor and request")

const acceptanceColumns = "id, donor_id, request_id, status, note, units_donated, accepted_at, completed_at"

// AcceptanceRepository manages persistence for donor acceptances.
type AcceptanceRepository struct {
	db *sqlx.DB
}

// NewAcceptanceRepository constructs an AcceptanceRepository.
func NewAcceptanceRepository(db *sqlx.DB) *AcceptanceRepository {
	return &AcceptanceRepository{db: db}
}

// Create inserts an acceptance in state accepted. A unique-violation on
// (donor_id, request_id) maps to ErrDuplicateAcceptance.
func (r *AcceptanceRepository) Create(ctx context.Context, acceptance *models.DonorAcceptance) error {
	if acceptance.ID == "" {
		acceptance.ID = uuid.NewString()
	}
	if acceptance.AcceptedAt.IsZero() {
		acceptance.AcceptedAt = time.Now().UTC()
	}
	if acceptance.Status == "" {
		acceptance.Status = models.AcceptanceAccepted
	}

	const query = `INSERT INTO donor_acceptances (id, donor_id, request_id, status, note, units_donated, accepted_at, completed_at)
		VALUES (:id, :donor_id, :request_id, :status, :note, :units_donated, :accepted_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, acceptance); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAcceptance
		}
		return fmt.Errorf("create acceptance: %w", err)
	}
	return nil
}

// AcceptedRequestIDs returns the set of request IDs the donor has an
// acceptance against, in any state, so listings can annotate them in one
// query.
func (r *AcceptanceRepository) AcceptedRequestIDs(ctx context.Context, donorID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT request_id FROM donor_acceptances WHERE donor_id = $1", donorID); err != nil {
		return nil, fmt.Errorf("accepted requests: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// FindByID fetches an acceptance by ID.
func (r *AcceptanceRepository) FindByID(ctx context.Context, id string) (*models.DonorAcceptance, error) {
	query := fmt.Sprintf("SELECT %s FROM donor_acceptances WHERE id = $1", acceptanceColumns)
	var acceptance models.DonorAcceptance
	if err := r.db.GetContext(ctx, &acceptance, query, id); err != nil {
		return nil, err
	}
	return &acceptance, nil
}

// FindByDonorAndRequest fetches the acceptance for a (donor, request) pair.
func (r *AcceptanceRepository) FindByDonorAndRequest(ctx context.Context, donorID, requestID string) (*models.DonorAcceptance, error) {
	query := fmt.Sprintf("SELECT %s FROM donor_acceptances WHERE donor_id = $1 AND request_id = $2", acceptanceColumns)
	var acceptance models.DonorAcceptance
	if err := r.db.GetContext(ctx, &acceptance, query, donorID, requestID); err != nil {
		return nil, err
	}
	return &acceptance, nil
}

// PendingForHospital lists accepted-not-yet-confirmed acceptances against a
// hospital's requests, newest first.
func (r *AcceptanceRepository) PendingForHospital(ctx context.Context, hospitalID string) ([]models.PendingAcceptance, error) {
	const query = `SELECT a.id, a.request_id, r.request_code, r.blood_type, r.units_needed, r.urgency, p.name AS patient_name,
			a.donor_id, d.name AS donor_name, d.contact AS donor_contact, a.note, a.accepted_at
		FROM donor_acceptances a
		JOIN blood_requests r ON r.id = a.request_id
		JOIN patients p ON p.id = r.patient_id
		JOIN donors d ON d.id = a.donor_id
		WHERE r.hospital_id = $1 AND a.status = $2
		ORDER BY a.accepted_at DESC`
	var pending []models.PendingAcceptance
	if err := r.db.SelectContext(ctx, &pending, query, hospitalID, models.AcceptanceAccepted); err != nil {
		return nil, fmt.Errorf("pending acceptances: %w", err)
	}
	return pending, nil
}

// HistoryForDonor lists a donor's acceptances with request context.
func (r *AcceptanceRepository) HistoryForDonor(ctx context.Context, donorID string) ([]models.DonationHistoryEntry, error) {
	const query = `SELECT r.request_code, r.blood_type, r.units_needed, h.name AS hospital_name, a.status, a.units_donated, a.accepted_at
		FROM donor_acceptances a
		JOIN blood_requests r ON r.id = a.request_id
		LEFT JOIN hospitals h ON h.id = r.hospital_id
		WHERE a.donor_id = $1
		ORDER BY a.accepted_at DESC`
	var history []models.DonationHistoryEntry
	if err := r.db.SelectContext(ctx, &history, query, donorID); err != nil {
		return nil, fmt.Errorf("donor history: %w", err)
	}
	return history, nil
}
