package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clotsync/clotsync-api/internal/models"
)

// ErrAcceptanceNotPending is returned when a confirmation targets an
// acceptance that is not in the accepted state.
var ErrAcceptanceNotPending = errors.New("acceptance is not awaiting confirmation")

// ErrRequestNotPending is returned when a confirmation targets a request that
// is already fulfilled or cancelled.
var ErrRequestNotPending = errors.New("request is not pending")

// ConfirmDonationParams carries everything the confirmation transaction
// needs. The eligibility columns are precomputed by the caller from the
// donor's gender and the donation date.
type ConfirmDonationParams struct {
	AcceptanceID      string
	UnitsDonated      int
	DonationDate      time.Time
	EligibilityStatus models.EligibilityStatus
	NextEligible      *time.Time
}

// ConfirmDonationResult reports the state after a confirmed donation.
type ConfirmDonationResult struct {
	Acceptance     models.DonorAcceptance
	RequestID      string
	RequestCode    string
	BloodType      string
	HospitalID     *string
	RequestStatus  models.RequestStatus
	RemainingUnits int
	CreditedUnits  int
}

// FulfillmentRepository owns the multi-table confirmation transaction.
type FulfillmentRepository struct {
	db *sqlx.DB
}

// NewFulfillmentRepository constructs a FulfillmentRepository.
func NewFulfillmentRepository(db *sqlx.DB) *FulfillmentRepository {
	return &FulfillmentRepository{db: db}
}

// ConfirmDonation applies a hospital's confirmation atomically: the
// acceptance moves to completed, the donor's counter and last-donated
// baseline advance, the request is decremented or fulfilled, and the
// hospital's stock counter is credited. Either every row changes or none do.
//
// A full fulfillment credits the request's original ask to inventory; a
// partial one credits only the units donated.
func (r *FulfillmentRepository) ConfirmDonation(ctx context.Context, params ConfirmDonationParams) (*ConfirmDonationResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin confirm donation: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var acceptance models.DonorAcceptance
	lockAcceptance := fmt.Sprintf("SELECT %s FROM donor_acceptances WHERE id = $1 FOR UPDATE", acceptanceColumns)
	if err := tx.GetContext(ctx, &acceptance, lockAcceptance, params.AcceptanceID); err != nil {
		return nil, err
	}
	if acceptance.Status != models.AcceptanceAccepted {
		return nil, ErrAcceptanceNotPending
	}

	var request models.BloodRequest
	const lockRequest = `SELECT id, request_code, patient_id, hospital_id, blood_type, urgency, status, units_needed, units_requested, contact_name, contact_phone, required_by, created_at, updated_at
		FROM blood_requests WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &request, lockRequest, acceptance.RequestID); err != nil {
		return nil, err
	}
	if request.Status != models.RequestPending {
		return nil, ErrRequestNotPending
	}

	now := time.Now().UTC()

	completedAt := now
	acceptance.Status = models.AcceptanceCompleted
	acceptance.UnitsDonated = &params.UnitsDonated
	acceptance.CompletedAt = &completedAt
	const updateAcceptance = `UPDATE donor_acceptances SET status = $2, units_donated = $3, completed_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateAcceptance, acceptance.ID, acceptance.Status, params.UnitsDonated, completedAt); err != nil {
		return nil, fmt.Errorf("complete acceptance: %w", err)
	}

	const updateDonor = `UPDATE donors SET last_donated = $2, donations_count = donations_count + 1, eligibility_status = $3, next_eligible = $4, updated_at = $5 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateDonor, acceptance.DonorID, params.DonationDate, params.EligibilityStatus, params.NextEligible, now); err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}

	result := &ConfirmDonationResult{
		RequestID:   request.ID,
		RequestCode: request.RequestCode,
		BloodType:   request.BloodType,
		HospitalID:  request.HospitalID,
	}

	if params.UnitsDonated >= request.UnitsNeeded {
		result.RequestStatus = models.RequestFulfilled
		result.RemainingUnits = 0
		result.CreditedUnits = request.UnitsRequested
		const fulfill = `UPDATE blood_requests SET status = $2, units_needed = 0, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, fulfill, request.ID, models.RequestFulfilled, now); err != nil {
			return nil, fmt.Errorf("fulfill request: %w", err)
		}
	} else {
		result.RequestStatus = models.RequestPending
		result.RemainingUnits = request.UnitsNeeded - params.UnitsDonated
		result.CreditedUnits = params.UnitsDonated
		const decrement = `UPDATE blood_requests SET units_needed = units_needed - $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, decrement, request.ID, params.UnitsDonated, now); err != nil {
			return nil, fmt.Errorf("decrement request: %w", err)
		}
	}

	if request.HospitalID != nil {
		if _, err := adjustStock(ctx, tx, *request.HospitalID, request.BloodType, result.CreditedUnits); err != nil {
			return nil, fmt.Errorf("credit inventory: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit confirm donation: %w", err)
	}

	result.Acceptance = acceptance
	return result, nil
}

// StockFulfillResult reports the request state after a stock fulfillment.
type StockFulfillResult struct {
	RequestStatus  models.RequestStatus
	RemainingUnits int
	RemainingStock int
}

// FulfillFromStock serves a pending request from a hospital's own inventory:
// the stock counter is debited and the request decremented or fulfilled in
// one transaction. An underflowing debit surfaces as sql.ErrNoRows.
func (r *FulfillmentRepository) FulfillFromStock(ctx context.Context, hospitalID, requestID string, units int) (*StockFulfillResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin stock fulfillment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var request models.BloodRequest
	const lockRequest = `SELECT id, request_code, patient_id, hospital_id, blood_type, urgency, status, units_needed, units_requested, contact_name, contact_phone, required_by, created_at, updated_at
		FROM blood_requests WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &request, lockRequest, requestID); err != nil {
		return nil, err
	}
	if request.Status != models.RequestPending {
		return nil, ErrRequestNotPending
	}
	if units > request.UnitsNeeded {
		units = request.UnitsNeeded
	}

	remainingStock, err := adjustStock(ctx, tx, hospitalID, request.BloodType, -units)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &StockFulfillResult{RemainingStock: remainingStock}
	if units == request.UnitsNeeded {
		result.RequestStatus = models.RequestFulfilled
		const fulfill = `UPDATE blood_requests SET status = $2, units_needed = 0, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, fulfill, request.ID, models.RequestFulfilled, now); err != nil {
			return nil, fmt.Errorf("fulfill request: %w", err)
		}
	} else {
		result.RequestStatus = models.RequestPending
		result.RemainingUnits = request.UnitsNeeded - units
		const decrement = `UPDATE blood_requests SET units_needed = units_needed - $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, decrement, request.ID, units, now); err != nil {
			return nil, fmt.Errorf("decrement request: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stock fulfillment: %w", err)
	}
	return result, nil
}
