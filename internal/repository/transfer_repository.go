package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clotsync/clotsync-api/internal/models"
)

const transferColumns = "id, from_hospital_id, to_hospital_id, blood_type, units, status, created_at"

// TransferRepository manages persistence for inter-hospital stock transfers.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository constructs a TransferRepository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Create records a transfer and moves the stock in one transaction: the
// source counter is decremented first, so an underflow aborts the whole
// transfer before any row is written.
func (r *TransferRepository) Create(ctx context.Context, transfer *models.BloodTransfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferCompleted
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := adjustStock(ctx, tx, transfer.FromHospitalID, transfer.BloodType, -transfer.Units); err != nil {
		return err
	}
	if transfer.ToHospitalID != nil {
		if _, err := adjustStock(ctx, tx, *transfer.ToHospitalID, transfer.BloodType, transfer.Units); err != nil {
			return err
		}
	}

	const query = `INSERT INTO blood_transfers (id, from_hospital_id, to_hospital_id, blood_type, units, status, created_at)
		VALUES (:id, :from_hospital_id, :to_hospital_id, :blood_type, :units, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, transfer); err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

// ListForHospital returns transfers where the hospital is sender or receiver,
// newest first.
func (r *TransferRepository) ListForHospital(ctx context.Context, hospitalID string) ([]models.BloodTransfer, error) {
	query := fmt.Sprintf("SELECT %s FROM blood_transfers WHERE from_hospital_id = $1 OR to_hospital_id = $1 ORDER BY created_at DESC", transferColumns)
	var transfers []models.BloodTransfer
	if err := r.db.SelectContext(ctx, &transfers, query, hospitalID); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, nil
}
