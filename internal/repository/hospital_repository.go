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

// HospitalRepository manages persistence for hospitals and their inventory.
type HospitalRepository struct {
	db *sqlx.DB
}

// NewHospitalRepository constructs a HospitalRepository.
func NewHospitalRepository(db *sqlx.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// Create inserts a hospital and seeds a zeroed inventory row for every
// tracked blood type in one transaction.
func (r *HospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	if hospital.ID == "" {
		hospital.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hospital.CreatedAt.IsZero() {
		hospital.CreatedAt = now
	}
	hospital.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create hospital: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertHospital = `INSERT INTO hospitals (id, name, location, contact, username, password_hash, created_at, updated_at)
		VALUES (:id, :name, :location, :contact, :username, :password_hash, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertHospital, hospital); err != nil {
		return fmt.Errorf("create hospital: %w", err)
	}

	const insertStock = `INSERT INTO hospital_inventory (hospital_id, blood_type, units, updated_at) VALUES ($1, $2, 0, $3)`
	for _, bloodType := range models.BloodTypes {
		if _, err := tx.ExecContext(ctx, insertStock, hospital.ID, bloodType, now); err != nil {
			return fmt.Errorf("seed inventory %s: %w", bloodType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create hospital: %w", err)
	}
	return nil
}

// FindByID fetches a hospital by ID.
func (r *HospitalRepository) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	const query = `SELECT id, name, location, contact, username, password_hash, created_at, updated_at FROM hospitals WHERE id = $1`
	var hospital models.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, id); err != nil {
		return nil, err
	}
	return &hospital, nil
}

// FindByUsername fetches a hospital by login username.
func (r *HospitalRepository) FindByUsername(ctx context.Context, username string) (*models.Hospital, error) {
	const query = `SELECT id, name, location, contact, username, password_hash, created_at, updated_at FROM hospitals WHERE username = $1`
	var hospital models.Hospital
	if err := r.db.GetContext(ctx, &hospital, query, username); err != nil {
		return nil, err
	}
	return &hospital, nil
}

// ExistsByUsername checks whether a hospital username is taken.
func (r *HospitalRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM hospitals WHERE username = $1 LIMIT 1", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check hospital username: %w", err)
	}
	return true, nil
}

// List returns all hospitals ordered by name.
func (r *HospitalRepository) List(ctx context.Context) ([]models.Hospital, error) {
	const query = `SELECT id, name, location, contact, username, password_hash, created_at, updated_at FROM hospitals ORDER BY name ASC`
	var hospitals []models.Hospital
	if err := r.db.SelectContext(ctx, &hospitals, query); err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	return hospitals, nil
}

// Inventory returns every stock counter for a hospital.
func (r *HospitalRepository) Inventory(ctx context.Context, hospitalID string) ([]models.InventoryItem, error) {
	const query = `SELECT hospital_id, blood_type, units, updated_at FROM hospital_inventory WHERE hospital_id = $1 ORDER BY blood_type ASC`
	var items []models.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, hospitalID); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	return items, nil
}

// Stock returns the unit count for a single (hospital, blood type) key.
func (r *HospitalRepository) Stock(ctx context.Context, hospitalID, bloodType string) (int, error) {
	var units int
	err := r.db.GetContext(ctx, &units, "SELECT units FROM hospital_inventory WHERE hospital_id = $1 AND blood_type = $2", hospitalID, bloodType)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("stock: %w", err)
	}
	return units, nil
}

// AdjustStock applies an atomic delta to a stock counter. Negative deltas
// fail with sql.ErrNoRows when they would drive the counter below zero.
func (r *HospitalRepository) AdjustStock(ctx context.Context, hospitalID, bloodType string, delta int) (int, error) {
	return adjustStock(ctx, r.db, hospitalID, bloodType, delta)
}

type execGetter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func adjustStock(ctx context.Context, q execGetter, hospitalID, bloodType string, delta int) (int, error) {
	const query = `INSERT INTO hospital_inventory (hospital_id, blood_type, units, updated_at)
		VALUES ($1, $2, GREATEST($3, 0), $4)
		ON CONFLICT (hospital_id, blood_type)
		DO UPDATE SET units = hospital_inventory.units + $3, updated_at = $4
		WHERE hospital_inventory.units + $3 >= 0
		RETURNING units`
	var units int
	if err := q.GetContext(ctx, &units, query, hospitalID, bloodType, delta, time.Now().UTC()); err != nil {
		return 0, err
	}
	return units, nil
}

// StockedHospitals returns hospitals holding at least one unit of the given
// blood type, with the unit count attached.
func (r *HospitalRepository) StockedHospitals(ctx context.Context, bloodType string) ([]models.Hospital, map[string]int, error) {
	const query = `SELECT h.id, h.name, h.location, h.contact, h.username, h.password_hash, h.created_at, h.updated_at, i.units
		FROM hospitals h
		JOIN hospital_inventory i ON i.hospital_id = h.id
		WHERE i.blood_type = $1 AND i.units > 0
		ORDER BY i.units DESC`

	rows, err := r.db.QueryxContext(ctx, query, bloodType)
	if err != nil {
		return nil, nil, fmt.Errorf("stocked hospitals: %w", err)
	}
	defer rows.Close()

	var hospitals []models.Hospital
	stock := make(map[string]int)
	for rows.Next() {
		var h models.Hospital
		var units int
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Contact, &h.Username, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt, &units); err != nil {
			return nil, nil, fmt.Errorf("scan stocked hospital: %w", err)
		}
		hospitals = append(hospitals, h)
		stock[h.ID] = units
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("stocked hospitals rows: %w", err)
	}
	return hospitals, stock, nil
}
