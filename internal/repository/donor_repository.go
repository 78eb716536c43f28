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

const donorColumns = "id, name, blood_type, location, contact, email, password_hash, gender, available, donations_count, last_donated, next_eligible, eligibility_status, latitude, longitude, created_at, updated_at"

// DonorRepository manages persistence for donors.
type DonorRepository struct {
	db *sqlx.DB
}

// NewDonorRepository constructs a DonorRepository.
func NewDonorRepository(db *sqlx.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// Create inserts a new donor record.
func (r *DonorRepository) Create(ctx context.Context, donor *models.Donor) error {
	if donor.ID == "" {
		donor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if donor.CreatedAt.IsZero() {
		donor.CreatedAt = now
	}
	donor.UpdatedAt = now

	const query = `INSERT INTO donors (id, name, blood_type, location, contact, email, password_hash, gender, available, donations_count, last_donated, next_eligible, eligibility_status, latitude, longitude, created_at, updated_at)
		VALUES (:id, :name, :blood_type, :location, :contact, :email, :password_hash, :gender, :available, :donations_count, :last_donated, :next_eligible, :eligibility_status, :latitude, :longitude, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donor); err != nil {
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

// FindByID fetches a donor by ID.
func (r *DonorRepository) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	query := fmt.Sprintf("SELECT %s FROM donors WHERE id = $1", donorColumns)
	var donor models.Donor
	if err := r.db.GetContext(ctx, &donor, query, id); err != nil {
		return nil, err
	}
	return &donor, nil
}

// FindByIdentifier fetches a donor by contact number or email for login.
func (r *DonorRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Donor, error) {
	query := fmt.Sprintf("SELECT %s FROM donors WHERE contact = $1 OR LOWER(email) = LOWER($1)", donorColumns)
	var donor models.Donor
	if err := r.db.GetContext(ctx, &donor, query, identifier); err != nil {
		return nil, err
	}
	return &donor, nil
}

// ExistsByContact checks whether a donor is already registered with a contact.
func (r *DonorRepository) ExistsByContact(ctx context.Context, contact string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM donors WHERE contact = $1 LIMIT 1", contact)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check donor contact: %w", err)
	}
	return true, nil
}

// List returns donors matching filters along with total count.
func (r *DonorRepository) List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int, error) {
	base := "FROM donors WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BloodType != "" {
		conditions = append(conditions, fmt.Sprintf("blood_type = $%d", len(args)+1))
		args = append(args, filter.BloodType)
	}
	if filter.Available != nil {
		conditions = append(conditions, fmt.Sprintf("available = $%d", len(args)+1))
		args = append(args, *filter.Available)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(location) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", donorColumns, base, size, offset)
	var donors []models.Donor
	if err := r.db.SelectContext(ctx, &donors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list donors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count donors: %w", err)
	}

	return donors, total, nil
}

// MatchingAvailable returns every available donor of the given blood type,
// optionally excluding one donor. Eligibility is recomputed by the caller;
// this query deliberately does not filter on the cached status column.
func (r *DonorRepository) MatchingAvailable(ctx context.Context, bloodType, excludeID string) ([]models.Donor, error) {
	query := fmt.Sprintf("SELECT %s FROM donors WHERE blood_type = $1 AND available = TRUE", donorColumns)
	args := []interface{}{bloodType}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += " ORDER BY donations_count DESC"

	var donors []models.Donor
	if err := r.db.SelectContext(ctx, &donors, query, args...); err != nil {
		return nil, fmt.Errorf("matching donors: %w", err)
	}
	return donors, nil
}

// UpdateAvailability flips a donor's availability flag.
func (r *DonorRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	const query = `UPDATE donors SET available = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, available, time.Now().UTC()); err != nil {
		return fmt.Errorf("update donor availability: %w", err)
	}
	return nil
}

// UpdateEligibility refreshes the cached eligibility columns for a donor.
func (r *DonorRepository) UpdateEligibility(ctx context.Context, id string, status models.EligibilityStatus, nextEligible *time.Time) error {
	const query = `UPDATE donors SET eligibility_status = $2, next_eligible = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, nextEligible, time.Now().UTC()); err != nil {
		return fmt.Errorf("update donor eligibility: %w", err)
	}
	return nil
}

// RecordDonation sets the last-donated baseline, bumps the donation counter
// and refreshes the cached eligibility columns in one statement.
func (r *DonorRepository) RecordDonation(ctx context.Context, id string, lastDonated time.Time, status models.EligibilityStatus, nextEligible *time.Time) error {
	const query = `UPDATE donors SET last_donated = $2, donations_count = donations_count + 1, eligibility_status = $3, next_eligible = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, lastDonated, status, nextEligible, time.Now().UTC()); err != nil {
		return fmt.Errorf("record donation: %w", err)
	}
	return nil
}

// Leaderboard returns the top donors by donation count.
func (r *DonorRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT id, name, blood_type, location, donations_count, eligibility_status FROM donors ORDER BY donations_count DESC, created_at ASC LIMIT %d", limit)
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns a donor's 1-based position by donation count plus the total
// number of donors.
func (r *DonorRepository) Rank(ctx context.Context, id string) (int, int, error) {
	const query = `SELECT position, total FROM (
		SELECT id, RANK() OVER (ORDER BY donations_count DESC, created_at ASC) AS position, COUNT(*) OVER () AS total FROM donors
	) ranked WHERE id = $1`
	var row struct {
		Position int `db:"position"`
		Total    int `db:"total"`
	}
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return 0, 0, err
	}
	return row.Position, row.Total, nil
}
