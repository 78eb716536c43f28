package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func donorRows() *sqlmock.Rows {
	email := "dana@example.com"
	return sqlmock.NewRows([]string{"id", "name", "blood_type", "location", "contact", "email", "password_hash", "gender", "available", "donations_count", "last_donated", "next_eligible", "eligibility_status", "latitude", "longitude", "created_at", "updated_at"}).
		AddRow("donor-1", "Dana", "O+", "Chennai", "9000000001", email, "hash", "female", true, 3, nil, nil, models.Eligible, nil, nil, time.Now(), time.Now())
}

func TestDonorRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	mock.ExpectExec("INSERT INTO donors").
		WillReturnResult(sqlmock.NewResult(1, 1))

	donor := &models.Donor{Name: "Dana", BloodType: "O+", Location: "Chennai", Contact: "9000000001", Available: true, EligibilityStatus: models.Eligible}
	require.NoError(t, repo.Create(context.Background(), donor))
	assert.NotEmpty(t, donor.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepositoryFindByIdentifier(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	mock.ExpectQuery("SELECT .+ FROM donors WHERE contact = \\$1 OR LOWER\\(email\\) = LOWER\\(\\$1\\)").
		WithArgs("9000000001").
		WillReturnRows(donorRows())

	donor, err := repo.FindByIdentifier(context.Background(), "9000000001")
	require.NoError(t, err)
	assert.Equal(t, "donor-1", donor.ID)
	assert.Equal(t, "O+", donor.BloodType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepositoryExistsByContactNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	mock.ExpectQuery("SELECT 1 FROM donors WHERE contact = \\$1 LIMIT 1").
		WithArgs("9000000009").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByContact(context.Background(), "9000000009")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepositoryMatchingAvailableExcludes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	mock.ExpectQuery("SELECT .+ FROM donors WHERE blood_type = \\$1 AND available = TRUE AND id <> \\$2 ORDER BY donations_count DESC").
		WithArgs("O+", "donor-9").
		WillReturnRows(donorRows())

	donors, err := repo.MatchingAvailable(context.Background(), "O+", "donor-9")
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "donor-1", donors[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepositoryRecordDonation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	donated := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	next := donated.AddDate(0, 0, 90)
	mock.ExpectExec("UPDATE donors SET last_donated = \\$2, donations_count = donations_count \\+ 1").
		WithArgs("donor-1", donated, models.NotEligible, next, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordDonation(context.Background(), "donor-1", donated, models.NotEligible, &next)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepositoryRank(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDonorRepository(db)

	mock.ExpectQuery("SELECT position, total FROM").
		WithArgs("donor-1").
		WillReturnRows(sqlmock.NewRows([]string{"position", "total"}).AddRow(4, 120))

	position, total, err := repo.Rank(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Equal(t, 4, position)
	assert.Equal(t, 120, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
