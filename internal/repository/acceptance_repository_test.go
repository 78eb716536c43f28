package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
)

func TestAcceptanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcceptanceRepository(db)

	mock.ExpectExec("INSERT INTO donor_acceptances").
		WillReturnResult(sqlmock.NewResult(1, 1))

	acceptance := &models.DonorAcceptance{DonorID: "donor-1", RequestID: "req-1"}
	require.NoError(t, repo.Create(context.Background(), acceptance))
	assert.Equal(t, models.AcceptanceAccepted, acceptance.Status)
	assert.False(t, acceptance.AcceptedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptanceRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcceptanceRepository(db)

	mock.ExpectExec("INSERT INTO donor_acceptances").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "donor_acceptances_donor_id_request_id_key"})

	err := repo.Create(context.Background(), &models.DonorAcceptance{DonorID: "donor-1", RequestID: "req-1"})
	assert.ErrorIs(t, err, ErrDuplicateAcceptance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptanceRepositoryAcceptedRequestIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcceptanceRepository(db)

	rows := sqlmock.NewRows([]string{"request_id"}).AddRow("req-1").AddRow("req-2")
	mock.ExpectQuery("SELECT request_id FROM donor_acceptances").
		WithArgs("donor-1").
		WillReturnRows(rows)

	set, err := repo.AcceptedRequestIDs(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "req-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptanceRepositoryPendingForHospital(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcceptanceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "request_id", "request_code", "blood_type", "units_needed", "urgency", "patient_name", "donor_id", "donor_name", "donor_contact", "note", "accepted_at"}).
		AddRow("acc-1", "req-1", "PT-AB12CD", "A-", 2, models.UrgencyUrgent, "Pat", "donor-1", "Dana", "9000000001", nil, time.Now())
	mock.ExpectQuery("FROM donor_acceptances a").
		WithArgs("hosp-1", models.AcceptanceAccepted).
		WillReturnRows(rows)

	pending, err := repo.PendingForHospital(context.Background(), "hosp-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "PT-AB12CD", pending[0].RequestCode)
	assert.Equal(t, "Dana", pending[0].DonorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
