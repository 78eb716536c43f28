package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
)

func TestAlertRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	mock.ExpectExec("INSERT INTO donor_alerts").
		WillReturnResult(sqlmock.NewResult(1, 1))

	donorID := "donor-1"
	requestID := "req-1"
	alert := &models.DonorAlert{DonorID: &donorID, RequestID: &requestID, Kind: models.AlertNewRequest, Message: "B+ blood needed"}
	require.NoError(t, repo.Create(context.Background(), alert))
	assert.NotEmpty(t, alert.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepositoryAlertedDonorIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	mock.ExpectQuery("SELECT donor_id FROM donor_alerts WHERE request_id = \\$1").
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"donor_id"}).AddRow("donor-1").AddRow("donor-2"))

	alerted, err := repo.AlertedDonorIDs(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Len(t, alerted, 2)
	_, ok := alerted["donor-1"]
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepositoryExistsForDonorAndRequest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	mock.ExpectQuery("SELECT 1 FROM donor_alerts WHERE donor_id = \\$1 AND request_id = \\$2 LIMIT 1").
		WithArgs("donor-1", "req-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsForDonorAndRequest(context.Background(), "donor-1", "req-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
