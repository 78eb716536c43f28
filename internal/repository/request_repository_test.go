package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
)

func TestRequestRepositoryCreateKeepsOriginalAsk(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO blood_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.BloodRequest{RequestCode: "PT-AB12CD", PatientID: "pat-1", BloodType: "B+", Urgency: models.UrgencyNormal, UnitsNeeded: 3}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, 3, request.UnitsRequested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := sqlmock.NewRows([]string{"id", "request_code", "patient_id", "hospital_id", "blood_type", "urgency", "status", "units_needed", "units_requested", "contact_name", "contact_phone", "required_by", "created_at", "updated_at", "patient_name", "patient_location", "hospital_name", "hospital_location"}).
		AddRow("req-1", "PT-AB12CD", "pat-1", nil, "B+", models.UrgencyNormal, models.RequestPending, 3, 3, nil, nil, nil, time.Now(), time.Now(), "Pat", "Chennai", nil, nil)
	mock.ExpectQuery("FROM blood_requests r").
		WithArgs(models.RequestPending).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM blood_requests r").
		WithArgs(models.RequestPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	requests, total, err := repo.List(context.Background(), models.RequestFilter{Status: models.RequestPending})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Pat", requests[0].PatientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryExistsForPatientSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	since := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT 1 FROM blood_requests WHERE patient_id = \\$1 AND created_at >= \\$2 LIMIT 1").
		WithArgs("pat-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForPatientSince(context.Background(), "pat-1", since)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCancelRequiresPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("UPDATE blood_requests SET status").
		WithArgs("req-1", models.RequestCancelled, sqlmock.AnyArg(), models.RequestPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), "req-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
