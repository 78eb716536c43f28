package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type mockPatients struct {
	byKey   map[string]models.Patient
	created *models.Patient
	updated *models.Patient
}

func (m *mockPatients) Create(ctx context.Context, patient *models.Patient) error {
	patient.ID = "pat-new"
	m.created = patient
	return nil
}

func (m *mockPatients) FindByNameAndContact(ctx context.Context, name, contact string) (*models.Patient, error) {
	if p, ok := m.byKey[name+"|"+contact]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPatients) Update(ctx context.Context, patient *models.Patient) error {
	m.updated = patient
	return nil
}

type mockHospitalLookup struct {
	hospitals map[string]models.Hospital
}

func (m *mockHospitalLookup) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	if h, ok := m.hospitals[id]; ok {
		return &h, nil
	}
	return nil, sql.ErrNoRows
}

type mockRequestNotifier struct {
	notified int
	requests []*models.BloodRequest
}

func (m *mockRequestNotifier) NotifyNewRequest(ctx context.Context, request *models.BloodRequest) (int, error) {
	m.requests = append(m.requests, request)
	return m.notified, nil
}

func validCreateRequest() CreateRequestRequest {
	return CreateRequestRequest{
		PatientName: "Pat",
		Contact:     "9000000001",
		BloodType:   "B Positive",
		UnitsNeeded: 3,
		Urgency:     models.UrgencyUrgent,
		Location:    "Chennai",
	}
}

func TestCreateRequestHappyPath(t *testing.T) {
	repo := &mockRequests{}
	patients := &mockPatients{}
	notifier := &mockRequestNotifier{notified: 5}
	svc := NewRequestService(repo, patients, &mockHospitalLookup{}, notifier, nil, nil, nil)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 5, result.DonorsNotified)
	assert.Equal(t, models.RequestPending, result.Request.Status)
	assert.Equal(t, 3, result.Request.UnitsNeeded)
	assert.Equal(t, "pat-new", result.Request.PatientID)
	require.NotNil(t, patients.created)

	code := result.Request.RequestCode
	assert.True(t, strings.HasPrefix(code, "PT-"), "code %q must carry the PT- prefix", code)
	assert.Len(t, code, 9)
	for _, r := range code[3:] {
		assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), "unexpected code rune %q", r)
	}
}

func TestCreateRequestReusesPatient(t *testing.T) {
	patients := &mockPatients{byKey: map[string]models.Patient{
		"Pat|9000000001": {ID: "pat-1", Name: "Pat", Contact: "9000000001", Location: "Chennai"},
	}}
	repo := &mockRequests{}
	svc := NewRequestService(repo, patients, &mockHospitalLookup{}, &mockRequestNotifier{}, nil, nil, nil)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "pat-1", result.Request.PatientID)
	assert.Nil(t, patients.created)
	require.NotNil(t, patients.updated)
}

func TestCreateRequestDailyGuard(t *testing.T) {
	patients := &mockPatients{byKey: map[string]models.Patient{
		"Pat|9000000001": {ID: "pat-1", Name: "Pat", Contact: "9000000001"},
	}}
	repo := &mockRequests{recentExists: true}
	svc := NewRequestService(repo, patients, &mockHospitalLookup{}, &mockRequestNotifier{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateRequestUnknownHospital(t *testing.T) {
	svc := NewRequestService(&mockRequests{}, &mockPatients{}, &mockHospitalLookup{}, &mockRequestNotifier{}, nil, nil, nil)

	req := validCreateRequest()
	req.HospitalID = hospID("missing")
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateRequestZeroDonorsStaysPending(t *testing.T) {
	repo := &mockRequests{}
	notifier := &mockRequestNotifier{notified: 0}
	svc := NewRequestService(repo, &mockPatients{}, &mockHospitalLookup{}, notifier, nil, nil, nil)

	result, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Zero(t, result.DonorsNotified)
	assert.Equal(t, models.RequestPending, result.Request.Status)
}

func TestCreateRequestRejectsUnknownBloodType(t *testing.T) {
	svc := NewRequestService(&mockRequests{}, &mockPatients{}, &mockHospitalLookup{}, &mockRequestNotifier{}, nil, nil, nil)

	req := validCreateRequest()
	req.BloodType = "Q Positive"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCancelRequest(t *testing.T) {
	repo := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	svc := NewRequestService(repo, &mockPatients{}, &mockHospitalLookup{}, &mockRequestNotifier{}, nil, nil, nil)

	require.NoError(t, svc.Cancel(context.Background(), "req-1"))
	assert.Equal(t, []string{"req-1"}, repo.cancelled)
}
