package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type mockPatientDirectory struct {
	patients map[string]models.Patient
	created  *models.Patient
}

func (m *mockPatientDirectory) Create(ctx context.Context, patient *models.Patient) error {
	patient.ID = "pat-new"
	m.created = patient
	return nil
}

func (m *mockPatientDirectory) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	if p, ok := m.patients[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

type mockStockedLookup struct {
	hospitals []models.Hospital
	stock     map[string]int
}

func (m *mockStockedLookup) StockedHospitals(ctx context.Context, bloodType string) ([]models.Hospital, map[string]int, error) {
	return m.hospitals, m.stock, nil
}

type mockPendingLookup struct {
	pending map[string]models.BloodRequest
}

func (m *mockPendingLookup) LatestPendingForPatient(ctx context.Context, patientID string) (*models.BloodRequest, error) {
	if r, ok := m.pending[patientID]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func newPatientService(patients *mockPatientDirectory, stocked *mockStockedLookup, donors *mockMatchingDonors, pending *mockPendingLookup) *PatientService {
	if stocked == nil {
		stocked = &mockStockedLookup{}
	}
	if donors == nil {
		donors = &mockMatchingDonors{}
	}
	var requests patientRequestLookup
	if pending != nil {
		requests = pending
	}
	return NewPatientService(patients, stocked, donors, requests, nil, nil, nil)
}

func TestRegisterPatientPersists(t *testing.T) {
	patients := &mockPatientDirectory{}
	svc := newPatientService(patients, nil, nil, nil)

	patient, err := svc.Register(context.Background(), RegisterPatientRequest{
		Name:      "Ravi",
		BloodType: "A Positive",
		Location:  "Chennai",
		Contact:   "9000000010",
	})
	require.NoError(t, err)
	assert.Equal(t, "pat-new", patient.ID)
	require.NotNil(t, patients.created)
	assert.Equal(t, "A Positive", patients.created.BloodType)
}

func TestRegisterPatientRequiresContact(t *testing.T) {
	svc := newPatientService(&mockPatientDirectory{}, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterPatientRequest{
		Name:      "Ravi",
		BloodType: "A Positive",
		Location:  "Chennai",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterPatientRejectsUnknownBloodType(t *testing.T) {
	svc := newPatientService(&mockPatientDirectory{}, nil, nil, nil)

	_, err := svc.Register(context.Background(), RegisterPatientRequest{
		Name:      "Ravi",
		BloodType: "Purple",
		Location:  "Chennai",
		Contact:   "9000000010",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResourcesFiltersIneligibleDonors(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -10)
	donors := &mockMatchingDonors{donors: []models.Donor{
		{ID: "donor-1", Name: "Dana", BloodType: "A Positive", Available: true},
		{ID: "donor-2", Name: "Ezra", BloodType: "A Positive", Available: true, LastDonated: &recent},
	}}
	stocked := &mockStockedLookup{
		hospitals: []models.Hospital{{ID: "hosp-1", Name: "City General"}},
		stock:     map[string]int{"hosp-1": 4},
	}
	svc := newPatientService(&mockPatientDirectory{}, stocked, donors, nil)

	resources, err := svc.Resources(context.Background(), "A Positive", "")
	require.NoError(t, err)
	require.Len(t, resources.Donors, 1)
	assert.Equal(t, "donor-1", resources.Donors[0].Donor.ID)
	require.Len(t, resources.Hospitals, 1)
	assert.Equal(t, 4, resources.Hospitals[0].Units)
}

func TestResourcesRejectsUnknownBloodType(t *testing.T) {
	svc := newPatientService(&mockPatientDirectory{}, nil, nil, nil)

	_, err := svc.Resources(context.Background(), "Purple", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestResourcesForPatientPrefersPendingRequestBloodType(t *testing.T) {
	patients := &mockPatientDirectory{patients: map[string]models.Patient{
		"pat-1": {ID: "pat-1", Name: "Ravi", BloodType: "A Positive", Location: "Chennai"},
	}}
	pending := &mockPendingLookup{pending: map[string]models.BloodRequest{
		"pat-1": {ID: "req-1", BloodType: "B Positive", Status: models.RequestPending},
	}}
	svc := newPatientService(patients, nil, nil, pending)

	resources, err := svc.ResourcesForPatient(context.Background(), "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "B Positive", resources.BloodType)
}

func TestResourcesForPatientFallsBackToProfile(t *testing.T) {
	patients := &mockPatientDirectory{patients: map[string]models.Patient{
		"pat-1": {ID: "pat-1", Name: "Ravi", BloodType: "A Positive", Location: "Chennai"},
	}}
	svc := newPatientService(patients, nil, nil, &mockPendingLookup{})

	resources, err := svc.ResourcesForPatient(context.Background(), "pat-1")
	require.NoError(t, err)
	assert.Equal(t, "A Positive", resources.BloodType)
}

func TestResourcesForPatientUnknownPatient(t *testing.T) {
	svc := newPatientService(&mockPatientDirectory{}, nil, nil, nil)

	_, err := svc.ResourcesForPatient(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSortByDistanceNilLast(t *testing.T) {
	near, far := 2.5, 40.0
	hospitals := []HospitalResource{
		{Hospital: models.Hospital{ID: "unresolved"}},
		{Hospital: models.Hospital{ID: "far"}, DistanceKm: &far},
		{Hospital: models.Hospital{ID: "near"}, DistanceKm: &near},
	}
	sortHospitalsByDistance(hospitals)
	assert.Equal(t, "near", hospitals[0].Hospital.ID)
	assert.Equal(t, "far", hospitals[1].Hospital.ID)
	assert.Equal(t, "unresolved", hospitals[2].Hospital.ID)

	donors := []DonorResource{
		{Donor: models.Donor{ID: "unresolved"}},
		{Donor: models.Donor{ID: "near"}, DistanceKm: &near},
	}
	sortDonorsByDistance(donors)
	assert.Equal(t, "near", donors[0].Donor.ID)
	assert.Equal(t, "unresolved", donors[1].Donor.ID)
}
