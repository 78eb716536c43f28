package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type mockAcceptances struct {
	existing   map[string]models.DonorAcceptance
	duplicates map[string]bool
	accepted   map[string]struct{}
	created    *models.DonorAcceptance
}

func (m *mockAcceptances) Create(ctx context.Context, acceptance *models.DonorAcceptance) error {
	if m.duplicates[acceptance.DonorID+acceptance.RequestID] {
		return repository.ErrDuplicateAcceptance
	}
	acceptance.ID = "acc-new"
	acceptance.Status = models.AcceptanceAccepted
	acceptance.AcceptedAt = time.Now().UTC()
	m.created = acceptance
	return nil
}

func (m *mockAcceptances) FindByID(ctx context.Context, id string) (*models.DonorAcceptance, error) {
	if a, ok := m.existing[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcceptances) AcceptedRequestIDs(ctx context.Context, donorID string) (map[string]struct{}, error) {
	if m.accepted == nil {
		return map[string]struct{}{}, nil
	}
	return m.accepted, nil
}

type mockConfirmer struct {
	result *repository.ConfirmDonationResult
	err    error
	params repository.ConfirmDonationParams
}

func (m *mockConfirmer) ConfirmDonation(ctx context.Context, params repository.ConfirmDonationParams) (*repository.ConfirmDonationResult, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockDonorLookup struct {
	donors map[string]models.Donor
}

func (m *mockDonorLookup) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	if d, ok := m.donors[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

type mockRequests struct {
	requests     map[string]models.BloodRequest
	recentExists bool
	cancelled    []string
}

func (m *mockRequests) Create(ctx context.Context, request *models.BloodRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.BloodRequest)
	}
	request.ID = "req-new"
	m.requests[request.ID] = *request
	return nil
}

func (m *mockRequests) FindByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequests) List(ctx context.Context, filter models.RequestFilter) ([]models.BloodRequest, int, error) {
	var out []models.BloodRequest
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.BloodType != "" && r.BloodType != filter.BloodType {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *mockRequests) LatestPendingForPatient(ctx context.Context, patientID string) (*models.BloodRequest, error) {
	return nil, sql.ErrNoRows
}

func (m *mockRequests) ExistsForPatientSince(ctx context.Context, patientID string, since time.Time) (bool, error) {
	return m.recentExists, nil
}

func (m *mockRequests) Cancel(ctx context.Context, id string) error {
	m.cancelled = append(m.cancelled, id)
	return nil
}

type mockFulfillmentNotifier struct {
	acceptances int
	waves       []string
	notified    int
}

func (m *mockFulfillmentNotifier) NotifyAcceptance(ctx context.Context, request *models.BloodRequest, donorName string) {
	m.acceptances++
}

func (m *mockFulfillmentNotifier) NotifyUnitsStillNeeded(ctx context.Context, request *models.BloodRequest, remainingUnits int, excludeDonorID string) (int, error) {
	m.waves = append(m.waves, excludeDonorID)
	return m.notified, nil
}

func hospID(s string) *string { return &s }

func pendingRequest(hospitalID string) models.BloodRequest {
	return models.BloodRequest{
		ID:          "req-1",
		RequestCode: "PT-AB12CD",
		HospitalID:  hospID(hospitalID),
		BloodType:   "B Positive",
		Status:      models.RequestPending,
		UnitsNeeded: 3,
	}
}

func TestAcceptRequestHappyPath(t *testing.T) {
	acceptances := &mockAcceptances{}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Name: "Dana"}}}
	notifier := &mockFulfillmentNotifier{}
	svc := NewFulfillmentService(acceptances, &mockConfirmer{}, donors, requests, notifier, nil, nil, nil, nil)

	acceptance, err := svc.AcceptRequest(context.Background(), "donor-1", AcceptRequestRequest{RequestID: "req-1"})
	require.NoError(t, err)
	assert.Equal(t, models.AcceptanceAccepted, acceptance.Status)
	assert.Equal(t, 1, notifier.acceptances)
}

func TestAcceptRequestDuplicateConflicts(t *testing.T) {
	acceptances := &mockAcceptances{duplicates: map[string]bool{"donor-1req-1": true}}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Name: "Dana"}}}
	svc := NewFulfillmentService(acceptances, &mockConfirmer{}, donors, requests, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	_, err := svc.AcceptRequest(context.Background(), "donor-1", AcceptRequestRequest{RequestID: "req-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateAccept.Code, appErr.Code)
}

func TestAcceptRequestClosedRequest(t *testing.T) {
	closed := pendingRequest("hosp-1")
	closed.Status = models.RequestFulfilled
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": closed}}
	svc := NewFulfillmentService(&mockAcceptances{}, &mockConfirmer{}, &mockDonorLookup{}, requests, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	_, err := svc.AcceptRequest(context.Background(), "donor-1", AcceptRequestRequest{RequestID: "req-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRequestClosed.Code, appErrors.FromError(err).Code)
}

func TestConfirmDonationPartialRunsFollowUpWave(t *testing.T) {
	acceptances := &mockAcceptances{existing: map[string]models.DonorAcceptance{
		"acc-1": {ID: "acc-1", DonorID: "donor-1", RequestID: "req-1", Status: models.AcceptanceAccepted},
	}}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Gender: strPtr(models.GenderFemale)}}}
	confirmer := &mockConfirmer{result: &repository.ConfirmDonationResult{
		RequestID:      "req-1",
		RequestCode:    "PT-AB12CD",
		RequestStatus:  models.RequestPending,
		RemainingUnits: 2,
		CreditedUnits:  1,
	}}
	notifier := &mockFulfillmentNotifier{notified: 4}
	svc := NewFulfillmentService(acceptances, confirmer, donors, requests, notifier, nil, nil, nil, nil)

	resp, err := svc.ConfirmDonation(context.Background(), "hosp-1", ConfirmDonationRequest{AcceptanceID: "acc-1", UnitsDonated: 1})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, resp.RequestStatus)
	assert.Equal(t, 2, resp.RemainingUnits)
	assert.Equal(t, 4, resp.DonorsNotified)
	assert.Equal(t, models.NotEligible, resp.DonorStatus)
	require.NotNil(t, resp.NextEligible)

	// The confirming donor is excluded from the follow-up wave.
	require.Len(t, notifier.waves, 1)
	assert.Equal(t, "donor-1", notifier.waves[0])

	// The female gap is 90 days from the donation date.
	assert.Equal(t, 90, int(resp.NextEligible.Sub(confirmer.params.DonationDate.Truncate(24*time.Hour)).Hours()/24))
}

func TestConfirmDonationFullFillSkipsWave(t *testing.T) {
	acceptances := &mockAcceptances{existing: map[string]models.DonorAcceptance{
		"acc-1": {ID: "acc-1", DonorID: "donor-1", RequestID: "req-1", Status: models.AcceptanceAccepted},
	}}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1"}}}
	confirmer := &mockConfirmer{result: &repository.ConfirmDonationResult{
		RequestID:     "req-1",
		RequestStatus: models.RequestFulfilled,
		CreditedUnits: 3,
	}}
	notifier := &mockFulfillmentNotifier{}
	svc := NewFulfillmentService(acceptances, confirmer, donors, requests, notifier, nil, nil, nil, nil)

	resp, err := svc.ConfirmDonation(context.Background(), "hosp-1", ConfirmDonationRequest{AcceptanceID: "acc-1", UnitsDonated: 3})
	require.NoError(t, err)
	assert.Equal(t, models.RequestFulfilled, resp.RequestStatus)
	assert.Equal(t, 3, resp.UnitsCredited)
	assert.Empty(t, notifier.waves)
}

func TestConfirmDonationWrongHospitalForbidden(t *testing.T) {
	acceptances := &mockAcceptances{existing: map[string]models.DonorAcceptance{
		"acc-1": {ID: "acc-1", DonorID: "donor-1", RequestID: "req-1", Status: models.AcceptanceAccepted},
	}}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	svc := NewFulfillmentService(acceptances, &mockConfirmer{}, &mockDonorLookup{}, requests, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	_, err := svc.ConfirmDonation(context.Background(), "hosp-2", ConfirmDonationRequest{AcceptanceID: "acc-1", UnitsDonated: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestConfirmDonationAlreadyConfirmed(t *testing.T) {
	acceptances := &mockAcceptances{existing: map[string]models.DonorAcceptance{
		"acc-1": {ID: "acc-1", DonorID: "donor-1", RequestID: "req-1", Status: models.AcceptanceAccepted},
	}}
	requests := &mockRequests{requests: map[string]models.BloodRequest{"req-1": pendingRequest("hosp-1")}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1"}}}
	confirmer := &mockConfirmer{err: repository.ErrAcceptanceNotPending}
	svc := NewFulfillmentService(acceptances, confirmer, donors, requests, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	_, err := svc.ConfirmDonation(context.Background(), "hosp-1", ConfirmDonationRequest{AcceptanceID: "acc-1", UnitsDonated: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestMatchingForDonorAnnotatesAcceptance(t *testing.T) {
	other := pendingRequest("hosp-1")
	other.ID = "req-2"
	fulfilled := pendingRequest("hosp-1")
	fulfilled.ID = "req-3"
	fulfilled.Status = models.RequestFulfilled
	mismatch := pendingRequest("hosp-1")
	mismatch.ID = "req-4"
	mismatch.BloodType = "O Negative"

	requests := &mockRequests{requests: map[string]models.BloodRequest{
		"req-1": pendingRequest("hosp-1"),
		"req-2": other,
		"req-3": fulfilled,
		"req-4": mismatch,
	}}
	acceptances := &mockAcceptances{accepted: map[string]struct{}{"req-2": {}}}
	donors := &mockDonorLookup{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", BloodType: "B Positive"}}}
	svc := NewFulfillmentService(acceptances, &mockConfirmer{}, donors, requests, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	matches, err := svc.MatchingForDonor(context.Background(), "donor-1")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	byID := make(map[string]MatchingRequest)
	for _, m := range matches {
		byID[m.Request.ID] = m
	}
	assert.False(t, byID["req-1"].Accepted)
	assert.True(t, byID["req-2"].Accepted)
}

func TestMatchingForDonorUnknownDonor(t *testing.T) {
	svc := NewFulfillmentService(&mockAcceptances{}, &mockConfirmer{}, &mockDonorLookup{}, &mockRequests{}, &mockFulfillmentNotifier{}, nil, nil, nil, nil)

	_, err := svc.MatchingForDonor(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
