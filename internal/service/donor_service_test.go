package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type mockDonorRepo struct {
	donors       map[string]models.Donor
	contacts     map[string]bool
	created      *models.Donor
	availability map[string]bool
	recorded     *time.Time
	eligibility  map[string]models.EligibilityStatus
	rankPosition int
	rankTotal    int
}

func (m *mockDonorRepo) Create(ctx context.Context, donor *models.Donor) error {
	donor.ID = "donor-new"
	m.created = donor
	return nil
}

func (m *mockDonorRepo) FindByID(ctx context.Context, id string) (*models.Donor, error) {
	if d, ok := m.donors[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDonorRepo) ExistsByContact(ctx context.Context, contact string) (bool, error) {
	return m.contacts[contact], nil
}

func (m *mockDonorRepo) List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int, error) {
	var out []models.Donor
	for _, d := range m.donors {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockDonorRepo) UpdateAvailability(ctx context.Context, id string, available bool) error {
	if m.availability == nil {
		m.availability = make(map[string]bool)
	}
	m.availability[id] = available
	return nil
}

func (m *mockDonorRepo) UpdateEligibility(ctx context.Context, id string, status models.EligibilityStatus, nextEligible *time.Time) error {
	if m.eligibility == nil {
		m.eligibility = make(map[string]models.EligibilityStatus)
	}
	m.eligibility[id] = status
	return nil
}

func (m *mockDonorRepo) RecordDonation(ctx context.Context, id string, lastDonated time.Time, status models.EligibilityStatus, nextEligible *time.Time) error {
	m.recorded = &lastDonated
	if m.eligibility == nil {
		m.eligibility = make(map[string]models.EligibilityStatus)
	}
	m.eligibility[id] = status
	return nil
}

func (m *mockDonorRepo) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return []models.LeaderboardEntry{{DonorID: "donor-1", DonationsCount: 7}}, nil
}

func (m *mockDonorRepo) Rank(ctx context.Context, id string) (int, int, error) {
	return m.rankPosition, m.rankTotal, nil
}

type mockHistoryRepo struct {
	entries []models.DonationHistoryEntry
}

func (m *mockHistoryRepo) HistoryForDonor(ctx context.Context, donorID string) ([]models.DonationHistoryEntry, error) {
	return m.entries, nil
}

func newDonorService(repo *mockDonorRepo) *DonorService {
	return NewDonorService(repo, &mockHistoryRepo{}, nil, nil, nil, nil, LeaderboardCacheConfig{})
}

func TestRegisterDonorStartsEligible(t *testing.T) {
	repo := &mockDonorRepo{}
	svc := newDonorService(repo)

	donor, err := svc.Register(context.Background(), RegisterDonorRequest{
		Name:      "Dana",
		BloodType: "O Positive",
		Location:  "Chennai",
		Contact:   "9000000001",
		Gender:    strPtr(models.GenderFemale),
	})
	require.NoError(t, err)
	assert.Equal(t, models.Eligible, donor.EligibilityStatus)
	assert.Nil(t, donor.NextEligible)
	assert.Nil(t, donor.LastDonated)
	assert.True(t, donor.Available)
}

func TestRegisterDonorDuplicateContact(t *testing.T) {
	repo := &mockDonorRepo{contacts: map[string]bool{"9000000001": true}}
	svc := newDonorService(repo)

	_, err := svc.Register(context.Background(), RegisterDonorRequest{
		Name: "Dana", BloodType: "O Positive", Location: "Chennai", Contact: "9000000001",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRecordDonationRejectsFutureDate(t *testing.T) {
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {ID: "donor-1"}}}
	svc := newDonorService(repo)

	_, err := svc.RecordDonation(context.Background(), "donor-1", RecordDonationRequest{
		LastDonated: time.Now().UTC().AddDate(0, 0, 1),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.recorded)
}

func TestRecordDonationUpdatesBaseline(t *testing.T) {
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Gender: strPtr(models.GenderMale)}}}
	svc := newDonorService(repo)

	donated := time.Now().UTC().AddDate(0, 0, -30)
	result, err := svc.RecordDonation(context.Background(), "donor-1", RecordDonationRequest{LastDonated: donated})
	require.NoError(t, err)
	assert.Equal(t, models.NotEligible, result.Status)
	require.NotNil(t, result.NextEligible)
	assert.Equal(t, 90, result.DaysToWait)
	require.NotNil(t, repo.recorded)
}

func TestCheckEligibilityRefreshesDriftedCache(t *testing.T) {
	old := time.Now().UTC().AddDate(0, 0, -200)
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {
		ID:                "donor-1",
		Gender:            strPtr(models.GenderMale),
		LastDonated:       timePtr(old),
		EligibilityStatus: models.NotEligible,
	}}}
	svc := newDonorService(repo)

	result, err := svc.CheckEligibility(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Equal(t, models.Eligible, result.Status)
	assert.Zero(t, result.DaysToWait)
	assert.Equal(t, models.Eligible, repo.eligibility["donor-1"])
}

func TestToggleAvailability(t *testing.T) {
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Available: true}}}
	svc := newDonorService(repo)

	available, err := svc.ToggleAvailability(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.False(t, available)
	assert.False(t, repo.availability["donor-1"])
}

func TestPositionMarksTopTwenty(t *testing.T) {
	repo := &mockDonorRepo{
		donors:       map[string]models.Donor{"donor-1": {ID: "donor-1", DonationsCount: 7}},
		rankPosition: 4,
		rankTotal:    120,
	}
	svc := newDonorService(repo)

	position, err := svc.Position(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Equal(t, 4, position.Position)
	assert.Equal(t, 120, position.TotalDonors)
	assert.True(t, position.TopTwenty)
}

func TestExportCSVRendersRoster(t *testing.T) {
	donated := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {
		ID:                "donor-1",
		Name:              "Dana",
		BloodType:         "O Positive",
		Location:          "Chennai",
		Contact:           "9000000001",
		Available:         true,
		DonationsCount:    7,
		LastDonated:       timePtr(donated),
		EligibilityStatus: models.NotEligible,
	}}}
	svc := newDonorService(repo)

	payload, filename, err := svc.ExportCSV(context.Background(), models.DonorFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	out := string(payload)
	assert.Contains(t, out, "name,blood_type,location,contact,available,donations_count,eligibility_status,last_donated,next_eligible")
	assert.Contains(t, out, "Dana,O Positive,Chennai,9000000001,true,7,not eligible,2026-01-10,")
}

func TestCertificateRendersPDF(t *testing.T) {
	repo := &mockDonorRepo{donors: map[string]models.Donor{"donor-1": {ID: "donor-1", Name: "Dana", DonationsCount: 7}}}
	svc := newDonorService(repo)

	payload, filename, err := svc.Certificate(context.Background(), "donor-1")
	require.NoError(t, err)
	assert.Equal(t, "certificate-donor-1.pdf", filename)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
