package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type mockHospitalRepo struct {
	hospitals   map[string]models.Hospital
	usernames   map[string]bool
	created     *models.Hospital
	stockUnits  int
	stockErr    error
	adjustments []int
}

func (m *mockHospitalRepo) Create(ctx context.Context, hospital *models.Hospital) error {
	hospital.ID = "hosp-new"
	m.created = hospital
	return nil
}

func (m *mockHospitalRepo) FindByID(ctx context.Context, id string) (*models.Hospital, error) {
	if h, ok := m.hospitals[id]; ok {
		return &h, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHospitalRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.usernames[username], nil
}

func (m *mockHospitalRepo) List(ctx context.Context) ([]models.Hospital, error) {
	var out []models.Hospital
	for _, h := range m.hospitals {
		out = append(out, h)
	}
	return out, nil
}

func (m *mockHospitalRepo) Inventory(ctx context.Context, hospitalID string) ([]models.InventoryItem, error) {
	return []models.InventoryItem{{HospitalID: hospitalID, BloodType: "O Positive", Units: 4}}, nil
}

func (m *mockHospitalRepo) AdjustStock(ctx context.Context, hospitalID, bloodType string, delta int) (int, error) {
	if m.stockErr != nil {
		return 0, m.stockErr
	}
	m.adjustments = append(m.adjustments, delta)
	m.stockUnits += delta
	return m.stockUnits, nil
}

func (m *mockHospitalRepo) StockedHospitals(ctx context.Context, bloodType string) ([]models.Hospital, map[string]int, error) {
	var out []models.Hospital
	stock := make(map[string]int)
	for _, h := range m.hospitals {
		out = append(out, h)
		stock[h.ID] = 3
	}
	return out, stock, nil
}

type mockPendingAcceptances struct{}

func (m *mockPendingAcceptances) PendingForHospital(ctx context.Context, hospitalID string) ([]models.PendingAcceptance, error) {
	return nil, nil
}

type mockTransfers struct {
	created *models.BloodTransfer
	err     error
}

func (m *mockTransfers) Create(ctx context.Context, transfer *models.BloodTransfer) error {
	if m.err != nil {
		return m.err
	}
	transfer.ID = "transfer-new"
	m.created = transfer
	return nil
}

func (m *mockTransfers) ListForHospital(ctx context.Context, hospitalID string) ([]models.BloodTransfer, error) {
	return nil, nil
}

type mockStockFulfiller struct {
	result *repository.StockFulfillResult
	err    error
}

func (m *mockStockFulfiller) FulfillFromStock(ctx context.Context, hospitalID, requestID string, units int) (*repository.StockFulfillResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newHospitalService(repo *mockHospitalRepo, transfers *mockTransfers, fulfiller *mockStockFulfiller) *HospitalService {
	if transfers == nil {
		transfers = &mockTransfers{}
	}
	if fulfiller == nil {
		fulfiller = &mockStockFulfiller{}
	}
	return NewHospitalService(repo, &mockPendingAcceptances{}, transfers, fulfiller, nil, nil)
}

func TestRegisterHospitalHashesPassword(t *testing.T) {
	repo := &mockHospitalRepo{}
	svc := newHospitalService(repo, nil, nil)

	hospital, err := svc.Register(context.Background(), RegisterHospitalRequest{
		Name:     "City General",
		Location: "Chennai",
		Contact:  "044-1234567",
		Username: "citygeneral",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "hosp-new", hospital.ID)
	assert.NotEmpty(t, hospital.PasswordHash)
	assert.NotEqual(t, "supersecret", hospital.PasswordHash)
}

func TestRegisterHospitalDuplicateUsername(t *testing.T) {
	repo := &mockHospitalRepo{usernames: map[string]bool{"citygeneral": true}}
	svc := newHospitalService(repo, nil, nil)

	_, err := svc.Register(context.Background(), RegisterHospitalRequest{
		Name: "City General", Location: "Chennai", Contact: "044-1234567",
		Username: "citygeneral", Password: "supersecret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdjustInventoryMapsUnderflow(t *testing.T) {
	repo := &mockHospitalRepo{stockErr: sql.ErrNoRows}
	svc := newHospitalService(repo, nil, nil)

	_, err := svc.AdjustInventory(context.Background(), "hosp-1", AdjustInventoryRequest{
		BloodType: "O Positive",
		Delta:     -5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInsufficientStock.Code, appErrors.FromError(err).Code)
}

func TestAdjustInventoryRejectsUnknownBloodType(t *testing.T) {
	svc := newHospitalService(&mockHospitalRepo{}, nil, nil)

	_, err := svc.AdjustInventory(context.Background(), "hosp-1", AdjustInventoryRequest{
		BloodType: "Z Positive",
		Delta:     2,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTransferRejectsSelf(t *testing.T) {
	svc := newHospitalService(&mockHospitalRepo{}, nil, nil)

	dest := "hosp-1"
	_, err := svc.Transfer(context.Background(), "hosp-1", TransferRequest{
		ToHospitalID: &dest,
		BloodType:    "O Positive",
		Units:        2,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTransferRequiresKnownDestination(t *testing.T) {
	svc := newHospitalService(&mockHospitalRepo{}, nil, nil)

	dest := "hosp-missing"
	_, err := svc.Transfer(context.Background(), "hosp-1", TransferRequest{
		ToHospitalID: &dest,
		BloodType:    "O Positive",
		Units:        2,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTransferToDiscard(t *testing.T) {
	transfers := &mockTransfers{}
	svc := newHospitalService(&mockHospitalRepo{}, transfers, nil)

	transfer, err := svc.Transfer(context.Background(), "hosp-1", TransferRequest{
		BloodType: "B Negative",
		Units:     1,
	})
	require.NoError(t, err)
	assert.Nil(t, transfer.ToHospitalID)
	assert.Equal(t, "hosp-1", transfer.FromHospitalID)
	require.NotNil(t, transfers.created)
}

func TestTransferMapsInsufficientStock(t *testing.T) {
	transfers := &mockTransfers{err: sql.ErrNoRows}
	svc := newHospitalService(&mockHospitalRepo{}, transfers, nil)

	_, err := svc.Transfer(context.Background(), "hosp-1", TransferRequest{
		BloodType: "O Positive",
		Units:     10,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInsufficientStock.Code, appErrors.FromError(err).Code)
}

func TestFulfillFromStockMapsClosedRequest(t *testing.T) {
	fulfiller := &mockStockFulfiller{err: repository.ErrRequestNotPending}
	svc := newHospitalService(&mockHospitalRepo{}, nil, fulfiller)

	_, err := svc.FulfillFromStock(context.Background(), "hosp-1", "req-1", 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRequestClosed.Code, appErrors.FromError(err).Code)
}

func TestFulfillFromStockRequiresPositiveUnits(t *testing.T) {
	svc := newHospitalService(&mockHospitalRepo{}, nil, nil)

	_, err := svc.FulfillFromStock(context.Background(), "hosp-1", "req-1", 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStockedHospitalsPairsUnits(t *testing.T) {
	repo := &mockHospitalRepo{hospitals: map[string]models.Hospital{
		"hosp-1": {ID: "hosp-1", Name: "City General"},
	}}
	svc := newHospitalService(repo, nil, nil)

	stocked, err := svc.StockedHospitals(context.Background(), "O Positive")
	require.NoError(t, err)
	require.Len(t, stocked, 1)
	assert.Equal(t, 3, stocked[0].Units)
}
