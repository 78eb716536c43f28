package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type hospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	FindByID(ctx context.Context, id string) (*models.Hospital, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]models.Hospital, error)
	Inventory(ctx context.Context, hospitalID string) ([]models.InventoryItem, error)
	AdjustStock(ctx context.Context, hospitalID, bloodType string, delta int) (int, error)
	StockedHospitals(ctx context.Context, bloodType string) ([]models.Hospital, map[string]int, error)
}

type pendingAcceptanceRepository interface {
	PendingForHospital(ctx context.Context, hospitalID string) ([]models.PendingAcceptance, error)
}

type transferRepository interface {
	Create(ctx context.Context, transfer *models.BloodTransfer) error
	ListForHospital(ctx context.Context, hospitalID string) ([]models.BloodTransfer, error)
}

type stockFulfiller interface {
	FulfillFromStock(ctx context.Context, hospitalID, requestID string, units int) (*repository.StockFulfillResult, error)
}

// RegisterHospitalRequest holds payload for hospital registration.
type RegisterHospitalRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Contact  string `json:"contact" validate:"required"`
	Username string `json:"username" validate:"required,min=4"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdjustInventoryRequest holds payload for a stock adjustment.
type AdjustInventoryRequest struct {
	BloodType string `json:"blood_type" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
}

// TransferRequest holds payload for moving stock between hospitals or
// directly to a patient.
type TransferRequest struct {
	ToHospitalID *string `json:"to_hospital_id,omitempty"`
	BloodType    string  `json:"blood_type" validate:"required"`
	Units        int     `json:"units" validate:"required,gt=0"`
}

// StockedHospital pairs a hospital with its unit count for one blood type.
type StockedHospital struct {
	Hospital models.Hospital `json:"hospital"`
	Units    int             `json:"units"`
}

// HospitalService handles hospital accounts, inventory, and transfers.
type HospitalService struct {
	repo        hospitalRepository
	acceptances pendingAcceptanceRepository
	transfers   transferRepository
	fulfillment stockFulfiller
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewHospitalService constructs the hospital service.
func NewHospitalService(repo hospitalRepository, acceptances pendingAcceptanceRepository, transfers transferRepository, fulfillment stockFulfiller, validate *validator.Validate, logger *zap.Logger) *HospitalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HospitalService{repo: repo, acceptances: acceptances, transfers: transfers, fulfillment: fulfillment, validator: validate, logger: logger}
}

// Register creates a hospital account with a seeded zero inventory.
func (s *HospitalService) Register(ctx context.Context, req RegisterHospitalRequest) (*models.Hospital, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hospital payload")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	hospital := &models.Hospital{
		Name:         req.Name,
		Location:     req.Location,
		Contact:      req.Contact,
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, hospital); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create hospital")
	}
	return hospital, nil
}

// Get returns a hospital by ID.
func (s *HospitalService) Get(ctx context.Context, id string) (*models.Hospital, error) {
	hospital, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "hospital not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hospital")
	}
	return hospital, nil
}

// List returns all registered hospitals.
func (s *HospitalService) List(ctx context.Context) ([]models.Hospital, error) {
	hospitals, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list hospitals")
	}
	return hospitals, nil
}

// Inventory returns a hospital's per-blood-type stock counters.
func (s *HospitalService) Inventory(ctx context.Context, hospitalID string) ([]models.InventoryItem, error) {
	items, err := s.repo.Inventory(ctx, hospitalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory")
	}
	return items, nil
}

// AdjustInventory applies a delta to one stock counter. Underflows map to
// ErrInsufficientStock.
func (s *HospitalService) AdjustInventory(ctx context.Context, hospitalID string, req AdjustInventoryRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inventory payload")
	}
	if !models.IsValidBloodType(req.BloodType) {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}

	units, err := s.repo.AdjustStock(ctx, hospitalID, req.BloodType, req.Delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrInsufficientStock, "")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust stock")
	}
	return units, nil
}

// PendingAcceptances lists unconfirmed donor acceptances against the
// hospital's requests.
func (s *HospitalService) PendingAcceptances(ctx context.Context, hospitalID string) ([]models.PendingAcceptance, error) {
	pending, err := s.acceptances.PendingForHospital(ctx, hospitalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending acceptances")
	}
	return pending, nil
}

// FulfillFromStock serves a pending request from the hospital's own stock.
func (s *HospitalService) FulfillFromStock(ctx context.Context, hospitalID, requestID string, units int) (*repository.StockFulfillResult, error) {
	if units <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "units must be positive")
	}

	result, err := s.fulfillment.FulfillFromStock(ctx, hospitalID, requestID, units)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotPending):
			return nil, appErrors.Clone(appErrors.ErrRequestClosed, "")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrInsufficientStock, "")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fulfill from stock")
		}
	}
	return result, nil
}

// Transfer moves stock to another hospital, or out of the system when no
// destination is given.
func (s *HospitalService) Transfer(ctx context.Context, fromHospitalID string, req TransferRequest) (*models.BloodTransfer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}
	if !models.IsValidBloodType(req.BloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}
	if req.ToHospitalID != nil {
		if *req.ToHospitalID == fromHospitalID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cannot transfer to the same hospital")
		}
		if _, err := s.Get(ctx, *req.ToHospitalID); err != nil {
			return nil, err
		}
	}

	transfer := &models.BloodTransfer{
		FromHospitalID: fromHospitalID,
		ToHospitalID:   req.ToHospitalID,
		BloodType:      req.BloodType,
		Units:          req.Units,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInsufficientStock, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transfer")
	}
	return transfer, nil
}

// Transfers lists the hospital's sent and received transfers.
func (s *HospitalService) Transfers(ctx context.Context, hospitalID string) ([]models.BloodTransfer, error) {
	transfers, err := s.transfers.ListForHospital(ctx, hospitalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transfers")
	}
	return transfers, nil
}

// StockedHospitals lists hospitals holding units of the given blood type.
func (s *HospitalService) StockedHospitals(ctx context.Context, bloodType string) ([]StockedHospital, error) {
	if !models.IsValidBloodType(bloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}
	hospitals, stock, err := s.repo.StockedHospitals(ctx, bloodType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stocked hospitals")
	}
	out := make([]StockedHospital, 0, len(hospitals))
	for _, h := range hospitals {
		out = append(out, StockedHospital{Hospital: h, Units: stock[h.ID]})
	}
	return out, nil
}
