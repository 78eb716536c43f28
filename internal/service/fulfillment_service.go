package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type acceptanceRepository interface {
	Create(ctx context.Context, acceptance *models.DonorAcceptance) error
	FindByID(ctx context.Context, id string) (*models.DonorAcceptance, error)
	AcceptedRequestIDs(ctx context.Context, donorID string) (map[string]struct{}, error)
}

type donationConfirmer interface {
	ConfirmDonation(ctx context.Context, params repository.ConfirmDonationParams) (*repository.ConfirmDonationResult, error)
}

type fulfillmentDonorLookup interface {
	FindByID(ctx context.Context, id string) (*models.Donor, error)
}

type fulfillmentNotifier interface {
	NotifyAcceptance(ctx context.Context, request *models.BloodRequest, donorName string)
	NotifyUnitsStillNeeded(ctx context.Context, request *models.BloodRequest, remainingUnits int, excludeDonorID string) (int, error)
}

// AcceptRequestRequest holds the donor's commitment payload.
type AcceptRequestRequest struct {
	RequestID string  `json:"request_id" validate:"required"`
	Note      *string `json:"note,omitempty"`
}

// ConfirmDonationRequest holds the hospital's confirmation payload.
type ConfirmDonationRequest struct {
	AcceptanceID string `json:"acceptance_id" validate:"required"`
	UnitsDonated int    `json:"units_donated" validate:"required,gt=0"`
}

// ConfirmDonationResponse reports the outcome of a confirmed donation.
type ConfirmDonationResponse struct {
	RequestID      string                   `json:"request_id"`
	RequestCode    string                   `json:"request_code"`
	RequestStatus  models.RequestStatus     `json:"request_status"`
	RemainingUnits int                      `json:"remaining_units"`
	UnitsCredited  int                      `json:"units_credited"`
	DonorStatus    models.EligibilityStatus `json:"donor_status"`
	NextEligible   *time.Time               `json:"next_eligible,omitempty"`
	DonorsNotified int                      `json:"donors_notified"`
}

// MatchingRequest is a pending request as seen by one donor: whether they
// already accepted it and how far away it is when geocoding resolves.
type MatchingRequest struct {
	Request    models.BloodRequest `json:"request"`
	Accepted   bool                `json:"accepted"`
	DistanceKm *float64            `json:"distance_km,omitempty"`
}

// FulfillmentService drives the two-phase donation workflow: a donor accepts
// a request, then the hospital confirms the completed donation.
type FulfillmentService struct {
	acceptances acceptanceRepository
	confirmer   donationConfirmer
	donors      fulfillmentDonorLookup
	requests    requestRepository
	notifier    fulfillmentNotifier
	location    *LocationService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFulfillmentService constructs the fulfillment service. A nil location
// service disables distance annotation.
func NewFulfillmentService(acceptances acceptanceRepository, confirmer donationConfirmer, donors fulfillmentDonorLookup, requests requestRepository, notifier fulfillmentNotifier, location *LocationService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FulfillmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FulfillmentService{acceptances: acceptances, confirmer: confirmer, donors: donors, requests: requests, notifier: notifier, location: location, metrics: metrics, validator: validate, logger: logger}
}

// MatchingForDonor lists pending requests for the donor's blood type, newest
// first, annotated with the donor's acceptance state and the distance from
// the donor when coordinates can be resolved.
func (s *FulfillmentService) MatchingForDonor(ctx context.Context, donorID string) ([]MatchingRequest, error) {
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
	}

	requests, _, err := s.requests.List(ctx, models.RequestFilter{
		Status:    models.RequestPending,
		BloodType: donor.BloodType,
		PageSize:  100,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	accepted, err := s.acceptances.AcceptedRequestIDs(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load acceptances")
	}

	var origin *Coordinates
	if s.location != nil {
		if donor.Latitude != nil && donor.Longitude != nil {
			origin = &Coordinates{Latitude: *donor.Latitude, Longitude: *donor.Longitude}
		} else {
			origin = s.location.Geocode(ctx, donor.Location)
		}
	}

	out := make([]MatchingRequest, 0, len(requests))
	for _, request := range requests {
		entry := MatchingRequest{Request: request}
		if _, ok := accepted[request.ID]; ok {
			entry.Accepted = true
		}
		if origin != nil {
			where := request.PatientLocation
			if request.HospitalLocation != nil && *request.HospitalLocation != "" {
				where = *request.HospitalLocation
			}
			if target := s.location.Geocode(ctx, where); target != nil {
				d := Distance(*origin, *target)
				entry.DistanceKm = &d
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// AcceptRequest records a donor's commitment to a pending request. The
// (donor, request) unique constraint is the source of truth for duplicates;
// two simultaneous accepts cannot both succeed.
func (s *FulfillmentService) AcceptRequest(ctx context.Context, donorID string, req AcceptRequestRequest) (*models.DonorAcceptance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid acceptance payload")
	}

	request, err := s.requests.FindByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.Status != models.RequestPending {
		return nil, appErrors.Clone(appErrors.ErrRequestClosed, "")
	}

	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
	}

	acceptance := &models.DonorAcceptance{DonorID: donorID, RequestID: req.RequestID, Note: req.Note}
	if err := s.acceptances.Create(ctx, acceptance); err != nil {
		if errors.Is(err, repository.ErrDuplicateAcceptance) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateAccept, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record acceptance")
	}

	s.notifier.NotifyAcceptance(ctx, request, donor.Name)
	return acceptance, nil
}

// ConfirmDonation finalises an acceptance on behalf of the hospital that owns
// the request. The donation date is the confirmation date; the donor's
// eligibility is recomputed from it before the transaction is applied.
func (s *FulfillmentService) ConfirmDonation(ctx context.Context, hospitalID string, req ConfirmDonationRequest) (*ConfirmDonationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}

	acceptance, err := s.acceptances.FindByID(ctx, req.AcceptanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "acceptance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load acceptance")
	}

	request, err := s.requests.FindByID(ctx, acceptance.RequestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.HospitalID == nil || *request.HospitalID != hospitalID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request does not belong to this hospital")
	}

	donor, err := s.donors.FindByID(ctx, acceptance.DonorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
	}

	donationDate := time.Now().UTC()
	status, nextEligible := ComputeEligibility(donor.Gender, &donationDate, donationDate)

	result, err := s.confirmer.ConfirmDonation(ctx, repository.ConfirmDonationParams{
		AcceptanceID:      req.AcceptanceID,
		UnitsDonated:      req.UnitsDonated,
		DonationDate:      donationDate,
		EligibilityStatus: status,
		NextEligible:      nextEligible,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAcceptanceNotPending):
			return nil, appErrors.Clone(appErrors.ErrConflict, "acceptance already confirmed")
		case errors.Is(err, repository.ErrRequestNotPending):
			return nil, appErrors.Clone(appErrors.ErrRequestClosed, "")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "acceptance not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm donation")
		}
	}

	s.metrics.RecordDonationConfirmed(result.CreditedUnits)

	response := &ConfirmDonationResponse{
		RequestID:      result.RequestID,
		RequestCode:    result.RequestCode,
		RequestStatus:  result.RequestStatus,
		RemainingUnits: result.RemainingUnits,
		UnitsCredited:  result.CreditedUnits,
		DonorStatus:    status,
		NextEligible:   nextEligible,
	}

	if result.RequestStatus == models.RequestPending && result.RemainingUnits > 0 {
		request.UnitsNeeded = result.RemainingUnits
		notified, err := s.notifier.NotifyUnitsStillNeeded(ctx, request, result.RemainingUnits, acceptance.DonorID)
		if err != nil {
			s.logger.Warn("follow-up notification wave failed", zap.String("request_id", result.RequestID), zap.Error(err))
		}
		response.DonorsNotified = notified
	}

	return response, nil
}
