package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, request *models.BloodRequest) error
	FindByID(ctx context.Context, id string) (*models.BloodRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.BloodRequest, int, error)
	LatestPendingForPatient(ctx context.Context, patientID string) (*models.BloodRequest, error)
	ExistsForPatientSince(ctx context.Context, patientID string, since time.Time) (bool, error)
	Cancel(ctx context.Context, id string) error
}

type requestPatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByNameAndContact(ctx context.Context, name, contact string) (*models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
}

type requestHospitalLookup interface {
	FindByID(ctx context.Context, id string) (*models.Hospital, error)
}

type requestNotifier interface {
	NotifyNewRequest(ctx context.Context, request *models.BloodRequest) (int, error)
}

// CreateRequestRequest holds the open (no-login) blood request payload. The
// patient record is keyed on (name, contact) and reused across requests.
type CreateRequestRequest struct {
	PatientName string  `json:"patient_name" validate:"required"`
	Contact     string  `json:"contact" validate:"required"`
	BloodType   string  `json:"blood_type" validate:"required"`
	UnitsNeeded int     `json:"units_needed" validate:"required,gt=0"`
	Urgency     string  `json:"urgency" validate:"omitempty,oneof=normal urgent emergency"`
	Location    string  `json:"location" validate:"required"`
	HospitalID  *string `json:"hospital_id,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Problem     *string `json:"problem,omitempty"`
	District    *string `json:"district,omitempty"`
	State       *string `json:"state,omitempty"`
	RequiredBy  *string `json:"required_by,omitempty"`
}

// CreateRequestResult pairs the created request with the notification count.
type CreateRequestResult struct {
	Request        *models.BloodRequest `json:"request"`
	DonorsNotified int                  `json:"donors_notified"`
}

// RequestService handles blood request creation and lifecycle.
type RequestService struct {
	repo      requestRepository
	patients  requestPatientRepository
	hospitals requestHospitalLookup
	notifier  requestNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the request service.
func NewRequestService(repo requestRepository, patients requestPatientRepository, hospitals requestHospitalLookup, notifier requestNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, patients: patients, hospitals: hospitals, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a blood request and runs the first notification wave.
// Each patient may open at most one request per calendar day.
func (s *RequestService) Create(ctx context.Context, req CreateRequestRequest) (*CreateRequestResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if !models.IsValidBloodType(req.BloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}
	if req.HospitalID != nil {
		if _, err := s.hospitals.FindByID(ctx, *req.HospitalID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "hospital not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hospital")
		}
	}

	patient, err := s.upsertPatient(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	recent, err := s.repo.ExistsForPatientSince(ctx, patient.ID, startOfDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check recent requests")
	}
	if recent {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a request was already opened for this patient today")
	}

	code, err := generateRequestCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate request code")
	}

	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	request := &models.BloodRequest{
		RequestCode: code,
		PatientID:   patient.ID,
		HospitalID:  req.HospitalID,
		BloodType:   req.BloodType,
		Urgency:     urgency,
		UnitsNeeded: req.UnitsNeeded,
		RequiredBy:  req.RequiredBy,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	request.PatientName = patient.Name
	request.PatientLocation = patient.Location
	s.metrics.RecordRequestCreated()

	notified, err := s.notifier.NotifyNewRequest(ctx, request)
	if err != nil {
		// The request stands even when the wave fails; donors can still
		// discover it through the open listing.
		s.logger.Warn("notification wave failed", zap.String("request_id", request.ID), zap.Error(err))
		notified = 0
	}

	return &CreateRequestResult{Request: request, DonorsNotified: notified}, nil
}

// Get returns a request with patient and hospital context.
func (s *RequestService) Get(ctx context.Context, id string) (*models.BloodRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// List returns requests matching the filter.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]models.BloodRequest, *models.Pagination, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return requests, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Track returns the newest pending request for a patient identified by the
// (name, contact) pair used at creation.
func (s *RequestService) Track(ctx context.Context, name, contact string) (*models.BloodRequest, error) {
	patient, err := s.patients.FindByNameAndContact(ctx, name, contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no request found for patient")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	request, err := s.repo.LatestPendingForPatient(ctx, patient.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no pending request for patient")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// Cancel marks a pending request cancelled.
func (s *RequestService) Cancel(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return appErrors.Clone(appErrors.ErrRequestClosed, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel request")
	}
	return nil
}

func (s *RequestService) upsertPatient(ctx context.Context, req CreateRequestRequest) (*models.Patient, error) {
	patient, err := s.patients.FindByNameAndContact(ctx, req.PatientName, req.Contact)
	if err == nil {
		patient.BloodType = req.BloodType
		patient.Location = req.Location
		patient.Gender = req.Gender
		patient.Age = req.Age
		patient.Problem = req.Problem
		patient.District = req.District
		patient.State = req.State
		patient.HospitalID = req.HospitalID
		if err := s.patients.Update(ctx, patient); err != nil {
			s.logger.Warn("failed to refresh patient profile", zap.String("patient_id", patient.ID), zap.Error(err))
		}
		return patient, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up patient")
	}

	patient = &models.Patient{
		Name:       req.PatientName,
		BloodType:  req.BloodType,
		Location:   req.Location,
		Contact:    req.Contact,
		Gender:     req.Gender,
		Age:        req.Age,
		Problem:    req.Problem,
		District:   req.District,
		State:      req.State,
		HospitalID: req.HospitalID,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create patient")
	}
	return patient, nil
}

const requestCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRequestCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = requestCodeAlphabet[int(buf[i])%len(requestCodeAlphabet)]
	}
	return fmt.Sprintf("PT-%s", buf), nil
}
