package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
)

type patientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindByID(ctx context.Context, id string) (*models.Patient, error)
}

type patientRequestLookup interface {
	LatestPendingForPatient(ctx context.Context, patientID string) (*models.BloodRequest, error)
}

// RegisterPatientRequest holds the patient registration payload.
type RegisterPatientRequest struct {
	Name       string  `json:"name" validate:"required"`
	BloodType  string  `json:"blood_type" validate:"required"`
	Location   string  `json:"location" validate:"required"`
	Contact    string  `json:"contact" validate:"required"`
	Gender     *string `json:"gender,omitempty"`
	Age        *int    `json:"age,omitempty" validate:"omitempty,gt=0"`
	Problem    *string `json:"problem,omitempty"`
	District   *string `json:"district,omitempty"`
	State      *string `json:"state,omitempty"`
	HospitalID *string `json:"hospital_id,omitempty"`
}

type stockedHospitalLookup interface {
	StockedHospitals(ctx context.Context, bloodType string) ([]models.Hospital, map[string]int, error)
}

// HospitalResource is a stocked hospital annotated with distance when the
// patient's location could be resolved.
type HospitalResource struct {
	Hospital   models.Hospital `json:"hospital"`
	Units      int             `json:"units"`
	DistanceKm *float64        `json:"distance_km,omitempty"`
}

// DonorResource is an eligible matching donor annotated with distance.
type DonorResource struct {
	Donor      models.Donor `json:"donor"`
	DistanceKm *float64     `json:"distance_km,omitempty"`
}

// PatientResources aggregates everything a patient can turn to for a blood
// type: hospitals holding stock and donors who can give now.
type PatientResources struct {
	BloodType string             `json:"blood_type"`
	Hospitals []HospitalResource `json:"hospitals"`
	Donors    []DonorResource    `json:"donors"`
}

// PatientService exposes patient registration, lookups and the resource
// finder.
type PatientService struct {
	repo      patientRepository
	hospitals stockedHospitalLookup
	donors    notificationDonorRepository
	requests  patientRequestLookup
	location  *LocationService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPatientService constructs the patient service.
func NewPatientService(repo patientRepository, hospitals stockedHospitalLookup, donors notificationDonorRepository, requests patientRequestLookup, location *LocationService, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientService{repo: repo, hospitals: hospitals, donors: donors, requests: requests, location: location, validator: validate, logger: logger}
}

// Register creates a patient profile. Patients have no credentials; the
// profile only anchors requests and the resource finder.
func (s *PatientService) Register(ctx context.Context, req RegisterPatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid patient payload")
	}
	if !models.IsValidBloodType(req.BloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}

	patient := &models.Patient{
		Name:       req.Name,
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
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register patient")
	}

	s.logger.Info("patient registered", zap.String("patient_id", patient.ID), zap.String("blood_type", patient.BloodType))
	return patient, nil
}

// Get returns a patient by ID.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	return patient, nil
}

// Resources lists stocked hospitals and currently eligible donors for a
// blood type. When fromLocation resolves, results carry a distance in
// kilometres; unresolvable locations simply omit it.
func (s *PatientService) Resources(ctx context.Context, bloodType, fromLocation string) (*PatientResources, error) {
	if !models.IsValidBloodType(bloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}

	var origin *Coordinates
	if s.location != nil {
		origin = s.location.Geocode(ctx, fromLocation)
	}

	hospitals, stock, err := s.hospitals.StockedHospitals(ctx, bloodType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stocked hospitals")
	}

	resources := &PatientResources{BloodType: bloodType, Hospitals: make([]HospitalResource, 0, len(hospitals))}
	for _, h := range hospitals {
		item := HospitalResource{Hospital: h, Units: stock[h.ID]}
		if origin != nil && s.location != nil {
			if coords := s.location.Geocode(ctx, h.Location); coords != nil {
				d := Distance(*origin, *coords)
				item.DistanceKm = &d
			}
		}
		resources.Hospitals = append(resources.Hospitals, item)
	}

	donors, err := s.donors.MatchingAvailable(ctx, bloodType, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donors")
	}

	today := time.Now().UTC()
	resources.Donors = make([]DonorResource, 0, len(donors))
	for _, donor := range donors {
		status, _ := ComputeEligibility(donor.Gender, donor.LastDonated, today)
		if status != models.Eligible {
			continue
		}
		item := DonorResource{Donor: donor}
		if origin != nil {
			if donor.Latitude != nil && donor.Longitude != nil {
				d := Distance(*origin, Coordinates{Latitude: *donor.Latitude, Longitude: *donor.Longitude})
				item.DistanceKm = &d
			} else if s.location != nil {
				if coords := s.location.Geocode(ctx, donor.Location); coords != nil {
					d := Distance(*origin, *coords)
					item.DistanceKm = &d
				}
			}
		}
		resources.Donors = append(resources.Donors, item)
	}

	sortHospitalsByDistance(resources.Hospitals)
	sortDonorsByDistance(resources.Donors)
	return resources, nil
}

// ResourcesForPatient runs the resource finder from a patient's own profile:
// the blood type comes from their latest pending request when one exists,
// otherwise from the profile, and distances are measured from their location.
func (s *PatientService) ResourcesForPatient(ctx context.Context, patientID string) (*PatientResources, error) {
	patient, err := s.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	bloodType := patient.BloodType
	if s.requests != nil {
		request, err := s.requests.LatestPendingForPatient(ctx, patientID)
		switch {
		case err == nil:
			bloodType = request.BloodType
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient requests")
		}
	}

	return s.Resources(ctx, bloodType, patient.Location)
}

// Closest first; entries without a resolved distance sort last.
func sortHospitalsByDistance(items []HospitalResource) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DistanceKm, items[j].DistanceKm
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}

func sortDonorsByDistance(items []DonorResource) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DistanceKm, items[j].DistanceKm
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}
