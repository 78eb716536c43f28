package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/export"
)

type donorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	FindByID(ctx context.Context, id string) (*models.Donor, error)
	ExistsByContact(ctx context.Context, contact string) (bool, error)
	List(ctx context.Context, filter models.DonorFilter) ([]models.Donor, int, error)
	UpdateAvailability(ctx context.Context, id string, available bool) error
	UpdateEligibility(ctx context.Context, id string, status models.EligibilityStatus, nextEligible *time.Time) error
	RecordDonation(ctx context.Context, id string, lastDonated time.Time, status models.EligibilityStatus, nextEligible *time.Time) error
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Rank(ctx context.Context, id string) (int, int, error)
}

type donorHistoryRepository interface {
	HistoryForDonor(ctx context.Context, donorID string) ([]models.DonationHistoryEntry, error)
}

// RegisterDonorRequest holds payload for donor registration.
type RegisterDonorRequest struct {
	Name      string  `json:"name" validate:"required"`
	BloodType string  `json:"blood_type" validate:"required"`
	Location  string  `json:"location" validate:"required"`
	Contact   string  `json:"contact" validate:"required"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Gender    *string `json:"gender,omitempty"`
}

// RecordDonationRequest holds payload for a manual donation baseline update.
type RecordDonationRequest struct {
	LastDonated time.Time `json:"last_donated" validate:"required"`
}

// EligibilityResult is the recomputed verdict returned to clients.
type EligibilityResult struct {
	Status       models.EligibilityStatus `json:"status"`
	NextEligible *time.Time               `json:"next_eligible,omitempty"`
	DaysToWait   int                      `json:"days_to_wait"`
}

// LeaderboardCacheConfig tunes leaderboard size and caching.
type LeaderboardCacheConfig struct {
	Size     int
	CacheTTL time.Duration
}

// DonorService handles donor registration, eligibility, and ranking.
type DonorService struct {
	repo        donorRepository
	history     donorHistoryRepository
	cache       cacheStore
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	validator   *validator.Validate
	logger      *zap.Logger
	leaderboard LeaderboardCacheConfig
}

// NewDonorService constructs the donor service.
func NewDonorService(repo donorRepository, history donorHistoryRepository, cache cacheStore, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger, leaderboard LeaderboardCacheConfig) *DonorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if leaderboard.Size <= 0 {
		leaderboard.Size = 20
	}
	if leaderboard.CacheTTL <= 0 {
		leaderboard.CacheTTL = 5 * time.Minute
	}
	return &DonorService{repo: repo, history: history, cache: cache, pdf: pdf, csv: export.NewCSVExporter(), validator: validate, logger: logger, leaderboard: leaderboard}
}

// Register creates a donor. New donors start eligible with no next-eligible
// date; the first recorded donation establishes the baseline.
func (s *DonorService) Register(ctx context.Context, req RegisterDonorRequest) (*models.Donor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donor payload")
	}
	if !models.IsValidBloodType(req.BloodType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown blood type")
	}

	exists, err := s.repo.ExistsByContact(ctx, req.Contact)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check contact")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "contact already registered")
	}

	donor := &models.Donor{
		Name:              req.Name,
		BloodType:         req.BloodType,
		Location:          req.Location,
		Contact:           req.Contact,
		Email:             req.Email,
		Gender:            req.Gender,
		Available:         true,
		EligibilityStatus: models.Eligible,
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		donor.PasswordHash = &hash
	}

	if err := s.repo.Create(ctx, donor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create donor")
	}
	return donor, nil
}

// Profile returns a donor by ID.
func (s *DonorService) Profile(ctx context.Context, id string) (*models.Donor, error) {
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donor")
	}
	return donor, nil
}

// CheckEligibility recomputes the donor's eligibility from the stored
// baseline and refreshes the cached columns when they drifted.
func (s *DonorService) CheckEligibility(ctx context.Context, id string) (*EligibilityResult, error) {
	donor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	status, nextEligible := ComputeEligibility(donor.Gender, donor.LastDonated, today)

	if status != donor.EligibilityStatus || !equalDates(nextEligible, donor.NextEligible) {
		if err := s.repo.UpdateEligibility(ctx, id, status, nextEligible); err != nil {
			s.logger.Warn("failed to refresh cached eligibility", zap.String("donor_id", id), zap.Error(err))
		}
	}

	return &EligibilityResult{
		Status:       status,
		NextEligible: nextEligible,
		DaysToWait:   DaysUntilEligible(nextEligible, today),
	}, nil
}

// RecordDonation manually sets the last-donated baseline, rejecting future
// dates, and advances the donation counter.
func (s *DonorService) RecordDonation(ctx context.Context, id string, req RecordDonationRequest) (*EligibilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid donation payload")
	}
	today := time.Now().UTC()
	if req.LastDonated.After(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donation date cannot be in the future")
	}

	donor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	status, nextEligible := ComputeEligibility(donor.Gender, &req.LastDonated, today)
	if err := s.repo.RecordDonation(ctx, id, req.LastDonated, status, nextEligible); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record donation")
	}
	s.invalidateLeaderboard(ctx)

	return &EligibilityResult{
		Status:       status,
		NextEligible: nextEligible,
		DaysToWait:   DaysUntilEligible(nextEligible, today),
	}, nil
}

// ToggleAvailability flips the donor's availability flag.
func (s *DonorService) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	donor, err := s.Profile(ctx, id)
	if err != nil {
		return false, err
	}
	next := !donor.Available
	if err := s.repo.UpdateAvailability(ctx, id, next); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	return next, nil
}

// History lists the donor's acceptances.
func (s *DonorService) History(ctx context.Context, id string) ([]models.DonationHistoryEntry, error) {
	entries, err := s.history.HistoryForDonor(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation history")
	}
	return entries, nil
}

// Find lists donors matching the given filter.
func (s *DonorService) Find(ctx context.Context, filter models.DonorFilter) ([]models.Donor, *models.Pagination, error) {
	donors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donors")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return donors, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

const leaderboardCacheKey = "leaderboard:top"

// Leaderboard returns the top donors by donation count, cached briefly.
func (s *DonorService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if s.cache != nil {
		var cached []models.LeaderboardEntry
		if err := s.cache.Get(ctx, leaderboardCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := s.repo.Leaderboard(ctx, s.leaderboard.Size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, entries, s.leaderboard.CacheTTL); err != nil {
			s.logger.Warn("failed to cache leaderboard", zap.Error(err))
		}
	}
	return entries, nil
}

// Position returns the donor's rank among all donors.
func (s *DonorService) Position(ctx context.Context, id string) (*models.LeaderboardPosition, error) {
	donor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	position, total, err := s.repo.Rank(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donor not ranked")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rank")
	}
	return &models.LeaderboardPosition{
		Position:       position,
		TotalDonors:    total,
		DonationsCount: donor.DonationsCount,
		TopTwenty:      position <= s.leaderboard.Size,
	}, nil
}

// Certificate renders a PDF appreciation certificate for the donor.
func (s *DonorService) Certificate(ctx context.Context, id string) ([]byte, string, error) {
	donor, err := s.Profile(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.RenderCertificate(export.Certificate{
		RecipientName:  donor.Name,
		DonationsCount: donor.DonationsCount,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	filename := fmt.Sprintf("certificate-%s.pdf", donor.ID)
	return payload, filename, nil
}

// ExportCSV renders the donor roster matching the filter as a CSV document.
// Pages through the repository so large rosters export completely.
func (s *DonorService) ExportCSV(ctx context.Context, filter models.DonorFilter) ([]byte, string, error) {
	filter.Page = 1
	filter.PageSize = 100

	var all []models.Donor
	for {
		donors, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donors")
		}
		all = append(all, donors...)
		if len(donors) == 0 || len(all) >= total {
			break
		}
		filter.Page++
	}

	headers := []string{"name", "blood_type", "location", "contact", "available", "donations_count", "eligibility_status", "last_donated", "next_eligible"}
	dataset := export.Dataset{Headers: headers}
	for _, d := range all {
		row := map[string]string{
			"name":               d.Name,
			"blood_type":         d.BloodType,
			"location":           d.Location,
			"contact":            d.Contact,
			"available":          strconv.FormatBool(d.Available),
			"donations_count":    strconv.Itoa(d.DonationsCount),
			"eligibility_status": string(d.EligibilityStatus),
		}
		if d.LastDonated != nil {
			row["last_donated"] = d.LastDonated.Format("2006-01-02")
		}
		if d.NextEligible != nil {
			row["next_eligible"] = d.NextEligible.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("donors-%s.csv", time.Now().UTC().Format("20060102"))
	return payload, filename, nil
}

func (s *DonorService) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, leaderboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
