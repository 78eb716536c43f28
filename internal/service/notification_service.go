package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/jobs"
)

// EmailJobType identifies notification emails on the background queue.
const EmailJobType = "notification_email"

// EmailPayload is the queue payload for one outbound notification email.
type EmailPayload struct {
	To      string
	Subject string
	Body    string
}

type notificationDonorRepository interface {
	MatchingAvailable(ctx context.Context, bloodType, excludeID string) ([]models.Donor, error)
}

type alertStore interface {
	Create(ctx context.Context, alert *models.DonorAlert) error
	AlertedDonorIDs(ctx context.Context, requestID string) (map[string]struct{}, error)
	ListForDonor(ctx context.Context, donorID string) ([]models.DonorAlert, error)
	ListForHospital(ctx context.Context, hospitalID string) ([]models.DonorAlert, error)
	MarkRead(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// NotificationService fans blood request alerts out to matching donors and
// relays best-effort emails through the background queue. A failure for one
// recipient never aborts the wave, and email failures never surface to the
// caller.
type NotificationService struct {
	donors       notificationDonorRepository
	alerts       alertStore
	queue        jobDispatcher
	metrics      *MetricsService
	logger       *zap.Logger
	emailEnabled bool
}

// NewNotificationService constructs the notification service. A nil queue
// disables email relay entirely.
func NewNotificationService(donors notificationDonorRepository, alerts alertStore, queue jobDispatcher, metrics *MetricsService, logger *zap.Logger, emailEnabled bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{donors: donors, alerts: alerts, queue: queue, metrics: metrics, logger: logger, emailEnabled: emailEnabled}
}

// NotifyNewRequest runs the first notification wave for a freshly created
// request. Eligible matching donors get a donation call, ineligible ones a
// come-back-later note. Returns the number of donors alerted.
func (s *NotificationService) NotifyNewRequest(ctx context.Context, request *models.BloodRequest) (int, error) {
	location := request.PatientLocation
	if request.HospitalName != nil {
		location = *request.HospitalName
	}
	eligibleMsg := fmt.Sprintf("New blood request %s: %d units of %s needed at %s.", request.RequestCode, request.UnitsNeeded, request.BloodType, location)
	return s.runWave(ctx, request, "", models.AlertNewRequest, eligibleMsg)
}

// NotifyUnitsStillNeeded runs the follow-up wave after a partial fulfillment,
// excluding the donor who just donated.
func (s *NotificationService) NotifyUnitsStillNeeded(ctx context.Context, request *models.BloodRequest, remainingUnits int, excludeDonorID string) (int, error) {
	wave := *request
	wave.UnitsNeeded = remainingUnits
	eligibleMsg := fmt.Sprintf("Request %s still needs %d units of %s.", request.RequestCode, remainingUnits, request.BloodType)
	return s.runWave(ctx, &wave, excludeDonorID, models.AlertUnitsNeeded, eligibleMsg)
}

func (s *NotificationService) runWave(ctx context.Context, request *models.BloodRequest, excludeDonorID string, eligibleKind models.AlertKind, eligibleMsg string) (int, error) {
	donors, err := s.donors.MatchingAvailable(ctx, request.BloodType, excludeDonorID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load matching donors")
	}
	if len(donors) == 0 {
		return 0, nil
	}

	alerted, err := s.alerts.AlertedDonorIDs(ctx, request.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alerted donors")
	}

	today := time.Now().UTC()
	notified := 0
	for i := range donors {
		donor := &donors[i]
		if _, seen := alerted[donor.ID]; seen {
			continue
		}

		// Eligibility is always recomputed from the donation baseline, never
		// read back from the cached column.
		status, nextEligible := ComputeEligibility(donor.Gender, donor.LastDonated, today)

		kind := eligibleKind
		message := eligibleMsg
		if status != models.Eligible && nextEligible != nil {
			kind = models.AlertNotYetEligible
			message = fmt.Sprintf("A request for %s blood was posted. You can donate again on %s.", request.BloodType, nextEligible.Format("2006-01-02"))
		}

		donorID := donor.ID
		requestID := request.ID
		alert := &models.DonorAlert{DonorID: &donorID, RequestID: &requestID, Kind: kind, Message: message}
		if err := s.alerts.Create(ctx, alert); err != nil {
			s.logger.Warn("failed to create donor alert", zap.String("donor_id", donor.ID), zap.String("request_id", request.ID), zap.Error(err))
			continue
		}
		notified++
		s.metrics.RecordAlertSent(string(kind))

		s.relayEmail(donor, fmt.Sprintf("Blood request %s", request.RequestCode), message)
	}

	return notified, nil
}

// NotifyAcceptance tells the owning hospital that a donor committed to a
// request. No-op for requests without a hospital.
func (s *NotificationService) NotifyAcceptance(ctx context.Context, request *models.BloodRequest, donorName string) {
	if request.HospitalID == nil {
		return
	}
	requestID := request.ID
	alert := &models.DonorAlert{
		HospitalID: request.HospitalID,
		RequestID:  &requestID,
		Kind:       models.AlertAcceptance,
		Message:    fmt.Sprintf("%s accepted blood request %s.", donorName, request.RequestCode),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.Warn("failed to create acceptance alert", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	s.metrics.RecordAlertSent(string(models.AlertAcceptance))
}

// SendDirectAlert delivers a hospital-authored message to a single donor.
func (s *NotificationService) SendDirectAlert(ctx context.Context, hospitalID string, donor *models.Donor, message string) error {
	donorID := donor.ID
	alert := &models.DonorAlert{DonorID: &donorID, HospitalID: &hospitalID, Kind: models.AlertDirect, Message: message}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alert")
	}
	s.metrics.RecordAlertSent(string(models.AlertDirect))
	s.relayEmail(donor, "Message from hospital", message)
	return nil
}

// AlertsForDonor lists a donor's alerts.
func (s *NotificationService) AlertsForDonor(ctx context.Context, donorID string) ([]models.DonorAlert, error) {
	alerts, err := s.alerts.ListForDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	return alerts, nil
}

// AlertsForHospital lists a hospital's alerts.
func (s *NotificationService) AlertsForHospital(ctx context.Context, hospitalID string) ([]models.DonorAlert, error) {
	alerts, err := s.alerts.ListForHospital(ctx, hospitalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	return alerts, nil
}

// MarkAlertRead flags an alert as read.
func (s *NotificationService) MarkAlertRead(ctx context.Context, id string) error {
	if err := s.alerts.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark alert read")
	}
	return nil
}

func (s *NotificationService) relayEmail(donor *models.Donor, subject, body string) {
	if !s.emailEnabled || s.queue == nil || donor.Email == nil || *donor.Email == "" {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    EmailJobType,
		Payload: EmailPayload{To: *donor.Email, Subject: subject, Body: body},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification email", zap.String("donor_id", donor.ID), zap.Error(err))
		return
	}
	s.metrics.RecordEmailEnqueued()
}
