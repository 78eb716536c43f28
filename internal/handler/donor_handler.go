package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/service"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/response"
)

// DonorHandler exposes donor endpoints.
type DonorHandler struct {
	donors        *service.DonorService
	fulfillment   *service.FulfillmentService
	notifications *service.NotificationService
}

// NewDonorHandler constructs DonorHandler.
func NewDonorHandler(donors *service.DonorService, fulfillment *service.FulfillmentService, notifications *service.NotificationService) *DonorHandler {
	return &DonorHandler{donors: donors, fulfillment: fulfillment, notifications: notifications}
}

// Register godoc
// @Summary Register donor
// @Tags Donors
// @Accept json
// @Produce json
// @Param payload body service.RegisterDonorRequest true "Donor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /donors [post]
func (h *DonorHandler) Register(c *gin.Context) {
	var req service.RegisterDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	donor, err := h.donors.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donor)
}

// List godoc
// @Summary List donors
// @Tags Donors
// @Produce json
// @Param bloodType query string false "Filter by blood type"
// @Param available query bool false "Filter by availability"
// @Param search query string false "Search by name or location"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /donors [get]
func (h *DonorHandler) List(c *gin.Context) {
	var filter models.DonorFilter
	filter.BloodType = strings.TrimSpace(c.Query("bloodType"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if available := c.Query("available"); available != "" {
		if v, err := strconv.ParseBool(available); err == nil {
			filter.Available = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	donors, pagination, err := h.donors.Find(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donors, pagination)
}

// Profile godoc
// @Summary Get donor profile
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donors/{id} [get]
func (h *DonorHandler) Profile(c *gin.Context) {
	donor, err := h.donors.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donor, nil)
}

// Eligibility godoc
// @Summary Check donor eligibility
// @Description Recomputes the eligibility verdict from the last donation date
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donors/{id}/eligibility [get]
func (h *DonorHandler) Eligibility(c *gin.Context) {
	result, err := h.donors.CheckEligibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RecordDonation godoc
// @Summary Record a past donation
// @Description Updates the donor's donation baseline and recomputes eligibility
// @Tags Donors
// @Accept json
// @Produce json
// @Param id path string true "Donor ID"
// @Param payload body object true "Donation date (last_donated, YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donors/{id}/donations [post]
func (h *DonorHandler) RecordDonation(c *gin.Context) {
	var payload struct {
		LastDonated string `json:"last_donated" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	donated, err := parseDate(payload.LastDonated)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "last_donated must be YYYY-MM-DD or RFC3339"))
		return
	}

	result, err := h.donors.RecordDonation(c.Request.Context(), c.Param("id"), service.RecordDonationRequest{LastDonated: donated})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ToggleAvailability godoc
// @Summary Toggle donor availability
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donors/{id}/availability [patch]
func (h *DonorHandler) ToggleAvailability(c *gin.Context) {
	available, err := h.donors.ToggleAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"available": available}, nil)
}

// History godoc
// @Summary Donor donation history
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{id}/history [get]
func (h *DonorHandler) History(c *gin.Context) {
	entries, err := h.donors.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Alerts godoc
// @Summary Donor alerts
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{id}/alerts [get]
func (h *DonorHandler) Alerts(c *gin.Context) {
	alerts, err := h.notifications.AlertsForDonor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// MarkAlertRead godoc
// @Summary Mark alert as read
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Param alertId path string true "Alert ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donors/{id}/alerts/{alertId}/read [patch]
func (h *DonorHandler) MarkAlertRead(c *gin.Context) {
	if err := h.notifications.MarkAlertRead(c.Request.Context(), c.Param("alertId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Accept godoc
// @Summary Accept a blood request
// @Description Donor pledges to fulfil an open request
// @Tags Donors
// @Accept json
// @Produce json
// @Param id path string true "Donor ID"
// @Param payload body service.AcceptRequestRequest true "Acceptance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /donors/{id}/accept [post]
func (h *DonorHandler) Accept(c *gin.Context) {
	var req service.AcceptRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	acceptance, err := h.fulfillment.AcceptRequest(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, acceptance)
}

// MatchingRequests godoc
// @Summary Pending requests matching the donor
// @Description Pending requests for the donor's blood type, annotated with acceptance state and distance
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /donors/{id}/requests [get]
func (h *DonorHandler) MatchingRequests(c *gin.Context) {
	matches, err := h.fulfillment.MatchingForDonor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// Leaderboard godoc
// @Summary Donation leaderboard
// @Description Top donors ranked by completed donation count
// @Tags Donors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donors/leaderboard [get]
func (h *DonorHandler) Leaderboard(c *gin.Context) {
	entries, err := h.donors.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Position godoc
// @Summary Donor leaderboard position
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{id}/position [get]
func (h *DonorHandler) Position(c *gin.Context) {
	position, err := h.donors.Position(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, position, nil)
}

// Export godoc
// @Summary Export donor roster
// @Description Downloads the donor roster matching the filters as CSV
// @Tags Donors
// @Produce text/csv
// @Param bloodType query string false "Filter by blood type"
// @Param available query bool false "Filter by availability"
// @Param search query string false "Search by name or location"
// @Success 200 {file} binary
// @Router /donors/export [get]
func (h *DonorHandler) Export(c *gin.Context) {
	var filter models.DonorFilter
	filter.BloodType = strings.TrimSpace(c.Query("bloodType"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if available := c.Query("available"); available != "" {
		if v, err := strconv.ParseBool(available); err == nil {
			filter.Available = &v
		}
	}

	payload, filename, err := h.donors.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// Certificate godoc
// @Summary Download donor certificate
// @Description Generates a PDF certificate of appreciation
// @Tags Donors
// @Produce application/pdf
// @Param id path string true "Donor ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /donors/{id}/certificate [get]
func (h *DonorHandler) Certificate(c *gin.Context) {
	payload, filename, err := h.donors.Certificate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
