package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/service"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/response"
)

// HospitalHandler exposes hospital endpoints.
type HospitalHandler struct {
	hospitals     *service.HospitalService
	fulfillment   *service.FulfillmentService
	donors        *service.DonorService
	notifications *service.NotificationService
}

// NewHospitalHandler constructs HospitalHandler.
func NewHospitalHandler(hospitals *service.HospitalService, fulfillment *service.FulfillmentService, donors *service.DonorService, notifications *service.NotificationService) *HospitalHandler {
	return &HospitalHandler{hospitals: hospitals, fulfillment: fulfillment, donors: donors, notifications: notifications}
}

// Register godoc
// @Summary Register hospital
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param payload body service.RegisterHospitalRequest true "Hospital payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hospitals [post]
func (h *HospitalHandler) Register(c *gin.Context) {
	var req service.RegisterHospitalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hospital, err := h.hospitals.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hospital)
}

// List godoc
// @Summary List hospitals
// @Tags Hospitals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hospitals [get]
func (h *HospitalHandler) List(c *gin.Context) {
	hospitals, err := h.hospitals.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hospitals, nil)
}

// Get godoc
// @Summary Get hospital detail
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /hospitals/{id} [get]
func (h *HospitalHandler) Get(c *gin.Context) {
	hospital, err := h.hospitals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hospital, nil)
}

// Inventory godoc
// @Summary Hospital blood inventory
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Router /hospitals/{id}/inventory [get]
func (h *HospitalHandler) Inventory(c *gin.Context) {
	items, err := h.hospitals.Inventory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AdjustInventory godoc
// @Summary Adjust inventory stock
// @Description Applies a signed delta to a blood type counter; underflow is rejected
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body service.AdjustInventoryRequest true "Adjustment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hospitals/{id}/inventory [patch]
func (h *HospitalHandler) AdjustInventory(c *gin.Context) {
	var req service.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	units, err := h.hospitals.AdjustInventory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"blood_type": req.BloodType, "units": units}, nil)
}

// PendingAcceptances godoc
// @Summary Pending donor acceptances
// @Description Acceptances awaiting confirmation for this hospital's requests
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Router /hospitals/{id}/acceptances [get]
func (h *HospitalHandler) PendingAcceptances(c *gin.Context) {
	acceptances, err := h.hospitals.PendingAcceptances(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, acceptances, nil)
}

// ConfirmDonation godoc
// @Summary Confirm a donation
// @Description Completes an acceptance, credits inventory, and updates the donor baseline
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body service.ConfirmDonationRequest true "Confirmation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hospitals/{id}/confirm [post]
func (h *HospitalHandler) ConfirmDonation(c *gin.Context) {
	var req service.ConfirmDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.fulfillment.ConfirmDonation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// FulfillFromStock godoc
// @Summary Fulfil a request from stock
// @Description Debits this hospital's inventory against an open request
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body object true "Fulfilment payload (request_id, units)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hospitals/{id}/fulfill [post]
func (h *HospitalHandler) FulfillFromStock(c *gin.Context) {
	var payload struct {
		RequestID string `json:"request_id" binding:"required"`
		Units     int    `json:"units" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.hospitals.FulfillFromStock(c.Request.Context(), c.Param("id"), payload.RequestID, payload.Units)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Transfer godoc
// @Summary Transfer blood units
// @Description Moves units from this hospital to another hospital or to discard
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body service.TransferRequest true "Transfer payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hospitals/{id}/transfers [post]
func (h *HospitalHandler) Transfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	transfer, err := h.hospitals.Transfer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer)
}

// Transfers godoc
// @Summary List blood transfers
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Router /hospitals/{id}/transfers [get]
func (h *HospitalHandler) Transfers(c *gin.Context) {
	transfers, err := h.hospitals.Transfers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfers, nil)
}

// Alerts godoc
// @Summary Hospital alerts
// @Tags Hospitals
// @Produce json
// @Param id path string true "Hospital ID"
// @Success 200 {object} response.Envelope
// @Router /hospitals/{id}/alerts [get]
func (h *HospitalHandler) Alerts(c *gin.Context) {
	alerts, err := h.notifications.AlertsForHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// DirectAlert godoc
// @Summary Send a direct alert to a donor
// @Tags Hospitals
// @Accept json
// @Produce json
// @Param id path string true "Hospital ID"
// @Param payload body object true "Alert payload (donor_id, message)"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /hospitals/{id}/alerts [post]
func (h *HospitalHandler) DirectAlert(c *gin.Context) {
	var payload struct {
		DonorID string `json:"donor_id" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "message must not be blank"))
		return
	}

	donor, err := h.donors.Profile(c.Request.Context(), payload.DonorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.notifications.SendDirectAlert(c.Request.Context(), c.Param("id"), donor, payload.Message); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "sent"}, nil)
}
