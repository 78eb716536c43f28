package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/service"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/response"
)

// RequestHandler exposes blood request endpoints.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create godoc
// @Summary Create blood request
// @Description Opens a request on behalf of a patient and alerts matching donors
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	// Requests posted by an authenticated hospital are pinned to it.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleHospital && req.HospitalID == nil {
		hospitalID := claims.ActorID
		req.HospitalID = &hospitalID
	}

	result, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result.Request, nil, map[string]interface{}{
		"donors_notified": result.DonorsNotified,
	})
}

// List godoc
// @Summary List blood requests
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by status"
// @Param bloodType query string false "Filter by blood type"
// @Param hospitalId query string false "Filter by hospital"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var filter models.RequestFilter
	filter.Status = models.RequestStatus(strings.TrimSpace(c.Query("status")))
	filter.BloodType = strings.TrimSpace(c.Query("bloodType"))
	filter.HospitalID = c.Query("hospitalId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	requests, pagination, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get request detail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Track godoc
// @Summary Track latest request
// @Description Looks up the latest pending request by patient name and contact
// @Tags Requests
// @Produce json
// @Param name query string true "Patient name"
// @Param contact query string true "Patient contact"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/track [get]
func (h *RequestHandler) Track(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	contact := strings.TrimSpace(c.Query("contact"))
	if name == "" || contact == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name and contact are required"))
		return
	}

	request, err := h.requests.Track(c.Request.Context(), name, contact)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Cancel godoc
// @Summary Cancel a pending request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id} [delete]
func (h *RequestHandler) Cancel(c *gin.Context) {
	if err := h.requests.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
