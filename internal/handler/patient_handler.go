package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/service"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/response"
)

// PatientHandler exposes patient endpoints.
type PatientHandler struct {
	patients *service.PatientService
}

// NewPatientHandler constructs PatientHandler.
func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// Register godoc
// @Summary Register patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param payload body service.RegisterPatientRequest true "Patient payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /patients [post]
func (h *PatientHandler) Register(c *gin.Context) {
	var req service.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	patient, err := h.patients.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, patient)
}

// Get godoc
// @Summary Get patient detail
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patient, nil)
}

// Resources godoc
// @Summary Nearby blood resources
// @Description Stocked hospitals and eligible donors for a blood type, with distances when geocoding succeeds
// @Tags Patients
// @Produce json
// @Param bloodType query string true "Blood type"
// @Param location query string false "Origin location for distance calculation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /resources [get]
func (h *PatientHandler) Resources(c *gin.Context) {
	bloodType := strings.TrimSpace(c.Query("bloodType"))
	if bloodType == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "bloodType is required"))
		return
	}

	resources, err := h.patients.Resources(c.Request.Context(), bloodType, strings.TrimSpace(c.Query("location")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// ResourcesForPatient godoc
// @Summary Blood resources for a patient
// @Description Runs the resource finder from the patient's profile and latest pending request
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /patients/{id}/resources [get]
func (h *PatientHandler) ResourcesForPatient(c *gin.Context) {
	resources, err := h.patients.ResourcesForPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}
