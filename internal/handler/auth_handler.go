package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/service"
	appErrors "github.com/clotsync/clotsync-api/pkg/errors"
	"github.com/clotsync/clotsync-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HospitalLogin godoc
// @Summary Authenticate hospital
// @Description Authenticate hospital staff by username and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.HospitalLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/hospital/login [post]
func (h *AuthHandler) HospitalLogin(c *gin.Context) {
	var req models.HospitalLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.LoginHospital(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// DonorLogin godoc
// @Summary Authenticate donor
// @Description Authenticate donor by contact number or email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.DonorLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/donor/login [post]
func (h *AuthHandler) DonorLogin(c *gin.Context) {
	var req models.DonorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.LoginDonor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current actor
// @Description Returns the authenticated actor's identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.ActorInfo{
		ID:   claims.ActorID,
		Name: claims.Name,
		Role: claims.Role,
	}

	response.JSON(c, http.StatusOK, info, nil)
}
