package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/middleware"
	"github.com/clinicore/clinicore/internal/services"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

type EmergencyHandler struct {
	svc *services.EmergencyService
}

func NewEmergencyHandler(svc *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{svc: svc}
}

type emergencyAccessRequest struct {
	TargetPatientID uint   `json:"target_patient_id" validate:"required"`
	Justification   string `json:"justification" validate:"required,max=2000"`
}

// POST /api/emergency-access
func (h *EmergencyHandler) Request(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req emergencyAccessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	granted, err := h.svc.RequestEmergencyAccess(requestContext(c), actorID, req.TargetPatientID, req.Justification)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"granted": granted})
}
