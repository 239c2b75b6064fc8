package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/middleware"
	"github.com/clinicore/clinicore/internal/services"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

type AccessHandler struct {
	access *services.AccessService
	rules  *services.RuleService
}

func NewAccessHandler(access *services.AccessService, rules *services.RuleService) *AccessHandler {
	return &AccessHandler{access: access, rules: rules}
}

type checkAccessRequest struct {
	ResourceType string         `json:"resource_type" validate:"required,max=100"`
	Action       string         `json:"action" validate:"required,max=100"`
	Attributes   map[string]any `json:"attributes"`
}

// POST /api/access/check
func (h *AccessHandler) Check(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req checkAccessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	decision := h.access.CheckAccess(requestContext(c), actorID, req.ResourceType, req.Action, req.Attributes)
	response.Success(c, http.StatusOK, decision)
}

// GET /api/access/permissions
func (h *AccessHandler) MyPermissions(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	codes, err := h.access.GetEffectivePermissions(requestContext(c), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"permission_codes": codes})
}

// GET /api/access/filter?resource_type=
func (h *AccessHandler) ActiveFilter(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	resourceType := strings.TrimSpace(c.Query("resource_type"))
	if resourceType == "" {
		response.Error(c, apperrors.NewBadRequest("resource_type query parameter is required"))
		return
	}

	filter, err := h.rules.ActiveFilter(requestContext(c), actorID, resourceType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"filter": filter})
}
