package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/middleware"
	"github.com/clinicore/clinicore/internal/services"
	"github.com/clinicore/clinicore/pkg/response"
)

type AssignmentHandler struct {
	svc *services.AssignmentService
}

func NewAssignmentHandler(svc *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

type assignRolesRequest struct {
	RoleIDs []uint `json:"role_ids"`
	// DirectPermissionIDs replaces the whole direct-grant set when present.
	// Omitting the field leaves existing grants untouched.
	DirectPermissionIDs *[]uint `json:"direct_permission_ids"`
}

// PUT /api/staff/:id/roles
func (h *AssignmentHandler) AssignRoles(c *gin.Context) {
	actorID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req assignRolesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.AssignRolesInput{
		ActorID: actorID,
		RoleIDs: req.RoleIDs,
	}
	if req.DirectPermissionIDs != nil {
		input.DirectPermissionIDs = *req.DirectPermissionIDs
		if input.DirectPermissionIDs == nil {
			input.DirectPermissionIDs = []uint{}
		}
	}
	if assignedBy, ok := middleware.ActorID(c); ok {
		input.AssignedByID = &assignedBy
	}

	if err := h.svc.AssignRoles(requestContext(c), input); err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.svc.GetRolesAndPermissions(requestContext(c), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// DELETE /api/staff/:id/roles/:roleID
func (h *AssignmentHandler) RemoveRole(c *gin.Context) {
	actorID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseUintParam(c, "roleID")
	if !ok {
		return
	}

	var removedBy *uint
	if id, ok := middleware.ActorID(c); ok {
		removedBy = &id
	}

	if err := h.svc.RemoveRole(requestContext(c), actorID, roleID, removedBy); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// GET /api/staff/:id/access-profile
func (h *AssignmentHandler) GetAccessProfile(c *gin.Context) {
	actorID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.svc.GetRolesAndPermissions(requestContext(c), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
