package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/services"
	"github.com/clinicore/clinicore/pkg/response"
)

type RoleHandler struct {
	svc *services.RoleService
}

func NewRoleHandler(svc *services.RoleService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

type createRoleRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=100"`
	Description     string   `json:"description" validate:"max=500"`
	OrgUnit         string   `json:"org_unit" validate:"max=100"`
	PermissionCodes []string `json:"permission_codes"`
}

type updateRoleRequest struct {
	Name            string   `json:"name" validate:"omitempty,min=2,max=100"`
	Description     string   `json:"description" validate:"max=500"`
	PermissionCodes []string `json:"permission_codes"`
}

type duplicateRoleRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	role, err := h.svc.Get(requestContext(c), roleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Create(requestContext(c), services.CreateRoleInput{
		Name:            req.Name,
		Description:     req.Description,
		OrgUnit:         req.OrgUnit,
		PermissionCodes: req.PermissionCodes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PATCH /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Update(requestContext(c), roleID, services.UpdateRoleInput{
		Name:            req.Name,
		Description:     req.Description,
		PermissionCodes: req.PermissionCodes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), roleID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/roles/:id/duplicate
func (h *RoleHandler) Duplicate(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req duplicateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.Duplicate(requestContext(c), roleID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}
