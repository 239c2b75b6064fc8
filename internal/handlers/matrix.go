package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/services"
	"github.com/clinicore/clinicore/pkg/response"
)

type MatrixHandler struct {
	svc *services.MatrixService
}

func NewMatrixHandler(svc *services.MatrixService) *MatrixHandler {
	return &MatrixHandler{svc: svc}
}

type bulkUpdateRequest struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// GET /api/permissions/matrix
func (h *MatrixHandler) Get(c *gin.Context) {
	matrix, err := h.svc.Matrix(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, matrix)
}

// POST /api/roles/:id/permissions/bulk
func (h *MatrixHandler) BulkUpdate(c *gin.Context) {
	roleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req bulkUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.BulkUpdatePermissions(requestContext(c), roleID, req.Add, req.Remove); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
