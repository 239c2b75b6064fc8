package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/services"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

type CatalogHandler struct {
	svc *services.CatalogService
}

func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/permissions?category=
func (h *CatalogHandler) List(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))

	if category != "" {
		perms, err := h.svc.ListByCategory(requestContext(c), category)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, perms)
		return
	}

	perms, err := h.svc.ListAll(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permissions/:code
func (h *CatalogHandler) Get(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		response.Error(c, apperrors.NewBadRequest("permission code is required"))
		return
	}

	perm, err := h.svc.GetByCode(requestContext(c), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	if perm == nil {
		response.Error(c, apperrors.NewNotFound("Permission not found"))
		return
	}
	response.Success(c, http.StatusOK, perm)
}
