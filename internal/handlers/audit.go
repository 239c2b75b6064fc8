package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/services"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/response"
)

type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /api/audit?page=&page_size=&actor_id=&category=&event_type=&resource_type=&since=&until=
func (h *AuditHandler) List(c *gin.Context) {
	filters, err := auditFiltersFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "page_size", 50)

	logs, total, err := h.svc.List(requestContext(c), services.AuditListOptions{
		Page:     page,
		PageSize: perPage,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// GET /api/audit/export
func (h *AuditHandler) Export(c *gin.Context) {
	filters, err := auditFiltersFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	logs, err := h.svc.Export(requestContext(c), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

func auditFiltersFromQuery(c *gin.Context) (services.AuditFilters, error) {
	filters := services.AuditFilters{
		Category:     models.AuditCategory(strings.TrimSpace(c.Query("category"))),
		EventType:    strings.TrimSpace(c.Query("event_type")),
		ResourceType: strings.TrimSpace(c.Query("resource_type")),
	}

	if raw := strings.TrimSpace(c.Query("actor_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filters, apperrors.NewBadRequest("invalid actor_id query parameter")
		}
		actorID := uint(parsed)
		filters.ActorID = &actorID
	}

	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, apperrors.NewBadRequest("since must be an RFC3339 timestamp")
		}
		filters.Since = &since
	}

	if raw := strings.TrimSpace(c.Query("until")); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, apperrors.NewBadRequest("until must be an RFC3339 timestamp")
		}
		filters.Until = &until
	}

	return filters, nil
}
