package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinicore/internal/services"
	"github.com/clinicore/clinicore/pkg/response"
)

type RuleHandler struct {
	svc *services.RuleService
}

func NewRuleHandler(svc *services.RuleService) *RuleHandler {
	return &RuleHandler{svc: svc}
}

type ruleRequest struct {
	RuleName     string `json:"rule_name" validate:"required,min=2,max=200"`
	ResourceType string `json:"resource_type" validate:"required,max=100"`
	Condition    string `json:"condition" validate:"max=2000"`
	RoleID       *uint  `json:"role_id"`
	AllowAccess  bool   `json:"allow_access"`
	Priority     int    `json:"priority"`
	IsActive     bool   `json:"is_active"`
}

func (r ruleRequest) toInput() services.RuleInput {
	return services.RuleInput{
		RuleName:     r.RuleName,
		ResourceType: r.ResourceType,
		Condition:    r.Condition,
		RoleID:       r.RoleID,
		AllowAccess:  r.AllowAccess,
		Priority:     r.Priority,
		IsActive:     r.IsActive,
	}
}

// GET /api/rules?resource_type=
func (h *RuleHandler) List(c *gin.Context) {
	rules, err := h.svc.List(requestContext(c), strings.TrimSpace(c.Query("resource_type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rules)
}

// POST /api/rules
func (h *RuleHandler) Create(c *gin.Context) {
	var req ruleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	rule, err := h.svc.Create(requestContext(c), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rule)
}

// PUT /api/rules/:id
func (h *RuleHandler) Update(c *gin.Context) {
	ruleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req ruleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	rule, err := h.svc.Update(requestContext(c), ruleID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rule)
}

// DELETE /api/rules/:id
func (h *RuleHandler) Delete(c *gin.Context) {
	ruleID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), ruleID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
