package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
)

// RuleService manages data-access rules and composes row-level filters for
// domain services.
type RuleService struct {
	db       *gorm.DB
	audit    *AuditService
	resolver *Resolver
}

// NewRuleService constructs a RuleService.
func NewRuleService(db *gorm.DB, audit *AuditService, resolver *Resolver) (*RuleService, error) {
	if db == nil {
		return nil, errors.New("rule service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("rule service: resolver is required")
	}
	return &RuleService{db: db, audit: audit, resolver: resolver}, nil
}

// RuleInput describes the payload for rule creation and update.
type RuleInput struct {
	RuleName     string
	ResourceType string
	Condition    string
	RoleID       *uint
	AllowAccess  bool
	Priority     int
	IsActive     bool
}

func (s *RuleService) validate(ctx context.Context, input RuleInput) error {
	if strings.TrimSpace(input.RuleName) == "" {
		return apperrors.NewValidationFailure("rule name is required")
	}
	if strings.TrimSpace(input.ResourceType) == "" {
		return apperrors.NewValidationFailure("resource type is required")
	}
	// Malformed conditions are rejected at write time so the decision path
	// never has to guess what an unparseable predicate meant.
	if err := permissions.ValidateCondition(input.Condition); err != nil {
		return apperrors.NewValidationFailure(fmt.Sprintf("invalid condition: %v", err))
	}
	if input.RoleID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", *input.RoleID).Count(&count).Error; err != nil {
			return fmt.Errorf("rule service: verify role: %w", err)
		}
		if count == 0 {
			return ErrRoleNotFound
		}
	}
	return nil
}

// Create persists a new data-access rule.
func (s *RuleService) Create(ctx context.Context, input RuleInput) (*models.DataAccessRule, error) {
	ctx = ensureContext(ctx)

	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	rule := &models.DataAccessRule{
		RuleName:     strings.TrimSpace(input.RuleName),
		ResourceType: strings.TrimSpace(input.ResourceType),
		Condition:    strings.TrimSpace(input.Condition),
		RoleID:       input.RoleID,
		AllowAccess:  input.AllowAccess,
		Priority:     input.Priority,
		IsActive:     input.IsActive,
	}

	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, fmt.Errorf("rule service: create rule: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "rule.create",
		Category:     models.AuditCategoryAdministration,
		Action:       "create",
		ResourceType: rule.ResourceType,
		ResourceID:   fmt.Sprint(rule.ID),
		Success:      true,
		NewValue: map[string]any{
			"rule_name":    rule.RuleName,
			"allow_access": rule.AllowAccess,
			"priority":     rule.Priority,
		},
	})

	return rule, nil
}

// Update replaces the rule's fields.
func (s *RuleService) Update(ctx context.Context, ruleID uint, input RuleInput) (*models.DataAccessRule, error) {
	ctx = ensureContext(ctx)

	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	var rule models.DataAccessRule
	if err := s.db.WithContext(ctx).First(&rule, "id = ?", ruleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("rule service: load rule: %w", err)
	}

	updates := map[string]any{
		"rule_name":     strings.TrimSpace(input.RuleName),
		"resource_type": strings.TrimSpace(input.ResourceType),
		"condition":     strings.TrimSpace(input.Condition),
		"role_id":       input.RoleID,
		"allow_access":  input.AllowAccess,
		"priority":      input.Priority,
		"is_active":     input.IsActive,
	}
	if err := s.db.WithContext(ctx).Model(&rule).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("rule service: update rule: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "rule.update",
		Category:     models.AuditCategoryAdministration,
		Action:       "update",
		ResourceType: rule.ResourceType,
		ResourceID:   fmt.Sprint(rule.ID),
		Success:      true,
		NewValue:     map[string]any{"rule_name": rule.RuleName},
	})

	return &rule, nil
}

// Delete removes a rule unconditionally; nothing references rule rows.
func (s *RuleService) Delete(ctx context.Context, ruleID uint) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.DataAccessRule{}, "id = ?", ruleID)
	if result.Error != nil {
		return fmt.Errorf("rule service: delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:  "rule.delete",
		Category:   models.AuditCategoryAdministration,
		Action:     "delete",
		ResourceID: fmt.Sprint(ruleID),
		Success:    true,
	})

	return nil
}

// List returns every rule for a resource type ordered by priority, or all
// rules when resourceType is empty.
func (s *RuleService) List(ctx context.Context, resourceType string) ([]models.DataAccessRule, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("priority ASC")
	if resourceType = strings.TrimSpace(resourceType); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var rules []models.DataAccessRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("rule service: list rules: %w", err)
	}
	return rules, nil
}

// ActiveFilter composes the logical AND of every active, role-satisfied rule
// condition for the resource type. Domain services use it as a row-level
// query-scoping hint; it is not an allow/deny decision. Actors holding the
// system-administrator permission get no filter, meaning unrestricted.
func (s *RuleService) ActiveFilter(ctx context.Context, actorID uint, resourceType string) (string, error) {
	ctx = ensureContext(ctx)

	codes, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return "", err
	}
	if containsCode(codes, permissions.CodeSystemAdmin) {
		return "", nil
	}

	var rules []models.DataAccessRule
	if err := s.db.WithContext(ctx).
		Where("resource_type = ? AND is_active = ?", strings.TrimSpace(resourceType), true).
		Order("priority ASC").
		Find(&rules).Error; err != nil {
		return "", fmt.Errorf("rule service: load rules: %w", err)
	}

	var heldRoleIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("staff_user_id = ?", actorID).
		Pluck("role_id", &heldRoleIDs).Error; err != nil {
		return "", fmt.Errorf("rule service: load held roles: %w", err)
	}
	held := make(map[uint]struct{}, len(heldRoleIDs))
	for _, id := range heldRoleIDs {
		held[id] = struct{}{}
	}

	var parts []string
	for _, rule := range rules {
		if rule.RoleID != nil {
			if _, ok := held[*rule.RoleID]; !ok {
				continue
			}
		}
		if strings.TrimSpace(rule.Condition) == "" {
			continue
		}
		parts = append(parts, "("+strings.TrimSpace(rule.Condition)+")")
	}

	return strings.Join(parts, " && "), nil
}
