package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
	"github.com/clinicore/clinicore/pkg/logger"
	"github.com/clinicore/clinicore/pkg/metrics"
)

// Decision is the outcome of an access check. A negative decision is a normal
// value, not an error: callers branch on Allowed and surface DenialReason.
type Decision struct {
	Allowed bool                   `json:"allowed"`
	Outcome models.DecisionOutcome `json:"outcome"`

	// MatchedPermissions lists the code(s) that satisfied the request when
	// allowed. On denial it instead names the code that would have satisfied
	// it, to support request-access flows.
	MatchedPermissions []string `json:"matched_permissions,omitempty"`
	DenialReason       string   `json:"denial_reason,omitempty"`

	// RequiresEmergencyAccess is informational: the actor was denied but
	// independently holds the break-the-glass permission.
	RequiresEmergencyAccess bool `json:"requires_emergency_access"`
}

// AccessService answers access questions for every protected operation.
type AccessService struct {
	db       *gorm.DB
	resolver *Resolver
	audit    *AuditService
	log      *zap.Logger
}

// NewAccessService constructs the decision engine.
func NewAccessService(db *gorm.DB, resolver *Resolver, audit *AuditService) (*AccessService, error) {
	if db == nil {
		return nil, errors.New("access service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("access service: resolver is required")
	}
	return &AccessService{
		db:       db,
		resolver: resolver,
		audit:    audit,
		log:      logger.WithComponent("access"),
	}, nil
}

// CheckAccess resolves an access question for (actor, resourceType, action)
// with optional contextual attributes. Resolution order, first match wins:
// system-admin bypass, direct permission code, data-access rules by ascending
// priority, fall-through deny. Any infrastructure failure degrades to deny.
func (s *AccessService) CheckAccess(ctx context.Context, actorID uint, resourceType, action string, attributes map[string]any) Decision {
	ctx = ensureContext(ctx)

	codes, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return s.failSafeDeny(ctx, actorID, resourceType, action, err)
	}

	if containsCode(codes, permissions.CodeSystemAdmin) {
		metrics.AccessDecisions.WithLabelValues(resourceType, string(models.DecisionAllow)).Inc()
		return Decision{
			Allowed:            true,
			Outcome:            models.DecisionAllow,
			MatchedPermissions: []string{permissions.CodeSystemAdmin},
		}
	}

	required := permissions.CodeFor(resourceType, action)
	if containsCode(codes, required) {
		metrics.AccessDecisions.WithLabelValues(resourceType, string(models.DecisionAllow)).Inc()
		return Decision{
			Allowed:            true,
			Outcome:            models.DecisionAllow,
			MatchedPermissions: []string{required},
		}
	}

	allowed, matched, err := s.evaluateRules(ctx, actorID, resourceType, attributes)
	if err != nil {
		return s.failSafeDeny(ctx, actorID, resourceType, action, err)
	}
	if matched {
		if allowed {
			metrics.AccessDecisions.WithLabelValues(resourceType, string(models.DecisionAllow)).Inc()
			return Decision{Allowed: true, Outcome: models.DecisionAllow}
		}
		// Rule internals are never surfaced; the caller learns only the
		// permission code that would have bypassed rule evaluation.
		return s.deny(ctx, actorID, resourceType, action, required, codes,
			fmt.Sprintf("access to %s denied by data access policy", resourceType))
	}

	return s.deny(ctx, actorID, resourceType, action, required, codes,
		fmt.Sprintf("no permission grants %s on %s", action, resourceType))
}

// evaluateRules walks active rules for the resource type in ascending
// priority order. The first rule whose role scope is satisfied and whose
// condition evaluates true decides the outcome; an explicit deny
// short-circuits exactly like an allow.
func (s *AccessService) evaluateRules(ctx context.Context, actorID uint, resourceType string, attributes map[string]any) (allowed, matched bool, err error) {
	var rules []models.DataAccessRule
	if err := s.db.WithContext(ctx).
		Where("resource_type = ? AND is_active = ?", resourceType, true).
		Order("priority ASC").
		Find(&rules).Error; err != nil {
		return false, false, fmt.Errorf("access service: load rules: %w", err)
	}
	if len(rules) == 0 {
		return false, false, nil
	}

	var heldRoleIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("staff_user_id = ?", actorID).
		Pluck("role_id", &heldRoleIDs).Error; err != nil {
		return false, false, fmt.Errorf("access service: load held roles: %w", err)
	}
	held := make(map[uint]struct{}, len(heldRoleIDs))
	for _, id := range heldRoleIDs {
		held[id] = struct{}{}
	}

	for _, rule := range rules {
		if rule.RoleID != nil {
			if _, ok := held[*rule.RoleID]; !ok {
				continue
			}
		}

		cond, parseErr := permissions.ParseCondition(rule.Condition)
		if parseErr != nil {
			// A rule that cannot be parsed must never grant access. Skip it
			// and surface the defect to operators.
			s.log.Error("skipping unparseable data access rule",
				zap.Uint("rule_id", rule.ID),
				zap.String("rule_name", rule.RuleName),
				zap.Error(parseErr),
			)
			continue
		}

		if cond.Evaluate(attributes) {
			return rule.AllowAccess, true, nil
		}
	}

	return false, false, nil
}

func (s *AccessService) deny(ctx context.Context, actorID uint, resourceType, action, required string, codes []string, reason string) Decision {
	metrics.AccessDecisions.WithLabelValues(resourceType, string(models.DecisionDeny)).Inc()

	decision := Decision{
		Outcome:                 models.DecisionDeny,
		MatchedPermissions:      []string{required},
		DenialReason:            reason,
		RequiresEmergencyAccess: containsCode(codes, permissions.CodeEmergencyAccess),
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "access.denied",
		Category:     models.AuditCategoryAuthorizationFailure,
		Action:       action,
		ResourceType: resourceType,
		ActorID:      &actorID,
		Success:      false,
		Reason:       reason,
	})

	return decision
}

// failSafeDeny handles infrastructure failures during resolution. The caller
// receives a deny, never an allow, and the audit trail records an error
// outcome distinguishable from a legitimate denial.
func (s *AccessService) failSafeDeny(ctx context.Context, actorID uint, resourceType, action string, cause error) Decision {
	metrics.AccessDecisions.WithLabelValues(resourceType, string(models.DecisionError)).Inc()
	s.log.Error("access check failed; denying",
		zap.Uint("actor_id", actorID),
		zap.String("resource_type", resourceType),
		zap.String("action", action),
		zap.Error(cause),
	)

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "access.error",
		Category:     models.AuditCategoryAuthorizationFailure,
		Action:       action,
		ResourceType: resourceType,
		ActorID:      &actorID,
		Success:      false,
		Reason:       "access check could not complete: " + cause.Error(),
	})

	return Decision{
		Outcome:      models.DecisionError,
		DenialReason: "access check could not complete",
	}
}

// HasPermission reports whether the actor's effective set contains the code.
// Resolution failures read as false.
func (s *AccessService) HasPermission(ctx context.Context, actorID uint, code string) (bool, error) {
	codes, err := s.resolver.Resolve(ensureContext(ctx), actorID)
	if err != nil {
		return false, err
	}
	if containsCode(codes, permissions.CodeSystemAdmin) {
		return true, nil
	}
	return containsCode(codes, code), nil
}

// HasAny reports whether the actor holds at least one of the codes.
func (s *AccessService) HasAny(ctx context.Context, actorID uint, codes ...string) (bool, error) {
	effective, err := s.resolver.Resolve(ensureContext(ctx), actorID)
	if err != nil {
		return false, err
	}
	if containsCode(effective, permissions.CodeSystemAdmin) {
		return true, nil
	}
	for _, code := range codes {
		if containsCode(effective, code) {
			return true, nil
		}
	}
	return false, nil
}

// HasAll reports whether the actor holds every one of the codes.
func (s *AccessService) HasAll(ctx context.Context, actorID uint, codes ...string) (bool, error) {
	effective, err := s.resolver.Resolve(ensureContext(ctx), actorID)
	if err != nil {
		return false, err
	}
	if containsCode(effective, permissions.CodeSystemAdmin) {
		return true, nil
	}
	for _, code := range codes {
		if !containsCode(effective, code) {
			return false, nil
		}
	}
	return true, nil
}

// GetEffectivePermissions exposes the resolved code set to callers.
func (s *AccessService) GetEffectivePermissions(ctx context.Context, actorID uint) ([]string, error) {
	return s.resolver.Resolve(ensureContext(ctx), actorID)
}
