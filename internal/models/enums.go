package models

// RoleType distinguishes the canonical system roles from administrator-created ones.
type RoleType string

const (
	RoleTypeSystem RoleType = "system"
	RoleTypeCustom RoleType = "custom"
)

// IsValid reports whether the role type is a known member of the enum.
func (t RoleType) IsValid() bool {
	switch t {
	case RoleTypeSystem, RoleTypeCustom:
		return true
	}
	return false
}

// DecisionOutcome classifies the result of an access check.
// Error marks a fail-safe deny caused by an infrastructure failure, which must
// stay distinguishable from a legitimate denial in audit logs and metrics.
type DecisionOutcome string

const (
	DecisionAllow DecisionOutcome = "allow"
	DecisionDeny  DecisionOutcome = "deny"
	DecisionError DecisionOutcome = "error"
)

// AuditCategory groups audit events for filtering and retention policies.
type AuditCategory string

const (
	AuditCategoryAuthorization        AuditCategory = "authorization"
	AuditCategoryAuthorizationFailure AuditCategory = "authorization_failure"
	AuditCategoryEmergencyAccess      AuditCategory = "emergency_access"
	AuditCategoryValidation           AuditCategory = "validation"
	AuditCategoryAdministration       AuditCategory = "administration"
)
