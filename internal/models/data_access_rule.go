package models

// DataAccessRule is a conditional allow/deny predicate consulted when no
// static permission code matches an access question. Rules for a resource type
// are evaluated in ascending priority order; the first active rule whose role
// scope is satisfied and whose condition holds decides the outcome.
type DataAccessRule struct {
	BaseModel

	RuleName     string `gorm:"not null" json:"rule_name"`
	ResourceType string `gorm:"not null;index" json:"resource_type"`

	// Condition is an attribute-comparison expression evaluated against the
	// contextual attributes supplied with the access question. See the
	// permissions package for the grammar.
	Condition string `gorm:"type:text" json:"condition"`

	// RoleID, when set, limits the rule to actors holding that role.
	RoleID *uint `gorm:"index" json:"role_id,omitempty"`
	Role   *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	AllowAccess bool `gorm:"not null" json:"allow_access"`
	Priority    int  `gorm:"not null;index" json:"priority"`
	IsActive    bool `gorm:"default:true" json:"is_active"`
}
