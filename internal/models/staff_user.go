package models

// StaffUser is the resolved actor identity presented to the engine. How the
// identity is established (sessions, SSO, tokens) is outside this module.
type StaffUser struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	FullName string `json:"full_name"`
	OrgUnit  string `gorm:"index" json:"org_unit,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Roles             []Role       `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	DirectPermissions []Permission `gorm:"many2many:user_permissions;" json:"direct_permissions,omitempty"`
}
