package models

// Role is a named bundle of permissions. System roles are created at bootstrap
// and reject every later mutation or deletion.
type Role struct {
	BaseModel

	Name        string   `gorm:"not null;index:idx_role_name_scope,unique" json:"name"`
	Description string   `json:"description"`
	RoleType    RoleType `gorm:"not null;default:custom" json:"role_type"`
	IsSystemRole bool    `gorm:"default:false" json:"is_system_role"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`

	// OrgUnit optionally scopes the role to an organizational unit. Roles with
	// an empty OrgUnit are global; name uniqueness holds within a scope.
	OrgUnit string `gorm:"index:idx_role_name_scope,unique" json:"org_unit,omitempty"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []StaffUser  `gorm:"many2many:user_roles;" json:"users,omitempty"`
}
