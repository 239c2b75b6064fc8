package models

import "time"

// UserRole is the actor-to-role join row. Declared explicitly so assignment
// metadata (when, by whom) survives alongside the many2many relation.
type UserRole struct {
	StaffUserID uint `gorm:"primaryKey" json:"staff_user_id"`
	RoleID      uint `gorm:"primaryKey" json:"role_id"`

	AssignedAt   time.Time `gorm:"autoCreateTime" json:"assigned_at"`
	AssignedByID *uint     `gorm:"index" json:"assigned_by_id,omitempty"`
}

// UserPermission is a direct permission grant for exceptions that do not
// warrant a dedicated role.
type UserPermission struct {
	StaffUserID  uint `gorm:"primaryKey" json:"staff_user_id"`
	PermissionID uint `gorm:"primaryKey" json:"permission_id"`

	AssignedAt   time.Time `gorm:"autoCreateTime" json:"assigned_at"`
	AssignedByID *uint     `gorm:"index" json:"assigned_by_id,omitempty"`
}
