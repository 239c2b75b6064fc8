package models

// Permission is an immutable catalog entry. Rows are inserted once during
// initialisation and never updated or deleted while referenced.
type Permission struct {
	BaseModel

	Code               string `gorm:"uniqueIndex;not null" json:"code"`
	Name               string `gorm:"not null" json:"name"`
	Category           string `gorm:"not null;index" json:"category"`
	ResourceType       string `gorm:"not null;index" json:"resource_type"`
	IsSensitive        bool   `gorm:"default:false" json:"is_sensitive"`
	IsSystemPermission bool   `gorm:"default:false" json:"is_system_permission"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"roles,omitempty"`
}
