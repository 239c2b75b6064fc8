package database

import (
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
)

// AutoMigrate creates or updates the database schema for all models. The join
// tables are registered explicitly so assignment metadata (timestamps, the
// assigning actor) lives on the relation rows.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.StaffUser{}, "Roles", &models.UserRole{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.Role{}, "Users", &models.UserRole{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.StaffUser{}, "DirectPermissions", &models.UserPermission{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.StaffUser{},
		&models.Permission{},
		&models.Role{},
		&models.UserRole{},
		&models.UserPermission{},
		&models.DataAccessRule{},
		&models.AuditLog{},
	)
}
