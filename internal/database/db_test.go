package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var permissionCount int64
	if err := db.Model(&models.Permission{}).Count(&permissionCount).Error; err != nil {
		t.Fatalf("count permissions: %v", err)
	}
	if permissionCount != int64(len(permissions.GetAll())) {
		t.Fatalf("expected %d catalog permissions, got %d", len(permissions.GetAll()), permissionCount)
	}

	// Join tables carry assignment metadata, so they must exist as real tables.
	for _, table := range []string{"user_roles", "user_permissions"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected join table %s to exist", table)
		}
	}

	// Running the seed twice must not duplicate catalog rows.
	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("second auto migrate and seed failed: %v", err)
	}
	var again int64
	if err := db.Model(&models.Permission{}).Count(&again).Error; err != nil {
		t.Fatalf("recount permissions: %v", err)
	}
	if again != permissionCount {
		t.Fatalf("expected catalog to stay at %d rows, got %d", permissionCount, again)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
