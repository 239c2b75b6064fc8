package permissions

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicore/clinicore/internal/models"
)

// Sync persists registered permission definitions to the catalog table.
// It inserts only codes not already present and never rewrites existing rows:
// the catalog is immutable once populated, so repeated start-up runs are
// no-ops for rows that already exist.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defs := GetAll()
	if len(defs) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, def := range defs {
		record := models.Permission{
			Code:               def.Code,
			Name:               def.Name,
			Category:           def.Category,
			ResourceType:       def.ResourceType,
			IsSensitive:        def.Sensitive,
			IsSystemPermission: def.System,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return err
		}
	}

	return nil
}
