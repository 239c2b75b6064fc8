package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
)

// CatalogService is the read surface over the immutable permission catalog.
// It performs no authorization itself.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) (*CatalogService, error) {
	if db == nil {
		return nil, errors.New("catalog service: db is required")
	}
	return &CatalogService{db: db}, nil
}

// ListAll returns every catalog entry ordered by category then code.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("category ASC, code ASC").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list permissions: %w", err)
	}
	return perms, nil
}

// ListByCategory returns catalog entries in one category.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	if err := s.db.WithContext(ctx).
		Where("category = ?", strings.TrimSpace(category)).
		Order("code ASC").
		Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("catalog service: list by category: %w", err)
	}
	return perms, nil
}

// GetByCode returns the catalog entry for a code, or nil when absent. A read
// miss is an empty result, not an error.
func (s *CatalogService) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	var perm models.Permission
	err := s.db.WithContext(ctx).First(&perm, "code = ?", strings.TrimSpace(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog service: load permission: %w", err)
	}
	return &perm, nil
}

// InitializeDefaults idempotently inserts the compiled-in catalog. Existing
// rows are never overwritten.
func (s *CatalogService) InitializeDefaults(ctx context.Context) error {
	return permissions.Sync(ensureContext(ctx), s.db)
}
