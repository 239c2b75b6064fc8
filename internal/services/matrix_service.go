package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
)

// MatrixService builds the role-by-permission cross-tabulation used by
// administrative tooling and applies bulk permission edits against it.
type MatrixService struct {
	db       *gorm.DB
	audit    *AuditService
	resolver *Resolver
}

// NewMatrixService constructs a MatrixService.
func NewMatrixService(db *gorm.DB, audit *AuditService, resolver *Resolver) (*MatrixService, error) {
	if db == nil {
		return nil, errors.New("matrix service: db is required")
	}
	return &MatrixService{db: db, audit: audit, resolver: resolver}, nil
}

// MatrixPermission is one catalog row with its per-role assignment flags.
type MatrixPermission struct {
	Code            string        `json:"code"`
	Name            string        `json:"name"`
	IsSensitive     bool          `json:"is_sensitive"`
	RoleAssignments map[uint]bool `json:"role_assignments"`
}

// MatrixCategory groups matrix rows by catalog category.
type MatrixCategory struct {
	Category    string             `json:"category"`
	Permissions []MatrixPermission `json:"permissions"`
}

// PermissionMatrix is the full dense grid.
type PermissionMatrix struct {
	Roles      []models.Role    `json:"roles"`
	Categories []MatrixCategory `json:"categories"`
}

// Matrix computes the grid from a single transaction snapshot so concurrent
// role edits cannot produce a torn view.
func (s *MatrixService) Matrix(ctx context.Context) (*PermissionMatrix, error) {
	ctx = ensureContext(ctx)

	var (
		roles []models.Role
		perms []models.Permission
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Permissions").
			Where("is_active = ?", true).
			Order("created_at ASC").
			Find(&roles).Error; err != nil {
			return fmt.Errorf("matrix service: load roles: %w", err)
		}
		if err := tx.Order("category ASC, code ASC").Find(&perms).Error; err != nil {
			return fmt.Errorf("matrix service: load permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// roleID -> set of held codes
	holdings := make(map[uint]map[string]struct{}, len(roles))
	for _, role := range roles {
		set := make(map[string]struct{}, len(role.Permissions))
		for _, perm := range role.Permissions {
			set[perm.Code] = struct{}{}
		}
		holdings[role.ID] = set
	}

	grouped := make(map[string][]MatrixPermission)
	for _, perm := range perms {
		row := MatrixPermission{
			Code:            perm.Code,
			Name:            perm.Name,
			IsSensitive:     perm.IsSensitive,
			RoleAssignments: make(map[uint]bool, len(roles)),
		}
		for _, role := range roles {
			_, held := holdings[role.ID][perm.Code]
			row.RoleAssignments[role.ID] = held
		}
		grouped[perm.Category] = append(grouped[perm.Category], row)
	}

	categories := make([]MatrixCategory, 0, len(grouped))
	for category, rows := range grouped {
		categories = append(categories, MatrixCategory{Category: category, Permissions: rows})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Category < categories[j].Category })

	return &PermissionMatrix{Roles: roles, Categories: categories}, nil
}

// BulkUpdatePermissions removes then adds permission links on a custom role.
// Adds skip already-present codes; unknown codes are collected into one
// aggregated error rather than failing on the first. The whole permission
// cache is flushed afterward: this mutation cannot cheaply enumerate every
// affected actor, and correctness beats precision.
func (s *MatrixService) BulkUpdatePermissions(ctx context.Context, roleID uint, addCodes, removeCodes []string) error {
	ctx = ensureContext(ctx)

	addCodes = normaliseCodes(addCodes)
	removeCodes = normaliseCodes(removeCodes)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Preload("Permissions").First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("matrix service: load role: %w", err)
		}

		if role.IsSystemRole {
			return ErrSystemRoleImmutable
		}

		held := make(map[string]models.Permission, len(role.Permissions))
		for _, perm := range role.Permissions {
			held[perm.Code] = perm
		}

		var unknown error

		if len(removeCodes) > 0 {
			var toRemove []models.Permission
			for _, code := range removeCodes {
				if perm, ok := held[code]; ok {
					toRemove = append(toRemove, perm)
				}
			}
			if len(toRemove) > 0 {
				if err := tx.Model(&role).Association("Permissions").Delete(toRemove); err != nil {
					return fmt.Errorf("matrix service: remove permissions: %w", err)
				}
			}
		}

		for _, code := range addCodes {
			if _, already := held[code]; already {
				continue
			}
			var perm models.Permission
			if err := tx.First(&perm, "code = ?", code).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					unknown = multierr.Append(unknown, fmt.Errorf("unknown permission code %q", code))
					continue
				}
				return fmt.Errorf("matrix service: load permission %q: %w", code, err)
			}
			if err := tx.Model(&role).Association("Permissions").Append(&perm); err != nil {
				return fmt.Errorf("matrix service: add permission %q: %w", code, err)
			}
		}

		return unknown
	})
	if err != nil {
		return err
	}

	if s.resolver != nil {
		if err := s.resolver.Flush(ctx); err != nil {
			return fmt.Errorf("matrix service: flush cache: %w", err)
		}
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "role.bulk_update_permissions",
		Category:     models.AuditCategoryAdministration,
		Action:       "bulk_update",
		ResourceType: "ROLE",
		ResourceID:   fmt.Sprint(roleID),
		Success:      true,
		NewValue: map[string]any{
			"added":   addCodes,
			"removed": removeCodes,
		},
	})

	return nil
}
