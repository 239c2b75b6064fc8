package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
)

// AssignmentService manages actor-to-role assignments and direct permission
// grants. Assignment writes are whole-set replaces inside one transaction;
// partial states are never persisted.
type AssignmentService struct {
	db       *gorm.DB
	audit    *AuditService
	resolver *Resolver
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(db *gorm.DB, audit *AuditService, resolver *Resolver) (*AssignmentService, error) {
	if db == nil {
		return nil, errors.New("assignment service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("assignment service: resolver is required")
	}
	return &AssignmentService{db: db, audit: audit, resolver: resolver}, nil
}

// AssignRolesInput describes a whole-set assignment replace.
type AssignRolesInput struct {
	ActorID uint
	RoleIDs []uint
	// DirectPermissionIDs, when non-nil, replaces the actor's entire
	// direct-grant set as part of the same transaction. Nil leaves the
	// existing grants untouched; an empty slice clears them.
	DirectPermissionIDs []uint
	AssignedByID        *uint
}

// ActorAccessProfile is the canonical read projection for one actor.
type ActorAccessProfile struct {
	Roles                    []models.Role       `json:"roles"`
	DirectPermissions        []models.Permission `json:"direct_permissions"`
	EffectivePermissionCodes []string            `json:"effective_permission_codes"`
}

// AssignRoles replaces the actor's role assignment set and, when provided,
// the direct-grant set. The cache entry is evicted before this call returns
// so a subsequent resolve always observes the new state.
func (s *AssignmentService) AssignRoles(ctx context.Context, input AssignRolesInput) error {
	ctx = ensureContext(ctx)

	roleIDs := uniqueIDs(input.RoleIDs)
	grantIDs := input.DirectPermissionIDs
	if grantIDs != nil {
		grantIDs = uniqueIDs(grantIDs)
		if grantIDs == nil {
			grantIDs = []uint{}
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var actor models.StaffUser
		if err := tx.First(&actor, "id = ?", input.ActorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActorNotFound
			}
			return fmt.Errorf("assignment service: load actor: %w", err)
		}

		if len(roleIDs) > 0 {
			var count int64
			if err := tx.Model(&models.Role{}).Where("id IN ?", roleIDs).Count(&count).Error; err != nil {
				return fmt.Errorf("assignment service: verify roles: %w", err)
			}
			if count != int64(len(roleIDs)) {
				return ErrRoleNotFound
			}
		}

		if err := tx.Where("staff_user_id = ?", input.ActorID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("assignment service: clear role assignments: %w", err)
		}
		for _, roleID := range roleIDs {
			row := models.UserRole{
				StaffUserID:  input.ActorID,
				RoleID:       roleID,
				AssignedByID: input.AssignedByID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("assignment service: assign role %d: %w", roleID, err)
			}
		}

		if grantIDs != nil {
			if len(grantIDs) > 0 {
				var count int64
				if err := tx.Model(&models.Permission{}).Where("id IN ?", grantIDs).Count(&count).Error; err != nil {
					return fmt.Errorf("assignment service: verify permissions: %w", err)
				}
				if count != int64(len(grantIDs)) {
					return ErrPermissionNotFound
				}
			}

			if err := tx.Where("staff_user_id = ?", input.ActorID).Delete(&models.UserPermission{}).Error; err != nil {
				return fmt.Errorf("assignment service: clear direct grants: %w", err)
			}
			for _, permID := range grantIDs {
				row := models.UserPermission{
					StaffUserID:  input.ActorID,
					PermissionID: permID,
					AssignedByID: input.AssignedByID,
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("assignment service: grant permission %d: %w", permID, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Synchronous eviction gives read-your-writes; TTL expiry alone would not.
	if err := s.resolver.Invalidate(ctx, input.ActorID); err != nil {
		return fmt.Errorf("assignment service: invalidate cache: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "assignment.replace",
		Category:     models.AuditCategoryAuthorization,
		Action:       "assign_roles",
		ResourceType: "STAFF_USER",
		ResourceID:   fmt.Sprint(input.ActorID),
		ActorID:      input.AssignedByID,
		Success:      true,
		NewValue: map[string]any{
			"role_ids":              roleIDs,
			"direct_permission_ids": grantIDs,
		},
	})

	return nil
}

// RemoveRole removes a single role assignment from the actor.
func (s *AssignmentService) RemoveRole(ctx context.Context, actorID, roleID uint, removedByID *uint) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("staff_user_id = ? AND role_id = ?", actorID, roleID).
		Delete(&models.UserRole{})
	if result.Error != nil {
		return fmt.Errorf("assignment service: remove role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}

	if err := s.resolver.Invalidate(ctx, actorID); err != nil {
		return fmt.Errorf("assignment service: invalidate cache: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "assignment.remove_role",
		Category:     models.AuditCategoryAuthorization,
		Action:       "remove_role",
		ResourceType: "STAFF_USER",
		ResourceID:   fmt.Sprint(actorID),
		ActorID:      removedByID,
		Success:      true,
		OldValue:     map[string]any{"role_id": roleID},
	})

	return nil
}

// GetRolesAndPermissions is the canonical read path for one actor, backed by
// the effective-permission cache.
func (s *AssignmentService) GetRolesAndPermissions(ctx context.Context, actorID uint) (*ActorAccessProfile, error) {
	ctx = ensureContext(ctx)

	var actor models.StaffUser
	if err := s.db.WithContext(ctx).
		Preload("Roles", "is_active = ?", true).
		Preload("DirectPermissions").
		First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("assignment service: load actor: %w", err)
	}

	codes, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	return &ActorAccessProfile{
		Roles:                    actor.Roles,
		DirectPermissions:        actor.DirectPermissions,
		EffectivePermissionCodes: codes,
	}, nil
}
