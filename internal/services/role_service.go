package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/internal/permissions"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
	"github.com/clinicore/clinicore/pkg/logger"
)

// RoleService manages role definitions and their permission sets.
type RoleService struct {
	db       *gorm.DB
	audit    *AuditService
	resolver *Resolver
	log      *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(db *gorm.DB, audit *AuditService, resolver *Resolver) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{
		db:       db,
		audit:    audit,
		resolver: resolver,
		log:      logger.WithComponent("roles"),
	}, nil
}

// CreateRoleInput describes the payload accepted by Create.
type CreateRoleInput struct {
	Name            string
	Description     string
	OrgUnit         string
	PermissionCodes []string
}

// UpdateRoleInput describes mutable fields on a role. PermissionCodes, when
// non-nil, replaces the entire permission set; callers resend the full
// desired set rather than a delta.
type UpdateRoleInput struct {
	Name            string
	Description     string
	PermissionCodes []string
}

// Create registers a new custom role together with its permission set.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailure("role name is required")
	}

	perms, err := s.loadPermissionsByCode(ctx, normaliseCodes(input.PermissionCodes), true)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OrgUnit:     strings.TrimSpace(input.OrgUnit),
		RoleType:    models.RoleTypeCustom,
		IsActive:    true,
		Permissions: perms,
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateRoleName
		}
		return nil, fmt.Errorf("role service: create role: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "role.create",
		Category:     models.AuditCategoryAdministration,
		Action:       "create",
		ResourceType: "ROLE",
		ResourceID:   fmt.Sprint(role.ID),
		Success:      true,
		NewValue: map[string]any{
			"name":             role.Name,
			"org_unit":         role.OrgUnit,
			"permission_codes": codesOf(perms),
		},
	})

	return role, nil
}

// Update modifies a custom role. System roles reject every mutation: their
// definition is fixed at bootstrap.
func (s *RoleService) Update(ctx context.Context, roleID uint, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}

		if role.IsSystemRole {
			return ErrSystemRoleImmutable
		}

		updates := map[string]any{}
		if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
			updates["name"] = name
		}
		if desc := strings.TrimSpace(input.Description); desc != role.Description {
			updates["description"] = desc
		}
		if len(updates) > 0 {
			if err := tx.Model(&role).Updates(updates).Error; err != nil {
				if isUniqueConstraintError(err) {
					return ErrDuplicateRoleName
				}
				return fmt.Errorf("role service: update role: %w", err)
			}
		}

		if input.PermissionCodes != nil {
			perms, err := s.loadPermissionsByCodeTx(tx, normaliseCodes(input.PermissionCodes), true)
			if err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("role service: replace permissions: %w", err)
			}
		}

		return tx.Preload("Permissions").First(&role, "id = ?", roleID).Error
	})
	if err != nil {
		return nil, err
	}

	// A changed permission set affects every holder of this role.
	if input.PermissionCodes != nil && s.resolver != nil {
		if err := s.resolver.InvalidateRoleHolders(ctx, roleID); err != nil {
			return nil, fmt.Errorf("role service: invalidate holders: %w", err)
		}
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "role.update",
		Category:     models.AuditCategoryAdministration,
		Action:       "update",
		ResourceType: "ROLE",
		ResourceID:   fmt.Sprint(role.ID),
		Success:      true,
		NewValue: map[string]any{
			"name":             role.Name,
			"permission_codes": codesOf(role.Permissions),
		},
	})

	return &role, nil
}

// Delete removes a custom role. Deletion is blocked, not cascaded, while any
// actor still holds the role.
func (s *RoleService) Delete(ctx context.Context, roleID uint) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("role service: load role: %w", err)
		}

		if role.IsSystemRole {
			return ErrSystemRoleImmutable
		}

		var assignments int64
		if err := tx.Model(&models.UserRole{}).Where("role_id = ?", roleID).Count(&assignments).Error; err != nil {
			return fmt.Errorf("role service: count assignments: %w", err)
		}
		if assignments > 0 {
			return ErrRoleInUse
		}

		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return fmt.Errorf("role service: clear role permissions: %w", err)
		}
		if err := tx.Delete(&role).Error; err != nil {
			return fmt.Errorf("role service: delete role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "role.delete",
		Category:     models.AuditCategoryAdministration,
		Action:       "delete",
		ResourceType: "ROLE",
		ResourceID:   fmt.Sprint(roleID),
		Success:      true,
	})

	return nil
}

// Duplicate copies an existing role's permission set (system roles included,
// as a seeding mechanism) into a new custom role.
func (s *RoleService) Duplicate(ctx context.Context, roleID uint, newName string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperrors.NewValidationFailure("new role name is required")
	}

	var source models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&source, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("role service: load source role: %w", err)
	}

	clone := &models.Role{
		Name:        newName,
		Description: source.Description,
		OrgUnit:     source.OrgUnit,
		RoleType:    models.RoleTypeCustom,
		IsActive:    true,
		Permissions: source.Permissions,
	}

	if err := s.db.WithContext(ctx).Create(clone).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateRoleName
		}
		return nil, fmt.Errorf("role service: duplicate role: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEvent{
		EventType:    "role.duplicate",
		Category:     models.AuditCategoryAdministration,
		Action:       "create",
		ResourceType: "ROLE",
		ResourceID:   fmt.Sprint(clone.ID),
		Success:      true,
		NewValue: map[string]any{
			"source_role_id": source.ID,
			"name":           clone.Name,
		},
	})

	return clone, nil
}

// List returns all roles with their permission sets.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("created_at ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, nil
}

// Get loads a single role with its permission set.
func (s *RoleService) Get(ctx context.Context, roleID uint) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("role service: load role: %w", err)
	}
	return &role, nil
}

// GetByName returns the role with the given name in the global scope, or nil
// when absent. A read miss here is an empty result, not an error.
func (s *RoleService) GetByName(ctx context.Context, name string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").
		First(&role, "name = ? AND org_unit = ?", strings.TrimSpace(name), "").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("role service: load role by name: %w", err)
	}
	return &role, nil
}

// defaultRole pairs a canonical role with its hard-coded permission codes.
type defaultRole struct {
	name        string
	description string
	codes       []string
}

var defaultRoles = []defaultRole{
	{
		name:        "System Administrator",
		description: "Unrestricted access to every subsystem",
		codes:       []string{permissions.CodeSystemAdmin},
	},
	{
		name:        "Physician",
		description: "Clinical staff with full patient-record access",
		codes: []string{
			"PATIENT_VIEW", "PATIENT_CREATE", "PATIENT_UPDATE",
			"MEDICAL_RECORD_VIEW", "MEDICAL_RECORD_UPDATE",
			"PRESCRIPTION_VIEW", "PRESCRIPTION_CREATE",
			"IMAGING_VIEW", "IMAGING_UPLOAD",
			permissions.CodeEmergencyAccess,
		},
	},
	{
		name:        "Nurse",
		description: "Clinical staff with patient-record read access",
		codes: []string{
			"PATIENT_VIEW", "MEDICAL_RECORD_VIEW",
			"PRESCRIPTION_VIEW", "IMAGING_VIEW",
			permissions.CodeEmergencyAccess,
		},
	},
	{
		name:        "Receptionist",
		description: "Front-desk staff handling registration",
		codes:       []string{"PATIENT_VIEW", "PATIENT_CREATE"},
	},
	{
		name:        "Billing Clerk",
		description: "Billing and insurance-claim processing",
		codes: []string{
			"BILLING_VIEW", "BILLING_CREATE", "BILLING_UPDATE",
			"INSURANCE_CLAIM_VIEW", "INSURANCE_CLAIM_SUBMIT",
			"CODING_VIEW",
		},
	},
	{
		name:        "Pharmacist",
		description: "Pharmacy inventory and dispensing",
		codes:       []string{"PHARMACY_VIEW", "PHARMACY_SELL", "PRESCRIPTION_VIEW"},
	},
	{
		name:        "HR Manager",
		description: "Staff record administration",
		codes:       []string{"HR_VIEW", "HR_MANAGE"},
	},
	{
		name:        "Auditor",
		description: "Compliance review of audit trails",
		codes:       []string{"AUDIT_VIEW", "AUDIT_EXPORT"},
	},
}

// InitializeDefaults idempotently creates the canonical system roles. Codes
// without a catalog match are skipped rather than failing the bootstrap; the
// hard-coded lists are allowed to drift ahead of a deployment's catalog.
func (s *RoleService) InitializeDefaults(ctx context.Context) error {
	ctx = ensureContext(ctx)

	for _, def := range defaultRoles {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.Role{}).
			Where("name = ? AND org_unit = ?", def.name, "").
			Count(&existing).Error; err != nil {
			return fmt.Errorf("role service: check default role %q: %w", def.name, err)
		}
		if existing > 0 {
			continue
		}

		perms, err := s.loadPermissionsByCode(ctx, def.codes, false)
		if err != nil {
			return err
		}

		role := models.Role{
			Name:         def.name,
			Description:  def.description,
			RoleType:     models.RoleTypeSystem,
			IsSystemRole: true,
			IsActive:     true,
			Permissions:  perms,
		}
		if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
			return fmt.Errorf("role service: create default role %q: %w", def.name, err)
		}
		s.log.Info("created default role", zap.String("name", def.name), zap.Int("permissions", len(perms)))
	}

	return nil
}

// loadPermissionsByCode resolves catalog rows for the supplied codes. When
// strict, unknown codes are a validation failure; otherwise they are skipped.
func (s *RoleService) loadPermissionsByCode(ctx context.Context, codes []string, strict bool) ([]models.Permission, error) {
	return s.loadPermissionsByCodeTx(s.db.WithContext(ctx), codes, strict)
}

func (s *RoleService) loadPermissionsByCodeTx(tx *gorm.DB, codes []string, strict bool) ([]models.Permission, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	var perms []models.Permission
	if err := tx.Where("code IN ?", codes).Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("role service: load permissions: %w", err)
	}

	if strict && len(perms) != len(codes) {
		found := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			found[perm.Code] = struct{}{}
		}
		for _, code := range codes {
			if _, ok := found[code]; !ok {
				return nil, apperrors.NewValidationFailure(fmt.Sprintf("unknown permission code %q", code))
			}
		}
	}

	return perms, nil
}

func codesOf(perms []models.Permission) []string {
	codes := make([]string, 0, len(perms))
	for _, perm := range perms {
		codes = append(codes, perm.Code)
	}
	return codes
}
