package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/cache"
	"github.com/clinicore/clinicore/internal/database/testutil"
	"github.com/clinicore/clinicore/internal/models"
)

// engineFixture wires the full decision stack against an in-memory database.
type engineFixture struct {
	db          *gorm.DB
	store       *cache.MemoryStore
	resolver    *Resolver
	audit       *AuditService
	catalog     *CatalogService
	roles       *RoleService
	assignments *AssignmentService
	access      *AccessService
	rules       *RuleService
	emergency   *EmergencyService
	matrix      *MatrixService
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithCatalog())
	store := cache.NewMemoryStore()

	resolver, err := NewResolver(db, store, 0)
	require.NoError(t, err)

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	catalog, err := NewCatalogService(db)
	require.NoError(t, err)

	roles, err := NewRoleService(db, audit, resolver)
	require.NoError(t, err)

	assignments, err := NewAssignmentService(db, audit, resolver)
	require.NoError(t, err)

	access, err := NewAccessService(db, resolver, audit)
	require.NoError(t, err)

	rules, err := NewRuleService(db, audit, resolver)
	require.NoError(t, err)

	emergency, err := NewEmergencyService(access, audit, 0)
	require.NoError(t, err)

	matrix, err := NewMatrixService(db, audit, resolver)
	require.NoError(t, err)

	return &engineFixture{
		db:          db,
		store:       store,
		resolver:    resolver,
		audit:       audit,
		catalog:     catalog,
		roles:       roles,
		assignments: assignments,
		access:      access,
		rules:       rules,
		emergency:   emergency,
		matrix:      matrix,
	}
}

func createActor(t *testing.T, db *gorm.DB, username string) *models.StaffUser {
	t.Helper()

	actor := &models.StaffUser{Username: username, IsActive: true}
	require.NoError(t, db.Create(actor).Error)
	return actor
}

func createRoleWithCodes(t *testing.T, fx *engineFixture, name string, codes ...string) *models.Role {
	t.Helper()

	role, err := fx.roles.Create(context.Background(), CreateRoleInput{
		Name:            name,
		PermissionCodes: codes,
	})
	require.NoError(t, err)
	return role
}

func assignRoles(t *testing.T, fx *engineFixture, actorID uint, roleIDs ...uint) {
	t.Helper()

	require.NoError(t, fx.assignments.AssignRoles(context.Background(), AssignRolesInput{
		ActorID: actorID,
		RoleIDs: roleIDs,
	}))
}

func permissionIDByCode(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()

	var perm models.Permission
	require.NoError(t, db.First(&perm, "code = ?", code).Error)
	return perm.ID
}

func auditEvents(t *testing.T, db *gorm.DB, eventType string) []models.AuditLog {
	t.Helper()

	var logs []models.AuditLog
	require.NoError(t, db.Where("event_type = ?", eventType).Order("created_at ASC").Find(&logs).Error)
	return logs
}
