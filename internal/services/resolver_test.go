package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/models"
)

func TestResolverUnionsRolesAndDirectGrants(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "dr.sato")
	wardRole := createRoleWithCodes(t, fx, "Ward Duty", "PATIENT_VIEW", "MEDICAL_RECORD_VIEW")
	// Overlapping code on purpose: the union must deduplicate.
	clinicRole := createRoleWithCodes(t, fx, "Clinic Duty", "PATIENT_VIEW", "PRESCRIPTION_CREATE")
	auditExport := permissionIDByCode(t, fx.db, "AUDIT_EXPORT")

	require.NoError(t, fx.assignments.AssignRoles(ctx, AssignRolesInput{
		ActorID:             actor.ID,
		RoleIDs:             []uint{wardRole.ID, clinicRole.ID},
		DirectPermissionIDs: []uint{auditExport},
	}))

	codes, err := fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{
		"AUDIT_EXPORT",
		"MEDICAL_RECORD_VIEW",
		"PATIENT_VIEW",
		"PRESCRIPTION_CREATE",
	}, codes)
}

func TestResolverExcludesInactiveRoles(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "nurse.berg")
	role := createRoleWithCodes(t, fx, "Seasonal Staff", "PATIENT_VIEW")
	assignRoles(t, fx, actor.ID, role.ID)

	require.NoError(t, fx.db.Model(&models.Role{}).Where("id = ?", role.ID).Update("is_active", false).Error)
	require.NoError(t, fx.resolver.Invalidate(ctx, actor.ID))

	codes, err := fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestResolverServesCachedSetUntilInvalidated(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "dr.quinn")
	role := createRoleWithCodes(t, fx, "Outpatient", "PATIENT_VIEW")
	assignRoles(t, fx, actor.ID, role.ID)

	codes, err := fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT_VIEW"}, codes)

	// A raw write that bypasses the services leaves the cache stale.
	require.NoError(t, fx.db.Where("staff_user_id = ?", actor.ID).Delete(&models.UserRole{}).Error)

	codes, err = fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT_VIEW"}, codes)

	require.NoError(t, fx.resolver.Invalidate(ctx, actor.ID))

	codes, err = fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestResolverInvalidateRoleHoldersIsTargeted(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	holder := createActor(t, fx.db, "dr.lind")
	bystander := createActor(t, fx.db, "dr.cho")

	shared := createRoleWithCodes(t, fx, "Shared Duty", "PATIENT_VIEW")
	other := createRoleWithCodes(t, fx, "Other Duty", "BILLING_VIEW")
	assignRoles(t, fx, holder.ID, shared.ID)
	assignRoles(t, fx, bystander.ID, other.ID)

	_, err := fx.resolver.Resolve(ctx, holder.ID)
	require.NoError(t, err)
	_, err = fx.resolver.Resolve(ctx, bystander.ID)
	require.NoError(t, err)
	require.Equal(t, 2, fx.store.Len())

	require.NoError(t, fx.resolver.InvalidateRoleHolders(ctx, shared.ID))
	require.Equal(t, 1, fx.store.Len())

	// The bystander's entry survived the targeted eviction.
	_, ok, err := fx.store.Get(ctx, actorCacheKey(bystander.ID))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResolverFlushDropsEverything(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	for _, name := range []string{"u.one", "u.two", "u.three"} {
		actor := createActor(t, fx.db, name)
		_, err := fx.resolver.Resolve(ctx, actor.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 3, fx.store.Len())

	require.NoError(t, fx.resolver.Flush(ctx))
	require.Equal(t, 0, fx.store.Len())
}

func TestResolverCorruptCacheEntryRecomputes(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "dr.marsh")
	role := createRoleWithCodes(t, fx, "Day Clinic", "PATIENT_VIEW")
	assignRoles(t, fx, actor.ID, role.ID)

	require.NoError(t, fx.store.Set(ctx, actorCacheKey(actor.ID), []byte("{not json"), 0))

	codes, err := fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT_VIEW"}, codes)
}

func TestResolverUnknownActor(t *testing.T) {
	fx := setupEngine(t)

	_, err := fx.resolver.Resolve(context.Background(), 31337)
	require.ErrorIs(t, err, ErrActorNotFound)
}
