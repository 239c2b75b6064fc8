package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrixGridReflectsAssignments(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	physician := createRoleWithCodes(t, fx, "Matrix Physician", "PATIENT_VIEW", "PRESCRIPTION_CREATE")
	clerk := createRoleWithCodes(t, fx, "Matrix Clerk", "BILLING_VIEW")

	matrix, err := fx.matrix.Matrix(ctx)
	require.NoError(t, err)
	require.Len(t, matrix.Roles, 2)
	require.NotEmpty(t, matrix.Categories)

	rows := make(map[string]MatrixPermission)
	total := 0
	for _, category := range matrix.Categories {
		for _, row := range category.Permissions {
			rows[row.Code] = row
			total++
		}
	}

	// The grid is dense: every catalog permission appears for every role.
	var catalogSize int64
	require.NoError(t, fx.db.Table("permissions").Count(&catalogSize).Error)
	require.EqualValues(t, catalogSize, total)

	require.True(t, rows["PATIENT_VIEW"].RoleAssignments[physician.ID])
	require.False(t, rows["PATIENT_VIEW"].RoleAssignments[clerk.ID])
	require.True(t, rows["BILLING_VIEW"].RoleAssignments[clerk.ID])
	require.False(t, rows["BILLING_VIEW"].RoleAssignments[physician.ID])

	require.True(t, rows["MEDICAL_RECORD_VIEW"].IsSensitive)
}

func TestBulkUpdatePermissions(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	role := createRoleWithCodes(t, fx, "Matrix Target", "PATIENT_VIEW", "BILLING_VIEW")

	// Adding an already-held code is a no-op, not an error.
	err := fx.matrix.BulkUpdatePermissions(ctx, role.ID,
		[]string{"PATIENT_VIEW", "IMAGING_VIEW"},
		[]string{"BILLING_VIEW"})
	require.NoError(t, err)

	got, err := fx.roles.Get(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"PATIENT_VIEW", "IMAGING_VIEW"}, codesOf(got.Permissions))
}

func TestBulkUpdateAggregatesUnknownCodes(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	role := createRoleWithCodes(t, fx, "Matrix Unknowns", "PATIENT_VIEW")

	err := fx.matrix.BulkUpdatePermissions(ctx, role.ID,
		[]string{"NOPE_ONE", "IMAGING_VIEW", "NOPE_TWO"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NOPE_ONE")
	require.Contains(t, err.Error(), "NOPE_TWO")
}

func TestBulkUpdateRejectsSystemRole(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	require.NoError(t, fx.roles.InitializeDefaults(ctx))
	admin, err := fx.roles.GetByName(ctx, "System Administrator")
	require.NoError(t, err)
	require.NotNil(t, admin)

	err = fx.matrix.BulkUpdatePermissions(ctx, admin.ID, []string{"PATIENT_VIEW"}, nil)
	require.ErrorIs(t, err, ErrSystemRoleImmutable)
}

func TestBulkUpdateFlushesResolvedSets(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "dr.bishop")
	role := createRoleWithCodes(t, fx, "Matrix Holders", "PATIENT_VIEW")
	assignRoles(t, fx, actor.ID, role.ID)

	codes, err := fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT_VIEW"}, codes)

	require.NoError(t, fx.matrix.BulkUpdatePermissions(ctx, role.ID, []string{"MEDICAL_RECORD_VIEW"}, nil))

	// The bulk edit must be visible on the very next resolve.
	codes, err = fx.resolver.Resolve(ctx, actor.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"PATIENT_VIEW", "MEDICAL_RECORD_VIEW"}, codes)
}
