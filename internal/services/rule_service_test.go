package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/permissions"
	apperrors "github.com/clinicore/clinicore/pkg/errors"
)

func TestRuleServiceCreateValidatesInput(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	_, err := fx.rules.Create(ctx, RuleInput{ResourceType: "patient", Condition: `a == 1`})
	require.True(t, apperrors.IsValidationFailure(err))

	_, err = fx.rules.Create(ctx, RuleInput{RuleName: "r", Condition: `a == 1`})
	require.True(t, apperrors.IsValidationFailure(err))

	// Malformed conditions never reach the database.
	_, err = fx.rules.Create(ctx, RuleInput{
		RuleName:     "broken",
		ResourceType: "patient",
		Condition:    `patient.status == `,
	})
	require.True(t, apperrors.IsValidationFailure(err))

	// A role-scoped rule must point at a real role.
	missing := uint(9999)
	_, err = fx.rules.Create(ctx, RuleInput{
		RuleName:     "orphan scope",
		ResourceType: "patient",
		Condition:    `patient.status == "active"`,
		RoleID:       &missing,
	})
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRuleServiceUpdateAndDelete(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	rule, err := fx.rules.Create(ctx, RuleInput{
		RuleName:     "active patients",
		ResourceType: "patient",
		Condition:    `patient.status == "active"`,
		AllowAccess:  true,
		Priority:     5,
		IsActive:     true,
	})
	require.NoError(t, err)

	updated, err := fx.rules.Update(ctx, rule.ID, RuleInput{
		RuleName:     "active patients",
		ResourceType: "patient",
		Condition:    `patient.status == "discharged"`,
		AllowAccess:  true,
		Priority:     3,
		IsActive:     false,
	})
	require.NoError(t, err)
	require.Equal(t, `patient.status == "discharged"`, updated.Condition)
	require.Equal(t, 3, updated.Priority)
	require.False(t, updated.IsActive)

	require.NoError(t, fx.rules.Delete(ctx, rule.ID))
	require.ErrorIs(t, fx.rules.Delete(ctx, rule.ID), ErrRuleNotFound)
}

func TestRuleServiceListOrdersByPriority(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	for _, rule := range []RuleInput{
		{RuleName: "late", ResourceType: "billing", Condition: `invoice.open == true`, Priority: 20, IsActive: true},
		{RuleName: "early", ResourceType: "billing", Condition: `invoice.open == true`, Priority: 1, IsActive: true},
		{RuleName: "elsewhere", ResourceType: "pharmacy", Condition: `stock.low == true`, Priority: 2, IsActive: true},
	} {
		_, err := fx.rules.Create(ctx, rule)
		require.NoError(t, err)
	}

	rules, err := fx.rules.List(ctx, "billing")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "early", rules[0].RuleName)
	require.Equal(t, "late", rules[1].RuleName)

	all, err := fx.rules.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestActiveFilterComposesHeldRuleConditions(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	actor := createActor(t, fx.db, "dr.finch")
	held := createRoleWithCodes(t, fx, "Hospitalist", "PATIENT_VIEW")
	notHeld := createRoleWithCodes(t, fx, "Surgeon", "PATIENT_VIEW")
	assignRoles(t, fx, actor.ID, held.ID)

	for _, rule := range []RuleInput{
		{RuleName: "global", ResourceType: "patient", Condition: `patient.status == "active"`, Priority: 1, IsActive: true},
		{RuleName: "scoped held", ResourceType: "patient", Condition: `patient.ward == "east"`, RoleID: &held.ID, Priority: 2, IsActive: true},
		{RuleName: "scoped not held", ResourceType: "patient", Condition: `patient.ward == "west"`, RoleID: &notHeld.ID, Priority: 3, IsActive: true},
		{RuleName: "inactive", ResourceType: "patient", Condition: `patient.vip == true`, Priority: 4, IsActive: false},
	} {
		_, err := fx.rules.Create(ctx, rule)
		require.NoError(t, err)
	}

	filter, err := fx.rules.ActiveFilter(ctx, actor.ID, "patient")
	require.NoError(t, err)
	require.Equal(t, `(patient.status == "active") && (patient.ward == "east")`, filter)
}

func TestActiveFilterUnrestrictedForAdmin(t *testing.T) {
	fx := setupEngine(t)
	ctx := context.Background()

	admin := createActor(t, fx.db, "root.ops")
	role := createRoleWithCodes(t, fx, "Ops Admin", permissions.CodeSystemAdmin)
	assignRoles(t, fx, admin.ID, role.ID)

	_, err := fx.rules.Create(ctx, RuleInput{
		RuleName:     "global",
		ResourceType: "patient",
		Condition:    `patient.status == "active"`,
		Priority:     1,
		IsActive:     true,
	})
	require.NoError(t, err)

	filter, err := fx.rules.ActiveFilter(ctx, admin.ID, "patient")
	require.NoError(t, err)
	require.Empty(t, filter)
}
