package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicates(t *testing.T) {
	def, ok := Get("PATIENT_VIEW")
	require.True(t, ok)
	require.Equal(t, "patient", def.Category)
	require.True(t, def.Sensitive)

	err := Register(&Definition{Code: "PATIENT_VIEW", Category: "patient"})
	require.ErrorIs(t, err, errDuplicateCode)
}

func TestRegisterRejectsEmptyCode(t *testing.T) {
	require.ErrorIs(t, Register(&Definition{Code: "   "}), errEmptyCode)
	require.ErrorIs(t, Register(nil), errNilDefinition)
}

func TestCodeFor(t *testing.T) {
	require.Equal(t, "PATIENT_DELETE", CodeFor("patient", "delete"))
	require.Equal(t, "BILLING_VIEW", CodeFor(" billing ", "View"))
}

func TestGetByCategoryIsSorted(t *testing.T) {
	defs := GetByCategory("patient")
	require.NotEmpty(t, defs)
	for i := 1; i < len(defs); i++ {
		require.Less(t, defs[i-1].Code, defs[i].Code)
	}
}

func TestWellKnownCodesRegistered(t *testing.T) {
	admin, ok := Get(CodeSystemAdmin)
	require.True(t, ok)
	require.True(t, admin.System)

	emergency, ok := Get(CodeEmergencyAccess)
	require.True(t, ok)
	require.True(t, emergency.System)
	require.True(t, emergency.Sensitive)
}
