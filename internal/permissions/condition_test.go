package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConditionEquality(t *testing.T) {
	cond, err := ParseCondition(`department == 'CARDIOLOGY'`)
	require.NoError(t, err)

	require.True(t, cond.Evaluate(map[string]any{"department": "CARDIOLOGY"}))
	require.False(t, cond.Evaluate(map[string]any{"department": "ONCOLOGY"}))
	require.False(t, cond.Evaluate(map[string]any{}))
}

func TestConditionNumericComparison(t *testing.T) {
	cond, err := ParseCondition(`patient_age >= 18`)
	require.NoError(t, err)

	require.True(t, cond.Evaluate(map[string]any{"patient_age": 18}))
	require.True(t, cond.Evaluate(map[string]any{"patient_age": 42.5}))
	require.False(t, cond.Evaluate(map[string]any{"patient_age": 17}))
	require.False(t, cond.Evaluate(map[string]any{"patient_age": "18"}))
}

func TestConditionBooleanAndList(t *testing.T) {
	cond, err := ParseCondition(`on_shift == true && ward in ['ICU', 'ER']`)
	require.NoError(t, err)

	require.True(t, cond.Evaluate(map[string]any{"on_shift": true, "ward": "ICU"}))
	require.True(t, cond.Evaluate(map[string]any{"on_shift": true, "ward": "ER"}))
	require.False(t, cond.Evaluate(map[string]any{"on_shift": true, "ward": "GENERAL"}))
	require.False(t, cond.Evaluate(map[string]any{"on_shift": false, "ward": "ICU"}))
}

func TestConditionDisjunctionWithParens(t *testing.T) {
	cond, err := ParseCondition(`(role_scope == 'attending' || supervised == true) && shift != 'NIGHT'`)
	require.NoError(t, err)

	require.True(t, cond.Evaluate(map[string]any{"role_scope": "attending", "shift": "DAY"}))
	require.True(t, cond.Evaluate(map[string]any{"supervised": true, "shift": "DAY"}))
	require.False(t, cond.Evaluate(map[string]any{"role_scope": "attending", "shift": "NIGHT"}))
	require.False(t, cond.Evaluate(map[string]any{"shift": "DAY"}))
}

func TestConditionKeywordNotMistakenForIdentifierPrefix(t *testing.T) {
	cond, err := ParseCondition(`inpatient == true`)
	require.NoError(t, err)
	require.True(t, cond.Evaluate(map[string]any{"inpatient": true}))
}

func TestConditionParseFailures(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"department ==",
		"department = 'A'",
		"department == 'A' &&",
		"(department == 'A'",
		"age < 'ten'",
		"ward in ['ICU'",
		"== 'A'",
		"department == 'unterminated",
	}
	for _, input := range cases {
		err := ValidateCondition(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestConditionMissingAttributeNeverMatches(t *testing.T) {
	cond, err := ParseCondition(`clearance >= 3`)
	require.NoError(t, err)
	require.False(t, cond.Evaluate(nil))
	require.False(t, cond.Evaluate(map[string]any{"other": 5}))
}
