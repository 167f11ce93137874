package rules

import (
	"errors"
	"testing"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Evaluate(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	in := leave.EligibilityInput{Days: 3, TenureDays: 120, Remaining: 5, LeaveCode: "AL"}

	cases := []struct {
		rule string
		want bool
	}{
		{"tenure_days >= 90", true},
		{"tenure_days >= 180", false},
		{"days <= remaining", true},
		{"days <= 2.5", false},
		{`leave_code == "AL" && days < 5.0`, true},
		{`leave_code in ["STUDY", "SABBATICAL"]`, false},
	}
	for _, tc := range cases {
		got, err := e.Evaluate(tc.rule, in)
		require.NoError(t, err, tc.rule)
		assert.Equal(t, tc.want, got, tc.rule)
	}
}

func TestEvaluator_Validate(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	assert.NoError(t, e.Validate("tenure_days > 30"))

	for _, bad := range []string{"", "tenure_days >", "days + 1", "unknown_var > 1"} {
		err := e.Validate(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput), bad)
	}
}

func TestEvaluator_CachesPrograms(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	_, err = e.Evaluate("days > 1.0", leave.EligibilityInput{Days: 2})
	require.NoError(t, err)
	_, ok := e.programs.Load("days > 1.0")
	assert.True(t, ok)
}
