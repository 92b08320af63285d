package matching

import (
	"testing"

	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRequired(t *testing.T) {
	reg := scoring.NewRegistry(scoring.DefaultConstants())

	tests := []struct {
		name     string
		required string
		user     []mod
		cand     []mod
		passes   bool
		failure  string
	}{
		{
			name:     "gender accepted",
			required: "gender",
			user:     []mod{wantsFemale},
			passes:   true,
		},
		{
			name:     "gender rejected",
			required: "gender",
			user:     []mod{wantsFemale},
			cand:     []mod{male},
			failure:  `gender: candidate gender "male" not in required [female]`,
		},
		{
			name:     "gender with no preference",
			required: "gender",
			cand:     []mod{male},
			passes:   true,
		},
		{
			name:     "smoking must match",
			required: "smoking",
			cand:     []mod{smoker},
			failure:  "smoking: candidate smoking=true, required false",
		},
		{
			name:     "smoker user rejects non-smoker",
			required: "smoking",
			user:     []mod{smoker},
			failure:  "smoking: candidate smoking=false, required true",
		},
		{
			name:     "location containment passes",
			required: "location",
			cand:     []mod{locatedIn("toronto, on")},
			passes:   true,
		},
		{
			name:     "location mismatch fails",
			required: "location",
			cand:     []mod{locatedIn("Vancouver")},
			failure:  "location: score 0 below required 75",
		},
		{
			name:     "budget half overlap passes",
			required: "budget",
			cand:     []mod{budget("$1500-$2000")},
			passes:   true,
		},
		{
			name:     "disjoint budget fails",
			required: "budget",
			cand:     []mod{budget("$2000-$2500")},
			failure:  "budget: score 10 below required 50",
		},
		{
			name:     "no shared hobbies",
			required: "hobbies",
			cand:     []mod{hobbies("chess")},
			failure:  "hobbies: no shared hobbies",
		},
		{
			name:     "move-in gap",
			required: "moveIn",
			cand:     []mod{movingIn("2025-04-10", "2025-04-30")},
			failure:  "moveIn: windows are 10 days apart",
		},
		{
			name:     "expired move-in windows fail",
			required: "moveIn",
			user:     []mod{movingIn("2024-06-01", "2024-06-30")},
			cand:     []mod{movingIn("2024-06-15", "2024-07-15")},
			failure:  "moveIn: move-in window has passed",
		},
		{
			name:     "same shift meets schedule threshold",
			required: "workSchedule",
			passes:   true,
		},
		{
			name:     "unlisted shift pair fails schedule",
			required: "workSchedule",
			cand:     []mod{shift("afternoonShift")},
			failure:  "workSchedule: score 50 below required 80",
		},
		{
			name:     "other dimensions need a perfect score",
			required: "housingType",
			cand:     []mod{housing("house")},
			failure:  "housingType: score 50 below required 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := withRequired(preferredWeights(), tt.required)
			user := normalized("user", tt.user...)
			cand := normalized("cand", tt.cand...)

			got := CheckRequired(reg, user, cand, weights, fixedNow)

			if tt.passes {
				assert.True(t, got.Passes)
				assert.Empty(t, got.Failures)
				return
			}
			assert.False(t, got.Passes)
			require.Len(t, got.Failures, 1)
			assert.Equal(t, tt.failure, got.Failures[0])
			assert.Equal(t, scoring.Dimension(tt.required), got.Dimension)
		})
	}
}

func TestCheckRequired_ShortCircuitsOnFirstFailure(t *testing.T) {
	reg := scoring.NewRegistry(scoring.DefaultConstants())
	weights := withRequired(preferredWeights(), "gender", "smoking")
	user := normalized("user", wantsFemale)
	cand := normalized("cand", male, smoker)

	got := CheckRequired(reg, user, cand, weights, fixedNow)

	require.Len(t, got.Failures, 1)
	assert.Equal(t, scoring.DimGender, got.Dimension, "dimensions are checked in name order")
}
