package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/roommate-matcher/internal/profile"
	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// Pass thresholds for required dimensions scored on a sliding scale.
// Dimensions not listed here must score 100.
const (
	locationPassScore = 75
	budgetPassScore   = 50
	schedulePassScore = 80
)

// GateResult is the outcome of checking required dimensions.
type GateResult struct {
	Passes   bool
	Failures []string

	// Dimension is the first required dimension that failed.
	Dimension scoring.Dimension
}

// CheckRequired evaluates every required dimension in weights, in name
// order, and stops at the first failure.
func CheckRequired(reg *scoring.Registry, user, cand *profile.Profile, weights types.WeightConfig, now time.Time) GateResult {
	in := scoring.Input{User: user, Candidate: cand, Now: now}
	for _, name := range weights.Required() {
		dim := scoring.Dimension(name)
		if failure := checkDimension(reg, dim, in); failure != "" {
			return GateResult{Passes: false, Failures: []string{failure}, Dimension: dim}
		}
	}
	return GateResult{Passes: true}
}

func checkDimension(reg *scoring.Registry, dim scoring.Dimension, in scoring.Input) string {
	user, cand := in.User, in.Candidate

	switch dim {
	case scoring.DimGender:
		if !user.Preferences.AcceptsGender(cand.Identity.Gender) {
			return fmt.Sprintf("gender: candidate gender %q not in required [%s]",
				cand.Identity.Gender, joinGenders(user.Preferences.Gender))
		}
		return ""

	case scoring.DimSmoking:
		if cand.Habits.Smoking != user.Habits.Smoking {
			return fmt.Sprintf("smoking: candidate smoking=%t, required %t",
				cand.Habits.Smoking, user.Habits.Smoking)
		}
		return ""

	case scoring.DimHobbies:
		if len(scoring.SharedHobbies(scoring.HobbyTags(user), cand.Hobbies)) == 0 {
			return "hobbies: no shared hobbies"
		}
		return ""

	case scoring.DimMoveIn:
		switch {
		case user.MoveIn == nil || cand.MoveIn == nil:
			return "moveIn: move-in window missing"
		case !in.Now.IsZero() && (user.MoveIn.End.Before(in.Now) || cand.MoveIn.End.Before(in.Now)):
			// Scored as stale, so it cannot satisfy a requirement.
			return "moveIn: move-in window has passed"
		case !user.MoveIn.Overlaps(*cand.MoveIn):
			return fmt.Sprintf("moveIn: windows are %d days apart", user.MoveIn.GapDays(*cand.MoveIn))
		}
		return ""
	}

	s, ok := reg.Score(dim, in)
	if !ok {
		return fmt.Sprintf("%s: unknown dimension", dim)
	}

	threshold := 100.0
	switch dim {
	case scoring.DimLocation:
		threshold = locationPassScore
	case scoring.DimBudget:
		threshold = budgetPassScore
	case scoring.DimWorkSchedule:
		threshold = schedulePassScore
	}
	if s.Value < threshold {
		return fmt.Sprintf("%s: score %.0f below required %.0f", dim, s.Value, threshold)
	}
	return ""
}

func joinGenders(genders []profile.Gender) string {
	parts := make([]string, len(genders))
	for i, g := range genders {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}
