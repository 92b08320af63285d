package matching

import (
	"fmt"
	"strings"

	"github.com/jonathan/roommate-matcher/internal/profile"
	"github.com/jonathan/roommate-matcher/internal/scoring"
)

// MaxReasons caps the reasons attached to a match.
const MaxReasons = 4

const (
	locationReasonScore = 90
	budgetReasonScore   = 80
	scheduleReasonScore = 90
	hobbyReasonScore    = 70
	maxHobbiesInReason  = 3
)

// parityDimensions contribute a reason only on a perfect score, in this order.
var parityDimensions = []scoring.Dimension{
	scoring.DimSmoking,
	scoring.DimPets,
	scoring.DimHousingType,
	scoring.DimLivingSpace,
	scoring.DimWorkLocation,
	scoring.DimDiet,
}

// Explain returns up to MaxReasons human-readable reasons, in fixed priority
// order: location, budget, schedule, lifestyle parity, then shared hobbies.
func Explain(scores []scoring.DimensionScore, user, cand *profile.Profile) []string {
	byDim := make(map[scoring.Dimension]scoring.DimensionScore, len(scores))
	for _, s := range scores {
		byDim[s.Dimension] = s
	}

	reasons := make([]string, 0, MaxReasons)
	add := func(r string) {
		if r != "" && len(reasons) < MaxReasons {
			reasons = append(reasons, r)
		}
	}

	if s, ok := byDim[scoring.DimLocation]; ok && s.Value >= locationReasonScore {
		add(locationReason(user, cand))
	}
	if s, ok := byDim[scoring.DimBudget]; ok && s.Value >= budgetReasonScore {
		add(budgetReason(cand))
	}
	if s, ok := byDim[scoring.DimWorkSchedule]; ok && s.Value >= scheduleReasonScore {
		add(scheduleReason(s, cand))
	}
	for _, dim := range parityDimensions {
		if s, ok := byDim[dim]; ok && s.Value == 100 {
			add(parityReason(dim, user))
		}
	}
	if s, ok := byDim[scoring.DimHobbies]; ok && s.Value >= hobbyReasonScore {
		add(hobbyReason(user, cand))
	}
	return reasons
}

func locationReason(user, cand *profile.Profile) string {
	for _, u := range user.Locations {
		for _, c := range cand.Locations {
			if u.Key == c.Key {
				return fmt.Sprintf("Both looking in %s", u.Display)
			}
		}
	}
	return "Looking in the same area"
}

func budgetReason(cand *profile.Profile) string {
	if cand.Budget.IsUnbounded() {
		return "Similar budget range"
	}
	if cand.Budget.Min == cand.Budget.Max {
		return fmt.Sprintf("Budget fits ($%.0f)", cand.Budget.Min)
	}
	return fmt.Sprintf("Similar budget range ($%.0f-$%.0f)", cand.Budget.Min, cand.Budget.Max)
}

func scheduleReason(s scoring.DimensionScore, cand *profile.Profile) string {
	if s.Reason == scoring.ReasonOppositeShift {
		return "Opposite work schedules, so more space at home"
	}
	return fmt.Sprintf("Same work schedule (%s)", shiftLabel(cand.Work.Schedule))
}

func shiftLabel(s profile.WorkSchedule) string {
	switch s {
	case profile.ScheduleDay:
		return "day shift"
	case profile.ScheduleAfternoon:
		return "afternoon shift"
	case profile.ScheduleOvernight:
		return "overnight shift"
	}
	return string(s)
}

func parityReason(dim scoring.Dimension, user *profile.Profile) string {
	switch dim {
	case scoring.DimSmoking:
		if user.Habits.Smoking {
			return "Both smokers"
		}
		return "Both non-smokers"
	case scoring.DimPets:
		if user.Habits.HasPets {
			return "Both have pets"
		}
		return "Neither has pets"
	case scoring.DimHousingType:
		return fmt.Sprintf("Both want a %s", user.Housing.Type)
	case scoring.DimLivingSpace:
		return "Same living space preference"
	case scoring.DimWorkLocation:
		switch user.Work.Location {
		case profile.WorkLocationRemote:
			return "Both work remotely"
		case profile.WorkLocationOffice:
			return "Both work in an office"
		}
		return "Both work hybrid"
	case scoring.DimDiet:
		return "Compatible diets"
	}
	return ""
}

func hobbyReason(user, cand *profile.Profile) string {
	shared := scoring.SharedHobbies(scoring.HobbyTags(user), cand.Hobbies)
	if len(shared) == 0 {
		return ""
	}
	if len(shared) > maxHobbiesInReason {
		shared = shared[:maxHobbiesInReason]
	}
	return fmt.Sprintf("Shared interests: %s", strings.Join(shared, ", "))
}
