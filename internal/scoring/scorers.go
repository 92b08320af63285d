package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/jonathan/roommate-matcher/internal/profile"
)

// Budget scores the overlap of two budget ranges relative to the wider one.
// An unknown budget on either side is neutral. Disjoint ranges keep a small
// floor so soft scoring never excludes on its own. A fixed price inside the
// other range scores 100, not the zero-width overlap ratio.
func Budget(user, candidate profile.Range, k Constants) DimensionScore {
	if user.IsUnbounded() || candidate.IsUnbounded() {
		return DimensionScore{Dimension: DimBudget, Value: k.NeutralScore, Reason: ReasonUnknown}
	}

	lo := math.Max(user.Min, candidate.Min)
	hi := math.Min(user.Max, candidate.Max)
	if hi < lo {
		return DimensionScore{Dimension: DimBudget, Value: k.BudgetFloor, Reason: ReasonNoOverlap}
	}

	widest := math.Max(user.Width(), candidate.Width())
	overlap := hi - lo
	switch {
	case widest == 0:
		// Two fixed prices that intersect are equal.
		return DimensionScore{Dimension: DimBudget, Value: 100, Reason: ReasonExactMatch}
	case user.Width() == 0 || candidate.Width() == 0:
		// A fixed price inside the other range.
		return DimensionScore{Dimension: DimBudget, Value: 100, Reason: ReasonContained}
	case overlap == 0:
		return DimensionScore{Dimension: DimBudget, Value: k.BudgetFloor, Reason: ReasonNoOverlap}
	}
	return DimensionScore{Dimension: DimBudget, Value: Clamp(100 * overlap / widest), Reason: ReasonOverlap}
}

// MatchLocation returns the best score over every pair of places and the
// user place that produced it. An exact key match scores 100, containment in
// either direction scores the configured containment value.
func MatchLocation(user, candidate []profile.Place, k Constants) (float64, profile.Place) {
	var (
		best    float64
		matched profile.Place
	)
	for _, u := range user {
		for _, c := range candidate {
			var s float64
			switch {
			case u.Key == c.Key:
				s = 100
			case strings.Contains(u.Key, c.Key) || strings.Contains(c.Key, u.Key):
				s = k.LocationContainment
			}
			if s > best {
				best, matched = s, u
			}
			if best == 100 {
				return best, matched
			}
		}
	}
	return best, matched
}

// Location scores the user's preferred places against the candidate's.
func Location(user, candidate []profile.Place, k Constants) DimensionScore {
	if len(user) == 0 || len(candidate) == 0 {
		return DimensionScore{Dimension: DimLocation, Value: k.NeutralScore, Reason: ReasonUnknown}
	}
	score, _ := MatchLocation(user, candidate, k)
	switch {
	case score == 100:
		return DimensionScore{Dimension: DimLocation, Value: 100, Reason: ReasonExactMatch}
	case score > 0:
		return DimensionScore{Dimension: DimLocation, Value: score, Reason: ReasonContainment}
	}
	return DimensionScore{Dimension: DimLocation, Value: 0, Reason: ReasonNoMatch}
}

// tolerant scores an exact match as 100 and any other known pair with the
// mismatch value.
func tolerant[T comparable](dim Dimension, user, candidate, unknown T, mismatch float64, k Constants) DimensionScore {
	switch {
	case user == unknown || candidate == unknown:
		return DimensionScore{Dimension: dim, Value: k.NeutralScore, Reason: ReasonUnknown}
	case user == candidate:
		return DimensionScore{Dimension: dim, Value: 100, Reason: ReasonExactMatch}
	}
	return DimensionScore{Dimension: dim, Value: mismatch, Reason: ReasonMismatch}
}

// HousingType is symmetric.
func HousingType(user, candidate profile.HousingType, k Constants) DimensionScore {
	return tolerant(DimHousingType, user, candidate, profile.HousingUnknown, k.HousingMismatch, k)
}

// LivingSpace is symmetric.
func LivingSpace(user, candidate profile.LivingSpace, k Constants) DimensionScore {
	return tolerant(DimLivingSpace, user, candidate, profile.LivingSpaceUnknown, k.HousingMismatch, k)
}

// WorkLocation is symmetric.
func WorkLocation(user, candidate profile.WorkLocation, k Constants) DimensionScore {
	return tolerant(DimWorkLocation, user, candidate, profile.WorkLocationUnknown, k.HousingMismatch, k)
}

// Smoking is asymmetric: a non-smoker paired with a smoker scores lower than
// a smoker paired with a non-smoker.
func Smoking(user, candidate bool, k Constants) DimensionScore {
	switch {
	case user == candidate:
		return DimensionScore{Dimension: DimSmoking, Value: 100, Reason: ReasonSame}
	case candidate:
		return DimensionScore{Dimension: DimSmoking, Value: k.NonSmokerWithSmoker, Reason: ReasonCandidateSmoke}
	}
	return DimensionScore{Dimension: DimSmoking, Value: k.SmokerWithNonSmoker, Reason: ReasonUserSmokes}
}

// Pets is symmetric.
func Pets(user, candidate bool, k Constants) DimensionScore {
	if user == candidate {
		return DimensionScore{Dimension: DimPets, Value: 100, Reason: ReasonSame}
	}
	return DimensionScore{Dimension: DimPets, Value: k.PetMismatch, Reason: ReasonMismatch}
}

type shiftPair struct {
	user, candidate profile.WorkSchedule
}

// WorkSchedule looks the shift pair up in a table built from k. A user who
// asked for the same shift gets a full score on an equal pair.
func WorkSchedule(user, candidate profile.WorkSchedule, pref profile.SchedulePreference, k Constants) DimensionScore {
	if user == profile.ScheduleUnknown || candidate == profile.ScheduleUnknown {
		return DimensionScore{Dimension: DimWorkSchedule, Value: k.NeutralScore, Reason: ReasonUnknown}
	}
	if user == candidate && pref == profile.SchedulePrefSame {
		return DimensionScore{Dimension: DimWorkSchedule, Value: 100, Reason: ReasonPreferredShift}
	}

	table := map[shiftPair]DimensionScore{
		{profile.ScheduleDay, profile.ScheduleDay}:             {Value: k.SameShift, Reason: ReasonSameShift},
		{profile.ScheduleAfternoon, profile.ScheduleAfternoon}: {Value: k.SameShift, Reason: ReasonSameShift},
		{profile.ScheduleOvernight, profile.ScheduleOvernight}: {Value: k.SameShift, Reason: ReasonSameShift},
		{profile.ScheduleDay, profile.ScheduleOvernight}:       {Value: k.OppositeShift, Reason: ReasonOppositeShift},
		{profile.ScheduleOvernight, profile.ScheduleDay}:       {Value: k.OppositeShift, Reason: ReasonOppositeShift},
	}
	s, ok := table[shiftPair{user, candidate}]
	if !ok {
		s = DimensionScore{Value: k.ScheduleDefault, Reason: ReasonOtherShift}
	}
	s.Dimension = DimWorkSchedule
	return s
}

// SharedHobbies returns the user tags that match a candidate tag, ignoring
// case, where either tag may contain the other.
func SharedHobbies(user, candidate []string) []string {
	var shared []string
	for _, u := range user {
		uk := strings.ToLower(strings.TrimSpace(u))
		if uk == "" {
			continue
		}
		for _, c := range candidate {
			ck := strings.ToLower(strings.TrimSpace(c))
			if ck == "" {
				continue
			}
			if uk == ck || strings.Contains(uk, ck) || strings.Contains(ck, uk) {
				shared = append(shared, u)
				break
			}
		}
	}
	return shared
}

// Hobbies scores tag overlap. No declared hobbies, or none in common, is
// neutral rather than a mismatch.
func Hobbies(user, candidate []string, k Constants) DimensionScore {
	if len(user) == 0 || len(candidate) == 0 {
		return DimensionScore{Dimension: DimHobbies, Value: k.HobbyNeutral, Reason: ReasonUnknown}
	}
	matches := len(SharedHobbies(user, candidate))
	if matches == 0 {
		return DimensionScore{Dimension: DimHobbies, Value: k.HobbyNeutral, Reason: ReasonNoneShared}
	}
	denom := math.Max(float64(len(user)), float64(len(candidate)))
	value := math.Min(100, 100*float64(matches)/denom+k.HobbyBonus)
	return DimensionScore{Dimension: DimHobbies, Value: value, Reason: ReasonShared}
}

// Demographic scores one of the discriminated preference dimensions
// (nationality, language, ethnicity/religion, occupation).
func Demographic(dim Dimension, pref profile.DemographicPreference, userValue, candidateValue string) DimensionScore {
	switch pref.Mode {
	case profile.ModeSame:
		if candidateValue != "" && strings.EqualFold(userValue, candidateValue) {
			return DimensionScore{Dimension: dim, Value: 100, Reason: ReasonSame}
		}
		return DimensionScore{Dimension: dim, Value: 0, Reason: ReasonDifferent}
	case profile.ModeCustom:
		if pref.Custom != "" && strings.EqualFold(pref.Custom, candidateValue) {
			return DimensionScore{Dimension: dim, Value: 100, Reason: ReasonExactMatch}
		}
		return DimensionScore{Dimension: dim, Value: 0, Reason: ReasonDifferent}
	}
	return DimensionScore{Dimension: dim, Value: 100, Reason: ReasonNoPreference}
}

// Gender checks the candidate against the user's accepted set.
func Gender(prefs profile.Preferences, candidate profile.Gender) DimensionScore {
	switch {
	case len(prefs.Gender) == 0:
		return DimensionScore{Dimension: DimGender, Value: 100, Reason: ReasonNoPreference}
	case prefs.AcceptsGender(candidate):
		return DimensionScore{Dimension: DimGender, Value: 100, Reason: ReasonAccepted}
	}
	return DimensionScore{Dimension: DimGender, Value: 0, Reason: ReasonNotAccepted}
}

// Diet treats noPreference on either side as compatible. Two "other" diets
// compare their free text.
func Diet(user, candidate profile.Diet, userOther, candidateOther string, k Constants) DimensionScore {
	switch {
	case user == profile.DietUnknown || candidate == profile.DietUnknown:
		return DimensionScore{Dimension: DimDiet, Value: k.NeutralScore, Reason: ReasonUnknown}
	case user == profile.DietNoPreference || candidate == profile.DietNoPreference:
		return DimensionScore{Dimension: DimDiet, Value: 100, Reason: ReasonNoPreference}
	case user == profile.DietOther && candidate == profile.DietOther:
		if userOther != "" && strings.EqualFold(userOther, candidateOther) {
			return DimensionScore{Dimension: DimDiet, Value: 100, Reason: ReasonExactMatch}
		}
		return DimensionScore{Dimension: DimDiet, Value: k.DietMismatch, Reason: ReasonMismatch}
	case user == candidate:
		return DimensionScore{Dimension: DimDiet, Value: 100, Reason: ReasonExactMatch}
	}
	return DimensionScore{Dimension: DimDiet, Value: k.DietMismatch, Reason: ReasonMismatch}
}

// MoveIn compares move-in windows. A window that ended before now is
// treated like a missing one.
func MoveIn(user, candidate *profile.DateWindow, now time.Time, k Constants) DimensionScore {
	if user == nil || candidate == nil {
		return DimensionScore{Dimension: DimMoveIn, Value: k.NeutralScore, Reason: ReasonUnknown}
	}
	if !now.IsZero() && (user.End.Before(now) || candidate.End.Before(now)) {
		return DimensionScore{Dimension: DimMoveIn, Value: k.NeutralScore, Reason: ReasonStale}
	}
	if user.Overlaps(*candidate) {
		return DimensionScore{Dimension: DimMoveIn, Value: 100, Reason: ReasonOverlap}
	}
	if user.GapDays(*candidate) <= k.MoveInGraceDays {
		return DimensionScore{Dimension: DimMoveIn, Value: k.MoveInNearGap, Reason: ReasonNearGap}
	}
	return DimensionScore{Dimension: DimMoveIn, Value: k.MoveInFarGap, Reason: ReasonFarGap}
}
