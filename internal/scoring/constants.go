package scoring

import "fmt"

// Constants are the product-tuned values used by the scorers. They are
// configurable rather than derived; DefaultConstants reproduces the current
// product behavior.
type Constants struct {
	// NeutralScore is used whenever either side of a comparison is missing.
	NeutralScore float64 `json:"neutral_score" toml:"neutral_score"`

	LocationContainment float64 `json:"location_containment" toml:"location_containment"`
	BudgetFloor         float64 `json:"budget_floor" toml:"budget_floor"`
	HousingMismatch     float64 `json:"housing_mismatch" toml:"housing_mismatch"`

	// Smoking is asymmetric: a smoker tolerates a non-smoker, not vice versa.
	SmokerWithNonSmoker float64 `json:"smoker_with_non_smoker" toml:"smoker_with_non_smoker"`
	NonSmokerWithSmoker float64 `json:"non_smoker_with_smoker" toml:"non_smoker_with_smoker"`
	PetMismatch         float64 `json:"pet_mismatch" toml:"pet_mismatch"`

	SameShift       float64 `json:"same_shift" toml:"same_shift"`
	OppositeShift   float64 `json:"opposite_shift" toml:"opposite_shift"`
	ScheduleDefault float64 `json:"schedule_default" toml:"schedule_default"`

	HobbyBonus   float64 `json:"hobby_bonus" toml:"hobby_bonus"`
	HobbyNeutral float64 `json:"hobby_neutral" toml:"hobby_neutral"`

	DietMismatch float64 `json:"diet_mismatch" toml:"diet_mismatch"`

	MoveInGraceDays int     `json:"move_in_grace_days" toml:"move_in_grace_days"`
	MoveInNearGap   float64 `json:"move_in_near_gap" toml:"move_in_near_gap"`
	MoveInFarGap    float64 `json:"move_in_far_gap" toml:"move_in_far_gap"`
}

// DefaultConstants returns the values the product ships with.
func DefaultConstants() Constants {
	return Constants{
		NeutralScore:        50,
		LocationContainment: 75,
		BudgetFloor:         10,
		HousingMismatch:     50,
		SmokerWithNonSmoker: 70,
		NonSmokerWithSmoker: 0,
		PetMismatch:         60,
		SameShift:           80,
		OppositeShift:       100,
		ScheduleDefault:     50,
		HobbyBonus:          30,
		HobbyNeutral:        50,
		DietMismatch:        50,
		MoveInGraceDays:     30,
		MoveInNearGap:       70,
		MoveInFarGap:        30,
	}
}

// Validate checks that every score constant is within [0, 100].
func (k Constants) Validate() error {
	scores := map[string]float64{
		"neutral_score":          k.NeutralScore,
		"location_containment":   k.LocationContainment,
		"budget_floor":           k.BudgetFloor,
		"housing_mismatch":       k.HousingMismatch,
		"smoker_with_non_smoker": k.SmokerWithNonSmoker,
		"non_smoker_with_smoker": k.NonSmokerWithSmoker,
		"pet_mismatch":           k.PetMismatch,
		"same_shift":             k.SameShift,
		"opposite_shift":         k.OppositeShift,
		"schedule_default":       k.ScheduleDefault,
		"hobby_bonus":            k.HobbyBonus,
		"hobby_neutral":          k.HobbyNeutral,
		"diet_mismatch":          k.DietMismatch,
		"move_in_near_gap":       k.MoveInNearGap,
		"move_in_far_gap":        k.MoveInFarGap,
	}
	for name, v := range scores {
		if v < 0 || v > 100 {
			return fmt.Errorf("scoring constant %s must be within [0, 100], got %v", name, v)
		}
	}
	if k.MoveInGraceDays < 0 {
		return fmt.Errorf("scoring constant move_in_grace_days must be non-negative, got %d", k.MoveInGraceDays)
	}
	return nil
}
