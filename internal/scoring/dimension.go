// Package scoring provides per-dimension compatibility scorers and the
// registry that maps dimension names to them.
package scoring

import "math"

// Dimension names one axis of compatibility.
type Dimension string

const (
	DimBudget            Dimension = "budget"
	DimLocation          Dimension = "location"
	DimHousingType       Dimension = "housingType"
	DimLivingSpace       Dimension = "livingSpace"
	DimSmoking           Dimension = "smoking"
	DimPets              Dimension = "pets"
	DimWorkSchedule      Dimension = "workSchedule"
	DimWorkLocation      Dimension = "workLocation"
	DimDiet              Dimension = "diet"
	DimHobbies           Dimension = "hobbies"
	DimGender            Dimension = "gender"
	DimNationality       Dimension = "nationality"
	DimLanguage          Dimension = "language"
	DimEthnicityReligion Dimension = "ethnicityReligion"
	DimOccupation        Dimension = "occupation"
	DimMoveIn            Dimension = "moveIn"
)

// AllDimensions lists the built-in dimensions in evaluation order.
var AllDimensions = []Dimension{
	DimBudget,
	DimLocation,
	DimHousingType,
	DimLivingSpace,
	DimSmoking,
	DimPets,
	DimWorkSchedule,
	DimWorkLocation,
	DimDiet,
	DimHobbies,
	DimGender,
	DimNationality,
	DimLanguage,
	DimEthnicityReligion,
	DimOccupation,
	DimMoveIn,
}

// DimensionScore is the outcome of one scorer. Value is in [0, 100];
// Reason is a short machine-readable token explaining the value.
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Value     float64   `json:"value"`
	Reason    string    `json:"reason,omitempty"`
}

// Reason tokens.
const (
	ReasonExactMatch     = "exact_match"
	ReasonContainment    = "containment"
	ReasonContained      = "contained"
	ReasonOverlap        = "overlap"
	ReasonNoOverlap      = "no_overlap"
	ReasonNoMatch        = "no_match"
	ReasonMismatch       = "mismatch"
	ReasonUnknown        = "unknown"
	ReasonSame           = "same"
	ReasonCandidateSmoke = "candidate_smokes"
	ReasonUserSmokes     = "user_smokes"
	ReasonSameShift      = "same_shift"
	ReasonPreferredShift = "preferred_shift"
	ReasonOppositeShift  = "opposite_shift"
	ReasonOtherShift     = "different_shift"
	ReasonShared         = "shared"
	ReasonNoneShared     = "none_shared"
	ReasonNoPreference   = "no_preference"
	ReasonAccepted       = "accepted"
	ReasonNotAccepted    = "not_accepted"
	ReasonDifferent      = "different"
	ReasonStale          = "stale"
	ReasonNearGap        = "near_gap"
	ReasonFarGap         = "far_gap"
)

// Clamp limits v to [0, 100]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
