// Package types provides type definitions for structured data used throughout the roommate-matcher system.
package types

// RawProfileRecord is a profile as stored by the profile store (one row of the
// profiles table, decoded from its JSON column). Every field is optional; the
// profile normalizer turns it into a canonical profile.Profile.
type RawProfileRecord struct {
	ID string `json:"id"`

	Gender string `json:"gender,omitempty"`
	Age    *int   `json:"age,omitempty"`

	// Locations is the ordered list of preferred places (first = primary).
	// Location is the legacy single-place field used by older forms.
	Locations []string `json:"locations,omitempty"`
	Location  string   `json:"location,omitempty"`

	// Budget is the free-text range entered in forms, e.g. "$1200-$1800".
	// BudgetMin/BudgetMax take precedence when present.
	Budget    string   `json:"budget,omitempty"`
	BudgetMin *float64 `json:"budget_min,omitempty"`
	BudgetMax *float64 `json:"budget_max,omitempty"`

	// Dates are "YYYY-MM-DD" or RFC 3339. MoveInDate is the legacy single date.
	MoveInStart string `json:"move_in_start,omitempty"`
	MoveInEnd   string `json:"move_in_end,omitempty"`
	MoveInDate  string `json:"move_in_date,omitempty"`

	HousingType string `json:"housing_type,omitempty"`
	LivingSpace string `json:"living_space,omitempty"`

	Smoking          *bool  `json:"smoking,omitempty"`
	LivesWithSmokers *bool  `json:"lives_with_smokers,omitempty"`
	HasPets          *bool  `json:"has_pets,omitempty"`
	PetType          string `json:"pet_type,omitempty"`

	WorkLocation string `json:"work_location,omitempty"`
	WorkSchedule string `json:"work_schedule,omitempty"`

	Diet      string `json:"diet,omitempty"`
	DietOther string `json:"diet_other,omitempty"`

	Hobbies []string `json:"hobbies,omitempty"`

	Nationality       string `json:"nationality,omitempty"`
	Language          string `json:"language,omitempty"`
	EthnicityReligion string `json:"ethnicity_religion,omitempty"`
	Occupation        string `json:"occupation,omitempty"`

	Preferences RawPreferences `json:"preferences"`

	// Malformed lists the JSON keys whose values could not be decoded and
	// were left unset. It is filled by UnmarshalJSON.
	Malformed []string `json:"-"`
}

// RawPreferences holds what the user is looking for in a roommate or co-owner.
type RawPreferences struct {
	Gender []string `json:"gender,omitempty"`

	Nationality       string `json:"nationality,omitempty"`
	NationalityCustom string `json:"nationality_custom,omitempty"`

	Language       string `json:"language,omitempty"`
	LanguageCustom string `json:"language_custom,omitempty"`

	EthnicityReligion       string `json:"ethnicity_religion,omitempty"`
	EthnicityReligionCustom string `json:"ethnicity_religion_custom,omitempty"`

	Occupation       string `json:"occupation,omitempty"`
	OccupationCustom string `json:"occupation_custom,omitempty"`

	WorkSchedule string   `json:"work_schedule,omitempty"`
	Hobbies      []string `json:"hobbies,omitempty"`

	Malformed []string `json:"-"`
}
