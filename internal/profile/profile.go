// Package profile normalizes raw profile records into canonical Profile values.
package profile

import (
	"math"
	"strings"
	"time"
)

// MaxLocations is the number of preferred places kept per profile.
const MaxLocations = 15

// Profile is the canonical, post-normalization view of a user or candidate.
type Profile struct {
	ID        string
	Identity  Identity
	Locations []Place
	Budget    Range
	MoveIn    *DateWindow
	Housing   Housing
	Habits    Habits
	Work      Work
	Diet      Diet
	DietOther string
	// Hobbies keeps insertion order for display; matching ignores order.
	Hobbies []string

	Nationality       string
	Language          string
	EthnicityReligion string
	Occupation        string

	Preferences Preferences

	// Anomalies records every fallback taken while normalizing.
	Anomalies []Anomaly
}

// Identity holds gender and age. Age is 0 when missing or below 18.
type Identity struct {
	Gender Gender
	Age    int
}

// Place is a free-text location. Key is lower-cased and trimmed for comparison.
type Place struct {
	Display string
	Key     string
}

// NewPlace builds a Place from user input.
func NewPlace(s string) Place {
	trimmed := strings.TrimSpace(s)
	return Place{Display: trimmed, Key: strings.ToLower(trimmed)}
}

// Range is a closed numeric interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// UnknownBudget is the neutral sentinel used when a budget is missing or unparseable.
var UnknownBudget = Range{Min: 0, Max: math.Inf(1)}

// IsUnbounded reports whether the range is the open-ended sentinel.
func (r Range) IsUnbounded() bool {
	return math.IsInf(r.Max, 1)
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// DateWindow is a closed date interval [Start, End].
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows share at least one day.
func (w DateWindow) Overlaps(o DateWindow) bool {
	return !w.End.Before(o.Start) && !o.End.Before(w.Start)
}

// GapDays returns the number of whole days between two non-overlapping windows.
// It returns 0 for overlapping windows.
func (w DateWindow) GapDays(o DateWindow) int {
	if w.Overlaps(o) {
		return 0
	}
	var gap time.Duration
	if w.End.Before(o.Start) {
		gap = o.Start.Sub(w.End)
	} else {
		gap = w.Start.Sub(o.End)
	}
	return int(gap.Hours() / 24)
}

// Housing is the kind of place and the share of it.
type Housing struct {
	Type        HousingType
	LivingSpace LivingSpace
}

// Habits are lifestyle booleans.
type Habits struct {
	Smoking          bool
	LivesWithSmokers bool
	HasPets          bool
	PetType          string
}

// Work describes where and when the person works.
type Work struct {
	Location WorkLocation
	Schedule WorkSchedule
}

// Preferences is what the person wants in a match.
type Preferences struct {
	// Gender is the accepted set; empty means no preference.
	Gender []Gender

	Nationality       DemographicPreference
	Language          DemographicPreference
	EthnicityReligion DemographicPreference
	Occupation        DemographicPreference

	WorkSchedule SchedulePreference
	Hobbies      []string
}

// DemographicPreference is a discriminator plus optional free text.
type DemographicPreference struct {
	Mode   PreferenceMode
	Custom string
}

// AcceptsGender reports whether g is acceptable under the gender preference.
func (p Preferences) AcceptsGender(g Gender) bool {
	if len(p.Gender) == 0 {
		return true
	}
	for _, want := range p.Gender {
		if want == g {
			return true
		}
	}
	return false
}
