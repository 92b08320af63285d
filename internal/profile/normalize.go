package profile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/roommate-matcher/internal/types"
)

// Anomaly records a malformed or missing field that was replaced with a neutral value.
type Anomaly struct {
	Field   string
	Value   string
	Message string
}

func (a Anomaly) String() string {
	if a.Value == "" {
		return fmt.Sprintf("%s: %s", a.Field, a.Message)
	}
	return fmt.Sprintf("%s: %s (%q)", a.Field, a.Message, a.Value)
}

// budgetPattern accepts "$1200-$1800", "1200-1800", "$1500" and similar.
var budgetPattern = regexp.MustCompile(`\$?(\d+)-?\$?(\d+)?`)

// budgetNoise is stripped before matching so "$1,200 - $1,800" parses.
var budgetNoise = strings.NewReplacer(",", "", " ", "", "\t", "")

const minAdultAge = 18

// Normalize converts a raw record into a canonical Profile. It never fails:
// missing or malformed fields fall back to neutral values and are listed in
// Profile.Anomalies.
func Normalize(raw types.RawProfileRecord) Profile {
	n := normalizer{}
	p := Profile{ID: strings.TrimSpace(raw.ID)}

	for _, key := range raw.Malformed {
		n.note(key, "", "malformed value ignored")
	}
	for _, key := range raw.Preferences.Malformed {
		n.note("preferences."+key, "", "malformed value ignored")
	}

	p.Identity = n.identity(raw)
	p.Locations = n.locations(raw)
	p.Budget = n.budget(raw)
	p.MoveIn = n.moveIn(raw)

	p.Housing.Type = enumField(&n, "housing_type", raw.HousingType, housingAliases, HousingUnknown)
	p.Housing.LivingSpace = enumField(&n, "living_space", raw.LivingSpace, livingSpaceAliases, LivingSpaceUnknown)

	p.Habits = Habits{
		Smoking:          n.boolean("smoking", raw.Smoking),
		LivesWithSmokers: deref(raw.LivesWithSmokers),
		HasPets:          n.boolean("has_pets", raw.HasPets),
		PetType:          strings.TrimSpace(raw.PetType),
	}

	p.Work.Location = enumField(&n, "work_location", raw.WorkLocation, workLocationAliases, WorkLocationUnknown)
	p.Work.Schedule = enumField(&n, "work_schedule", raw.WorkSchedule, scheduleAliases, ScheduleUnknown)

	p.Diet = enumField(&n, "diet", raw.Diet, dietAliases, DietUnknown)
	if p.Diet == DietOther {
		p.DietOther = strings.TrimSpace(raw.DietOther)
	}

	p.Hobbies = cleanTags(raw.Hobbies)

	p.Nationality = strings.TrimSpace(raw.Nationality)
	p.Language = strings.TrimSpace(raw.Language)
	p.EthnicityReligion = strings.TrimSpace(raw.EthnicityReligion)
	p.Occupation = strings.TrimSpace(raw.Occupation)

	p.Preferences = n.preferences(raw.Preferences)
	p.Anomalies = n.anomalies
	return p
}

type normalizer struct {
	anomalies []Anomaly
}

func (n *normalizer) note(field, value, message string) {
	n.anomalies = append(n.anomalies, Anomaly{Field: field, Value: value, Message: message})
}

func (n *normalizer) identity(raw types.RawProfileRecord) Identity {
	id := Identity{
		Gender: enumField(n, "gender", raw.Gender, genderAliases, GenderUnknown),
	}
	if strings.TrimSpace(raw.Gender) == "" {
		n.note("gender", "", "missing")
	}
	switch {
	case raw.Age == nil:
		n.note("age", "", "missing")
	case *raw.Age < minAdultAge:
		n.note("age", strconv.Itoa(*raw.Age), "below minimum age")
	default:
		id.Age = *raw.Age
	}
	return id
}

func (n *normalizer) locations(raw types.RawProfileRecord) []Place {
	inputs := raw.Locations
	if len(inputs) == 0 && strings.TrimSpace(raw.Location) != "" {
		inputs = []string{raw.Location}
	}

	places := make([]Place, 0, len(inputs))
	for _, loc := range inputs {
		place := NewPlace(loc)
		if place.Key == "" {
			continue
		}
		if len(places) == MaxLocations {
			n.note("locations", strconv.Itoa(len(inputs)), fmt.Sprintf("truncated to %d entries", MaxLocations))
			break
		}
		places = append(places, place)
	}
	return places
}

func (n *normalizer) budget(raw types.RawProfileRecord) Range {
	if raw.BudgetMin != nil || raw.BudgetMax != nil {
		lo, hi := deref(raw.BudgetMin), deref(raw.BudgetMax)
		if raw.BudgetMin == nil {
			lo = hi
		}
		if raw.BudgetMax == nil {
			hi = lo
		}
		if lo < 0 || hi < 0 {
			n.note("budget", fmt.Sprintf("%v-%v", lo, hi), "negative bound")
			return UnknownBudget
		}
		return orderedRange(lo, hi)
	}

	if strings.TrimSpace(raw.Budget) == "" {
		n.note("budget", "", "missing")
		return UnknownBudget
	}

	r, ok := ParseBudget(raw.Budget)
	if !ok {
		n.note("budget", raw.Budget, "unparseable range")
		return UnknownBudget
	}
	return r
}

// ParseBudget parses a free-text range such as "$1200-$1800". A single
// number is both min and max. Bounds are swapped if given in reverse.
func ParseBudget(s string) (Range, bool) {
	m := budgetPattern.FindStringSubmatch(budgetNoise.Replace(s))
	if m == nil {
		return UnknownBudget, false
	}
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return UnknownBudget, false
	}
	hi := lo
	if m[2] != "" {
		if hi, err = strconv.ParseFloat(m[2], 64); err != nil {
			return UnknownBudget, false
		}
	}
	return orderedRange(lo, hi), true
}

func orderedRange(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Min: a, Max: b}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func (n *normalizer) moveIn(raw types.RawProfileRecord) *DateWindow {
	startRaw, endRaw := raw.MoveInStart, raw.MoveInEnd
	if strings.TrimSpace(startRaw) == "" && strings.TrimSpace(endRaw) == "" {
		startRaw, endRaw = raw.MoveInDate, raw.MoveInDate
	}
	if strings.TrimSpace(startRaw) == "" && strings.TrimSpace(endRaw) == "" {
		return nil
	}

	start, okStart := parseDate(startRaw)
	end, okEnd := parseDate(endRaw)
	switch {
	case okStart && okEnd:
	case okStart && strings.TrimSpace(endRaw) == "":
		end = start
	case okEnd && strings.TrimSpace(startRaw) == "":
		start = end
	default:
		n.note("move_in", startRaw+".."+endRaw, "unparseable date")
		return nil
	}
	if end.Before(start) {
		start, end = end, start
	}
	return &DateWindow{Start: start, End: end}
}

func (n *normalizer) boolean(field string, v *bool) bool {
	if v == nil {
		n.note(field, "", "missing, assuming false")
		return false
	}
	return *v
}

func (n *normalizer) preferences(raw types.RawPreferences) Preferences {
	prefs := Preferences{
		Nationality:       n.demographic("preferences.nationality", raw.Nationality, raw.NationalityCustom),
		Language:          n.demographic("preferences.language", raw.Language, raw.LanguageCustom),
		EthnicityReligion: n.demographic("preferences.ethnicity_religion", raw.EthnicityReligion, raw.EthnicityReligionCustom),
		Occupation:        n.demographic("preferences.occupation", raw.Occupation, raw.OccupationCustom),
		WorkSchedule:      enumField(n, "preferences.work_schedule", raw.WorkSchedule, schedulePrefAliases, SchedulePrefUnknown),
		Hobbies:           cleanTags(raw.Hobbies),
	}

	seen := make(map[Gender]bool)
	for _, g := range raw.Gender {
		gender := enumField(n, "preferences.gender", g, genderAliases, GenderUnknown)
		if gender == GenderUnknown || seen[gender] {
			continue
		}
		seen[gender] = true
		prefs.Gender = append(prefs.Gender, gender)
	}
	return prefs
}

func (n *normalizer) demographic(field, mode, custom string) DemographicPreference {
	return DemographicPreference{
		Mode:   enumField(n, field, mode, modeAliases, ModeUnknown),
		Custom: strings.TrimSpace(custom),
	}
}

func enumField[T ~string](n *normalizer, field, raw string, aliases map[string]T, unknown T) T {
	v, ok := parseEnum(raw, aliases, unknown)
	if !ok {
		n.note(field, raw, "unrecognized value")
	}
	return v
}

// cleanTags trims tags, drops empties and case-insensitive duplicates, and keeps order.
func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		key := strings.ToLower(trimmed)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
