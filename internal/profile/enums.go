package profile

import (
	"strings"
	"unicode"
)

// Gender of a profile.
type Gender string

const (
	GenderUnknown   Gender = "unknown"
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "nonBinary"
	GenderOther     Gender = "other"
)

// HousingType is the kind of dwelling.
type HousingType string

const (
	HousingUnknown   HousingType = "unknown"
	HousingHouse     HousingType = "house"
	HousingApartment HousingType = "apartment"
)

// LivingSpace is the share of the dwelling.
type LivingSpace string

const (
	LivingSpaceUnknown     LivingSpace = "unknown"
	LivingSpacePrivateRoom LivingSpace = "privateRoom"
	LivingSpaceSharedRoom  LivingSpace = "sharedRoom"
	LivingSpaceEntirePlace LivingSpace = "entirePlace"
)

// WorkLocation is where the person works.
type WorkLocation string

const (
	WorkLocationUnknown WorkLocation = "unknown"
	WorkLocationRemote  WorkLocation = "remote"
	WorkLocationOffice  WorkLocation = "office"
	WorkLocationHybrid  WorkLocation = "hybrid"
)

// WorkSchedule is the shift the person works.
type WorkSchedule string

const (
	ScheduleUnknown   WorkSchedule = "unknown"
	ScheduleDay       WorkSchedule = "dayShift"
	ScheduleAfternoon WorkSchedule = "afternoonShift"
	ScheduleOvernight WorkSchedule = "overnightShift"
)

// Diet is a dietary practice.
type Diet string

const (
	DietUnknown      Diet = "unknown"
	DietVegetarian   Diet = "vegetarian"
	DietHalal        Diet = "halal"
	DietKosher       Diet = "kosher"
	DietNoPreference Diet = "noPreference"
	DietOther        Diet = "other"
)

// PreferenceMode discriminates demographic preferences.
type PreferenceMode string

const (
	ModeUnknown      PreferenceMode = "unknown"
	ModeNoPreference PreferenceMode = "noPreference"
	ModeSame         PreferenceMode = "same"
	ModeCustom       PreferenceMode = "custom"
)

// SchedulePreference is the user's wish about the candidate's shift.
type SchedulePreference string

const (
	SchedulePrefUnknown      SchedulePreference = "unknown"
	SchedulePrefNoPreference SchedulePreference = "noPreference"
	SchedulePrefSame         SchedulePreference = "same"
	SchedulePrefOpposite     SchedulePreference = "opposite"
)

// enumKey folds user input to lower-case letters and digits so that
// "Private Room", "private_room" and "privateRoom" compare equal.
func enumKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var genderAliases = map[string]Gender{
	"male":      GenderMale,
	"man":       GenderMale,
	"m":         GenderMale,
	"female":    GenderFemale,
	"woman":     GenderFemale,
	"f":         GenderFemale,
	"nonbinary": GenderNonBinary,
	"enby":      GenderNonBinary,
	"other":     GenderOther,
}

var housingAliases = map[string]HousingType{
	"house":     HousingHouse,
	"apartment": HousingApartment,
	"apt":       HousingApartment,
	"condo":     HousingApartment,
	"flat":      HousingApartment,
}

var livingSpaceAliases = map[string]LivingSpace{
	"privateroom": LivingSpacePrivateRoom,
	"private":     LivingSpacePrivateRoom,
	"sharedroom":  LivingSpaceSharedRoom,
	"shared":      LivingSpaceSharedRoom,
	"entireplace": LivingSpaceEntirePlace,
	"entire":      LivingSpaceEntirePlace,
	"wholeplace":  LivingSpaceEntirePlace,
}

var workLocationAliases = map[string]WorkLocation{
	"remote": WorkLocationRemote,
	"wfh":    WorkLocationRemote,
	"office": WorkLocationOffice,
	"onsite": WorkLocationOffice,
	"hybrid": WorkLocationHybrid,
}

var scheduleAliases = map[string]WorkSchedule{
	"dayshift":       ScheduleDay,
	"day":            ScheduleDay,
	"afternoonshift": ScheduleAfternoon,
	"afternoon":      ScheduleAfternoon,
	"eveningshift":   ScheduleAfternoon,
	"overnightshift": ScheduleOvernight,
	"overnight":      ScheduleOvernight,
	"nightshift":     ScheduleOvernight,
	"night":          ScheduleOvernight,
}

var dietAliases = map[string]Diet{
	"vegetarian":   DietVegetarian,
	"halal":        DietHalal,
	"kosher":       DietKosher,
	"nopreference": DietNoPreference,
	"none":         DietNoPreference,
	"other":        DietOther,
}

// sameCountry and sameLanguage are legacy spellings of "same";
// specific and other are legacy spellings of "custom".
var modeAliases = map[string]PreferenceMode{
	"nopreference": ModeNoPreference,
	"any":          ModeNoPreference,
	"same":         ModeSame,
	"samecountry":  ModeSame,
	"samelanguage": ModeSame,
	"custom":       ModeCustom,
	"specific":     ModeCustom,
	"other":        ModeCustom,
}

var schedulePrefAliases = map[string]SchedulePreference{
	"nopreference":  SchedulePrefNoPreference,
	"any":           SchedulePrefNoPreference,
	"same":          SchedulePrefSame,
	"sameschedule":  SchedulePrefSame,
	"opposite":      SchedulePrefOpposite,
	"oppositeshift": SchedulePrefOpposite,
}

// parseEnum looks raw up in aliases. Empty input returns (unknown, true) so
// that missing optional fields are not reported as anomalies; unrecognized
// non-empty input returns (unknown, false).
func parseEnum[T ~string](raw string, aliases map[string]T, unknown T) (T, bool) {
	key := enumKey(raw)
	if key == "" {
		return unknown, true
	}
	if v, ok := aliases[key]; ok {
		return v, true
	}
	return unknown, false
}
