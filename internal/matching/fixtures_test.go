package matching

import (
	"time"

	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/profile"
	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

var fixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

type mod = func(*types.RawProfileRecord)

// record returns a complete profile record; mods adjust it per test.
func record(id string, mods ...mod) types.RawProfileRecord {
	r := types.RawProfileRecord{
		ID:           id,
		Gender:       "female",
		Age:          intPtr(28),
		Locations:    []string{"Toronto"},
		Budget:       "$1200-$1800",
		MoveInStart:  "2025-03-01",
		MoveInEnd:    "2025-03-31",
		HousingType:  "apartment",
		LivingSpace:  "privateRoom",
		Smoking:      boolPtr(false),
		HasPets:      boolPtr(false),
		WorkLocation: "remote",
		WorkSchedule: "dayShift",
		Diet:         "vegetarian",
		Hobbies:      []string{"hiking", "cooking"},
	}
	for _, m := range mods {
		m(&r)
	}
	return r
}

func normalized(id string, mods ...mod) *profile.Profile {
	p := profile.Normalize(record(id, mods...))
	return &p
}

func smoker(r *types.RawProfileRecord) { r.Smoking = boolPtr(true) }
func male(r *types.RawProfileRecord)   { r.Gender = "male" }

func wantsFemale(r *types.RawProfileRecord) {
	r.Preferences.Gender = []string{"Female"}
}

func locatedIn(places ...string) mod {
	return func(r *types.RawProfileRecord) { r.Locations = places }
}

func budget(s string) mod {
	return func(r *types.RawProfileRecord) { r.Budget = s }
}

func hobbies(tags ...string) mod {
	return func(r *types.RawProfileRecord) { r.Hobbies = tags }
}

func movingIn(start, end string) mod {
	return func(r *types.RawProfileRecord) { r.MoveInStart, r.MoveInEnd = start, end }
}

func shift(s string) mod {
	return func(r *types.RawProfileRecord) { r.WorkSchedule = s }
}

func housing(s string) mod {
	return func(r *types.RawProfileRecord) { r.HousingType = s }
}

// preferredWeights scores a typical mix of soft dimensions.
func preferredWeights() types.WeightConfig {
	return types.WeightConfig{
		"budget":       {Weight: 3, Importance: types.ImportancePreferred},
		"location":     {Weight: 3, Importance: types.ImportancePreferred},
		"smoking":      {Weight: 2, Importance: types.ImportancePreferred},
		"pets":         {Weight: 1, Importance: types.ImportancePreferred},
		"workSchedule": {Weight: 2, Importance: types.ImportancePreferred},
		"hobbies":      {Weight: 1, Importance: types.ImportancePreferred},
	}
}

func withRequired(w types.WeightConfig, dims ...string) types.WeightConfig {
	for _, d := range dims {
		w[d] = types.WeightEntry{Weight: 1, Importance: types.ImportanceRequired}
	}
	return w
}

func newTestRanker() *Ranker {
	return &Ranker{
		Registry: scoring.NewRegistry(scoring.DefaultConstants()),
		Workers:  4,
		Clock:    func() time.Time { return fixedNow },
		Logger:   logctx.Discard(),
	}
}
