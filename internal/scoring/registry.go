package scoring

import (
	"sort"
	"time"

	"github.com/jonathan/roommate-matcher/internal/profile"
)

// Input is what a registered scorer sees. Now is injected by the caller so
// scoring stays deterministic.
type Input struct {
	User      *profile.Profile
	Candidate *profile.Profile
	Now       time.Time
}

// Func scores one dimension for a user/candidate pair.
type Func func(in Input, k Constants) DimensionScore

// Registry maps dimensions to scorers. It is read-only after construction
// and safe for concurrent use.
type Registry struct {
	constants Constants
	scorers   map[Dimension]Func
	order     []Dimension
}

// NewRegistry returns a registry with every built-in dimension registered.
func NewRegistry(k Constants) *Registry {
	r := &Registry{constants: k, scorers: make(map[Dimension]Func, len(AllDimensions))}
	for _, d := range AllDimensions {
		r.register(d, builtins[d])
	}
	return r
}

// With returns a copy of r with f registered under d, replacing any
// existing scorer for that dimension.
func (r *Registry) With(d Dimension, f Func) *Registry {
	next := &Registry{
		constants: r.constants,
		scorers:   make(map[Dimension]Func, len(r.scorers)+1),
		order:     append([]Dimension(nil), r.order...),
	}
	for dim, fn := range r.scorers {
		next.scorers[dim] = fn
	}
	next.register(d, f)
	return next
}

func (r *Registry) register(d Dimension, f Func) {
	if _, ok := r.scorers[d]; !ok {
		r.order = append(r.order, d)
	}
	r.scorers[d] = f
}

// Has reports whether d has a scorer.
func (r *Registry) Has(d Dimension) bool {
	_, ok := r.scorers[d]
	return ok
}

// Dimensions returns the registered dimensions in registration order.
func (r *Registry) Dimensions() []Dimension {
	return append([]Dimension(nil), r.order...)
}

// Names returns the registered dimension names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, d := range r.order {
		names = append(names, string(d))
	}
	sort.Strings(names)
	return names
}

// Score runs the scorer for d. The result is clamped to [0, 100].
func (r *Registry) Score(d Dimension, in Input) (DimensionScore, bool) {
	f, ok := r.scorers[d]
	if !ok {
		return DimensionScore{}, false
	}
	s := f(in, r.constants)
	s.Dimension = d
	s.Value = Clamp(s.Value)
	return s, true
}

// ScoreAll scores every registered dimension in registration order.
func (r *Registry) ScoreAll(in Input) []DimensionScore {
	scores := make([]DimensionScore, 0, len(r.order))
	for _, d := range r.order {
		s, _ := r.Score(d, in)
		scores = append(scores, s)
	}
	return scores
}

// HobbyTags returns the tags a user is matched on: declared hobby
// preferences when present, otherwise the user's own hobbies.
func HobbyTags(p *profile.Profile) []string {
	if len(p.Preferences.Hobbies) > 0 {
		return p.Preferences.Hobbies
	}
	return p.Hobbies
}

var builtins = map[Dimension]Func{
	DimBudget: func(in Input, k Constants) DimensionScore {
		return Budget(in.User.Budget, in.Candidate.Budget, k)
	},
	DimLocation: func(in Input, k Constants) DimensionScore {
		return Location(in.User.Locations, in.Candidate.Locations, k)
	},
	DimHousingType: func(in Input, k Constants) DimensionScore {
		return HousingType(in.User.Housing.Type, in.Candidate.Housing.Type, k)
	},
	DimLivingSpace: func(in Input, k Constants) DimensionScore {
		return LivingSpace(in.User.Housing.LivingSpace, in.Candidate.Housing.LivingSpace, k)
	},
	DimSmoking: func(in Input, k Constants) DimensionScore {
		return Smoking(in.User.Habits.Smoking, in.Candidate.Habits.Smoking, k)
	},
	DimPets: func(in Input, k Constants) DimensionScore {
		return Pets(in.User.Habits.HasPets, in.Candidate.Habits.HasPets, k)
	},
	DimWorkSchedule: func(in Input, k Constants) DimensionScore {
		return WorkSchedule(in.User.Work.Schedule, in.Candidate.Work.Schedule, in.User.Preferences.WorkSchedule, k)
	},
	DimWorkLocation: func(in Input, k Constants) DimensionScore {
		return WorkLocation(in.User.Work.Location, in.Candidate.Work.Location, k)
	},
	DimDiet: func(in Input, k Constants) DimensionScore {
		return Diet(in.User.Diet, in.Candidate.Diet, in.User.DietOther, in.Candidate.DietOther, k)
	},
	DimHobbies: func(in Input, k Constants) DimensionScore {
		return Hobbies(HobbyTags(in.User), in.Candidate.Hobbies, k)
	},
	DimGender: func(in Input, _ Constants) DimensionScore {
		return Gender(in.User.Preferences, in.Candidate.Identity.Gender)
	},
	DimNationality: func(in Input, _ Constants) DimensionScore {
		return Demographic(DimNationality, in.User.Preferences.Nationality, in.User.Nationality, in.Candidate.Nationality)
	},
	DimLanguage: func(in Input, _ Constants) DimensionScore {
		return Demographic(DimLanguage, in.User.Preferences.Language, in.User.Language, in.Candidate.Language)
	},
	DimEthnicityReligion: func(in Input, _ Constants) DimensionScore {
		return Demographic(DimEthnicityReligion, in.User.Preferences.EthnicityReligion, in.User.EthnicityReligion, in.Candidate.EthnicityReligion)
	},
	DimOccupation: func(in Input, _ Constants) DimensionScore {
		return Demographic(DimOccupation, in.User.Preferences.Occupation, in.User.Occupation, in.Candidate.Occupation)
	},
	DimMoveIn: func(in Input, k Constants) DimensionScore {
		return MoveIn(in.User.MoveIn, in.Candidate.MoveIn, in.Now, k)
	},
}
