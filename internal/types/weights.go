package types

import (
	"sort"

	"github.com/go-playground/validator/v10"
)

// Importance values for a WeightEntry.
const (
	ImportanceRequired  = "required"
	ImportancePreferred = "preferred"
)

// WeightConfig maps a dimension name to how much it matters to the requesting user.
type WeightConfig map[string]WeightEntry

// WeightEntry is the weight and importance of one dimension.
type WeightEntry struct {
	Weight     float64 `json:"weight" toml:"weight" validate:"gte=0"`
	Importance string  `json:"importance" toml:"importance" validate:"required,oneof=required preferred"`
}

// IsRequired reports whether the dimension is a hard constraint.
func (e WeightEntry) IsRequired() bool {
	return e.Importance == ImportanceRequired
}

// Validate validates every entry of the WeightConfig using the validator.
// It does not check dimension names or total weight; see matching.ValidateWeights.
func (w WeightConfig) Validate() error {
	validate := validator.New()
	for _, entry := range w {
		if err := validate.Struct(entry); err != nil {
			return err
		}
	}
	return nil
}

// Required returns the names of all dimensions marked required, sorted.
func (w WeightConfig) Required() []string {
	var names []string
	for name, entry := range w {
		if entry.IsRequired() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultWeights is the preset used when a user has not saved a weight configuration.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		"location":     {Weight: 3, Importance: ImportancePreferred},
		"budget":       {Weight: 3, Importance: ImportancePreferred},
		"moveIn":       {Weight: 2, Importance: ImportancePreferred},
		"smoking":      {Weight: 2, Importance: ImportancePreferred},
		"workSchedule": {Weight: 2, Importance: ImportancePreferred},
		"pets":         {Weight: 1, Importance: ImportancePreferred},
		"housingType":  {Weight: 1, Importance: ImportancePreferred},
		"livingSpace":  {Weight: 1, Importance: ImportancePreferred},
		"hobbies":      {Weight: 1, Importance: ImportancePreferred},
	}
}
