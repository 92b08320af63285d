// Package matching gates, scores, explains and ranks candidates for a user.
package matching

import (
	"math"
	"sort"

	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// ValidateWeights checks weights against the dimensions reg knows. It is
// called before any candidate is touched so a bad config fails up front.
func ValidateWeights(weights types.WeightConfig, reg *scoring.Registry) error {
	if len(weights) == 0 {
		return &ConfigurationError{Message: "weight configuration is empty"}
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var preferred float64
	for _, name := range names {
		entry := weights[name]
		switch {
		case !reg.Has(scoring.Dimension(name)):
			return &ConfigurationError{Dimension: name, Message: "unknown dimension"}
		case math.IsNaN(entry.Weight) || math.IsInf(entry.Weight, 0):
			return &ConfigurationError{Dimension: name, Message: "weight must be finite"}
		case entry.Weight < 0:
			return &ConfigurationError{Dimension: name, Message: "weight must be non-negative"}
		case entry.Importance != types.ImportanceRequired && entry.Importance != types.ImportancePreferred:
			return &ConfigurationError{Dimension: name, Message: "importance must be \"required\" or \"preferred\""}
		}
		if entry.Importance == types.ImportancePreferred {
			preferred += entry.Weight
		}
	}

	if preferred == 0 {
		return &ConfigurationError{Message: "no preferred dimension has a positive weight"}
	}
	return nil
}

// Aggregate combines scores into a weighted average over the preferred
// dimensions present in both scores and weights. Required dimensions are
// gates and do not contribute. A zero total weight is a ConfigurationError.
func Aggregate(scores []scoring.DimensionScore, weights types.WeightConfig) (int, error) {
	var total, totalWeight float64
	for _, s := range scores {
		entry, ok := weights[string(s.Dimension)]
		if !ok || entry.Importance != types.ImportancePreferred {
			continue
		}
		total += scoring.Clamp(s.Value) * entry.Weight
		totalWeight += entry.Weight
	}

	if totalWeight <= 0 {
		return 0, &ConfigurationError{Message: "total preferred weight is zero"}
	}

	overall := int(math.Round(total / totalWeight))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	return overall, nil
}
