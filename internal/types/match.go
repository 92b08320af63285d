package types

import (
	"github.com/go-playground/validator/v10"
)

// Defaults applied by the ranker when RankOptions leaves a field unset.
const (
	DefaultMinScore   = 60
	DefaultMaxResults = 10
)

// MatchResult is one ranked candidate handed back to presentation code.
type MatchResult struct {
	CandidateID        string             `json:"candidate_id"`
	OverallScore       int                `json:"overall_score"`
	Reasons            []string           `json:"reasons"`
	Breakdown          map[string]float64 `json:"breakdown"`
	FailedRequirements []string           `json:"failed_requirements"`
}

// RankOptions controls filtering and truncation of a ranking request.
// A nil MinScore means DefaultMinScore; a zero MaxResults means DefaultMaxResults.
type RankOptions struct {
	MinScore   *int   `json:"min_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxResults int    `json:"max_results,omitempty" validate:"gte=0,lte=500"`
	ExcludeID  string `json:"exclude_id,omitempty"`
}

// EffectiveMinScore returns MinScore or the default.
func (o RankOptions) EffectiveMinScore() int {
	if o.MinScore == nil {
		return DefaultMinScore
	}
	return *o.MinScore
}

// EffectiveMaxResults returns MaxResults or the default.
func (o RankOptions) EffectiveMaxResults() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}

// Validate validates the RankOptions using the validator.
func (o *RankOptions) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}

// RankRequest is the body of a stateless ranking request.
type RankRequest struct {
	User       RawProfileRecord   `json:"user"`
	Weights    WeightConfig       `json:"weights" validate:"required,min=1"`
	Candidates []RawProfileRecord `json:"candidates" validate:"max=5000"`
	Options    RankOptions        `json:"options"`
}

// Validate validates the RankRequest, including every weight entry and the options.
func (r *RankRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.Weights.Validate(); err != nil {
		return err
	}
	return r.Options.Validate()
}

// RankResponse wraps ranked matches for JSON output.
type RankResponse struct {
	Matches []MatchResult `json:"matches"`
	Stats   RankStats     `json:"stats"`
}

// RankStats summarizes what happened to each candidate in a ranking request.
type RankStats struct {
	Evaluated      int `json:"evaluated"`
	Excluded       int `json:"excluded"`
	Dropped        int `json:"dropped"`
	BelowThreshold int `json:"below_threshold"`
	Returned       int `json:"returned"`
}
