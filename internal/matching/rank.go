package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/profile"
	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// Ranker evaluates a candidate pool against one user. The zero value is
// usable; a Ranker holds no per-request state and may be shared.
type Ranker struct {
	// Registry defaults to the built-in scorers with default constants.
	Registry *scoring.Registry

	// Workers bounds concurrent candidate evaluation; <= 0 means GOMAXPROCS.
	Workers int

	// Clock supplies "now" for move-in comparisons; nil means time.Now.
	Clock func() time.Time

	// Logger defaults to the logger carried by the request context.
	Logger *slog.Logger

	Metrics *Metrics
}

// Report is the full outcome of a ranking request.
type Report struct {
	Matches  []types.MatchResult `json:"matches"`
	Excluded []types.MatchResult `json:"excluded"`
	Stats    types.RankStats     `json:"stats"`
}

var errMissingID = errors.New("candidate record has no id")

type outcomeKind int

const (
	outcomeSkipped outcomeKind = iota
	outcomeExcluded
	outcomeScored
	outcomeDropped
)

type outcome struct {
	kind   outcomeKind
	result types.MatchResult
}

// RankMatches returns the qualifying matches for user, best first.
// An empty pool or no qualifying candidate yields an empty slice and nil error.
func (r *Ranker) RankMatches(ctx context.Context, user types.RawProfileRecord, weights types.WeightConfig, candidates []types.RawProfileRecord, opts types.RankOptions) ([]types.MatchResult, error) {
	report, err := r.Evaluate(ctx, user, weights, candidates, opts)
	if err != nil {
		return nil, err
	}
	return report.Matches, nil
}

// Evaluate ranks candidates and also reports who was excluded and why.
// It fails only on an invalid weight configuration or options, or when ctx
// is cancelled.
func (r *Ranker) Evaluate(ctx context.Context, user types.RawProfileRecord, weights types.WeightConfig, candidates []types.RawProfileRecord, opts types.RankOptions) (*Report, error) {
	start := time.Now()
	reg := r.registry()
	log := r.logger(ctx)

	if err := ValidateWeights(weights, reg); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rank options: %w", err)
	}

	now := r.now()
	u := profile.Normalize(user)
	r.recordAnomalies(log, u)

	outcomes := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.evaluateCandidate(log, reg, &u, candidates[i], weights, opts, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := collect(outcomes, opts)
	r.Metrics.observe(time.Since(start))
	log.Info("ranked candidates",
		slog.String("user_id", u.ID),
		slog.Int("evaluated", report.Stats.Evaluated),
		slog.Int("excluded", report.Stats.Excluded),
		slog.Int("dropped", report.Stats.Dropped),
		slog.Int("below_threshold", report.Stats.BelowThreshold),
		slog.Int("returned", report.Stats.Returned),
	)
	return report, nil
}

func (r *Ranker) evaluateCandidate(log *slog.Logger, reg *scoring.Registry, user *profile.Profile, raw types.RawProfileRecord, weights types.WeightConfig, opts types.RankOptions, now time.Time) (out outcome) {
	id := strings.TrimSpace(raw.ID)
	if (user.ID != "" && id == user.ID) || (opts.ExcludeID != "" && id == strings.TrimSpace(opts.ExcludeID)) {
		return outcome{kind: outcomeSkipped}
	}
	if id == "" {
		return r.drop(log, id, errMissingID)
	}

	defer func() {
		if p := recover(); p != nil {
			out = r.drop(log, id, fmt.Errorf("panic: %v", p))
		}
	}()

	cand := profile.Normalize(raw)
	r.recordAnomalies(log, cand)
	r.Metrics.evaluated()

	gate := CheckRequired(reg, user, &cand, weights, now)
	if !gate.Passes {
		r.Metrics.excluded(string(gate.Dimension))
		log.Debug("candidate excluded",
			slog.String("candidate_id", id),
			slog.String("dimension", string(gate.Dimension)),
		)
		return outcome{kind: outcomeExcluded, result: types.MatchResult{
			CandidateID:        id,
			Reasons:            []string{},
			Breakdown:          map[string]float64{},
			FailedRequirements: gate.Failures,
		}}
	}

	scores := reg.ScoreAll(scoring.Input{User: user, Candidate: &cand, Now: now})
	overall, err := Aggregate(scores, weights)
	if err != nil {
		return r.drop(log, id, err)
	}

	breakdown := make(map[string]float64, len(scores))
	for _, s := range scores {
		breakdown[string(s.Dimension)] = s.Value
	}
	return outcome{kind: outcomeScored, result: types.MatchResult{
		CandidateID:        id,
		OverallScore:       overall,
		Reasons:            Explain(scores, user, &cand),
		Breakdown:          breakdown,
		FailedRequirements: []string{},
	}}
}

func (r *Ranker) drop(log *slog.Logger, id string, cause error) outcome {
	err := &CandidateError{CandidateID: id, Cause: cause}
	log.Warn("dropping candidate", slog.String("candidate_id", id), slog.Any("error", err))
	r.Metrics.dropped()
	return outcome{kind: outcomeDropped, result: types.MatchResult{CandidateID: id}}
}

func collect(outcomes []outcome, opts types.RankOptions) *Report {
	report := &Report{Matches: []types.MatchResult{}, Excluded: []types.MatchResult{}}
	minScore := opts.EffectiveMinScore()

	for _, o := range outcomes {
		switch o.kind {
		case outcomeSkipped:
			continue
		case outcomeDropped:
			report.Stats.Dropped++
		case outcomeExcluded:
			report.Stats.Excluded++
			report.Excluded = append(report.Excluded, o.result)
		case outcomeScored:
			if o.result.OverallScore < minScore {
				report.Stats.BelowThreshold++
				break
			}
			report.Matches = append(report.Matches, o.result)
		}
		report.Stats.Evaluated++
	}

	SortMatches(report.Matches)
	if limit := opts.EffectiveMaxResults(); len(report.Matches) > limit {
		report.Matches = report.Matches[:limit]
	}
	report.Stats.Returned = len(report.Matches)
	return report
}

// SortMatches orders matches by score descending, then candidate id ascending.
func SortMatches(matches []types.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
}

func (r *Ranker) recordAnomalies(log *slog.Logger, p profile.Profile) {
	for _, a := range p.Anomalies {
		r.Metrics.anomaly(a.Field)
		log.Debug("profile anomaly",
			slog.String("profile_id", p.ID),
			slog.String("field", a.Field),
			slog.String("detail", a.String()),
		)
	}
}

// ValidateWeights checks weights against the dimensions this Ranker scores.
func (r *Ranker) ValidateWeights(weights types.WeightConfig) error {
	return ValidateWeights(weights, r.registry())
}

func (r *Ranker) registry() *scoring.Registry {
	if r.Registry != nil {
		return r.Registry
	}
	return scoring.NewRegistry(scoring.DefaultConstants())
}

func (r *Ranker) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Ranker) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

func (r *Ranker) logger(ctx context.Context) *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logctx.From(ctx)
}
