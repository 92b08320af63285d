package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/roommate-matcher/internal/config"
	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/matching"
	"github.com/jonathan/roommate-matcher/internal/observability"
	"github.com/jonathan/roommate-matcher/internal/output"
	"github.com/jonathan/roommate-matcher/internal/schemas"
	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate roommates for a user",
	Long: `Scores every candidate against the user's profile using the weighted dimensions,
drops candidates that fail a required dimension, and writes the qualifying matches
best first as JSON or a table.`,
	RunE: runRank,
}

var (
	rankUser       string
	rankCandidates string
	rankWeights    string
	rankConfig     string
	rankExclude    string
	rankOutput     string
	rankFormat     string
	rankMinScore   int
	rankMaxResults int
	rankWorkers    int
	rankVerbose    bool
)

func init() {
	rankCmd.Flags().StringVarP(&rankUser, "user", "u", "", "Path to the user's profile JSON file (required)")
	rankCmd.Flags().StringVarP(&rankCandidates, "candidates", "c", "", "Path to a JSON array of candidate profiles (required)")
	rankCmd.Flags().StringVarP(&rankWeights, "weights", "w", "", "Path to a weights JSON or TOML file (default: config weights, then built-in defaults)")
	rankCmd.Flags().StringVar(&rankConfig, "config", "", "Path to a JSON or TOML config file")
	rankCmd.Flags().StringVar(&rankExclude, "exclude", "", "Candidate ID to leave out of the results")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to the output file (default: stdout)")
	rankCmd.Flags().StringVarP(&rankFormat, "format", "f", string(output.FormatJSON), "Output format: json or table")
	rankCmd.Flags().IntVar(&rankMinScore, "min-score", types.DefaultMinScore, "Minimum overall score to keep (0-100)")
	rankCmd.Flags().IntVar(&rankMaxResults, "max-results", types.DefaultMaxResults, "Maximum number of matches returned")
	rankCmd.Flags().IntVar(&rankWorkers, "workers", 0, "Concurrent candidate evaluations (0 = number of CPUs)")
	rankCmd.Flags().BoolVarP(&rankVerbose, "verbose", "v", false, "Print weights, stats and top matches to stderr")

	if err := rankCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	// 1. Resolve configuration: explicit flags, then the config file, then flag defaults.
	fileCfg := config.Default()
	if rankConfig != "" {
		loaded, err := config.LoadConfig(rankConfig)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = loaded
	}
	flags := cmd.Flags()
	explicit := config.Config{Verbose: rankVerbose}
	if flags.Changed("min-score") {
		explicit.MinScore = &rankMinScore
	}
	if flags.Changed("max-results") {
		explicit.MaxResults = rankMaxResults
	}
	if flags.Changed("workers") {
		explicit.Workers = rankWorkers
	}
	cfg := explicit.MergeWithDefaults(*fileCfg)
	cfg = cfg.MergeWithDefaults(config.Config{MinScore: &rankMinScore, MaxResults: rankMaxResults})
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := output.ParseFormat(rankFormat)
	if err != nil {
		return err
	}

	// 2. Load inputs
	var user types.RawProfileRecord
	if err := loadJSON(schemas.RawProfile, rankUser, &user); err != nil {
		return fmt.Errorf("failed to load user profile: %w", err)
	}
	var candidates []types.RawProfileRecord
	if err := loadJSON(schemas.Candidates, rankCandidates, &candidates); err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}
	weights, err := resolveWeights(rankWeights, cfg.Weights)
	if err != nil {
		return err
	}

	logger := logctx.New(cmd.ErrOrStderr(), cfg.Verbose)
	ctx := logctx.Into(cmd.Context(), logger)

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintWeights(weights)
	}

	// 3. Rank
	ranker := &matching.Ranker{
		Registry: scoring.NewRegistry(cfg.Scoring),
		Workers:  cfg.Workers,
	}
	opts := types.RankOptions{
		MinScore:   cfg.MinScore,
		MaxResults: cfg.MaxResults,
		ExcludeID:  rankExclude,
	}

	start := time.Now()
	report, err := ranker.Evaluate(ctx, user, weights, candidates, opts)
	if err != nil {
		return fmt.Errorf("failed to rank matches: %w", err)
	}
	if printer != nil {
		printer.PrintRankStats(report.Stats, time.Since(start))
		printer.PrintTopMatches(report.Matches)
		printer.PrintExcluded(report.Excluded)
	}

	// 4. Write results
	resp := types.RankResponse{Matches: report.Matches, Stats: report.Stats}
	if rankOutput == "" {
		return output.Write(cmd.OutOrStdout(), format, resp)
	}
	if err := writeOutputFile(rankOutput, format, resp); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully ranked %d matches to %s\n", len(resp.Matches), rankOutput)
	return nil
}

// loadJSON validates the file at path against the named bundled schema and
// decodes it into v.
func loadJSON(schemaName, path string, v any) error {
	if err := schemas.ValidateFile(schemaName, path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// resolveWeights picks the weights file when given, then the config preset,
// then the built-in defaults.
func resolveWeights(path string, preset types.WeightConfig) (types.WeightConfig, error) {
	if path == "" {
		if len(preset) > 0 {
			return preset, nil
		}
		return types.DefaultWeights(), nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := schemas.ValidateFile(schemas.WeightConfig, path); err != nil {
			return nil, fmt.Errorf("failed to load weights: %w", err)
		}
	}
	weights, err := config.LoadWeights(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	return weights, nil
}

func writeOutputFile(path string, format output.Format, resp types.RankResponse) (err error) {
	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", path, cerr)
		}
	}()

	return output.Write(f, format, resp)
}
