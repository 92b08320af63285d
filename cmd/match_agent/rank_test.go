package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/roommate-matcher/internal/types"
)

const (
	testUser = `{
		"id": "user-1",
		"gender": "female",
		"locations": ["Toronto"],
		"budget": "$1200-$1800",
		"smoking": false,
		"has_pets": false,
		"work_schedule": "dayShift",
		"hobbies": ["hiking", "cooking"],
		"preferences": {"gender": ["female"]}
	}`

	testCandidates = `[
		{
			"id": "cand-f",
			"gender": "female",
			"locations": ["Toronto"],
			"budget_min": 1300,
			"budget_max": 1700,
			"smoking": false,
			"has_pets": false,
			"work_schedule": "dayShift",
			"hobbies": ["cooking"],
			"preferences": {}
		},
		{
			"id": "cand-m",
			"gender": "male",
			"locations": ["Toronto"],
			"budget": "$1200-$1800",
			"smoking": false,
			"preferences": {}
		}
	]`

	testWeights = `{
		"budget": {"weight": 3, "importance": "preferred"},
		"location": {"weight": 3, "importance": "preferred"},
		"gender": {"weight": 1, "importance": "required"}
	}`
)

type rankFiles struct {
	dir, user, candidates, weights string
}

func writeRankFiles(t *testing.T) rankFiles {
	t.Helper()
	dir := t.TempDir()
	return rankFiles{
		dir:        dir,
		user:       writeTempFile(t, dir, "user.json", testUser),
		candidates: writeTempFile(t, dir, "candidates.json", testCandidates),
		weights:    writeTempFile(t, dir, "weights.json", testWeights),
	}
}

func decodeResponse(t *testing.T, s string) types.RankResponse {
	t.Helper()
	var resp types.RankResponse
	require.NoError(t, json.Unmarshal([]byte(s), &resp), "stdout: %s", s)
	return resp
}

func candidateIDs(matches []types.MatchResult) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.CandidateID)
	}
	return ids
}

func TestRankCommand_JSONToStdout(t *testing.T) {
	f := writeRankFiles(t)

	stdout, _, err := executeCommand(t, "rank",
		"--user", f.user, "--candidates", f.candidates, "--weights", f.weights, "--min-score", "0")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, []string{"cand-f"}, candidateIDs(resp.Matches))
	assert.Equal(t, 1, resp.Stats.Excluded)
	assert.Equal(t, 1, resp.Stats.Returned)
	assert.NotEmpty(t, resp.Matches[0].Reasons)
	assert.Empty(t, resp.Matches[0].FailedRequirements)
}

func TestRankCommand_TableToFile(t *testing.T) {
	f := writeRankFiles(t)
	outPath := filepath.Join(f.dir, "out", "matches.txt")

	stdout, _, err := executeCommand(t, "rank",
		"-u", f.user, "-c", f.candidates, "-w", f.weights,
		"--min-score", "0", "--format", "table", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Successfully ranked 1 matches")

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "cand-f")
	assert.NotContains(t, string(content), "cand-m")
}

func TestRankCommand_Verbose(t *testing.T) {
	f := writeRankFiles(t)

	_, stderr, err := executeCommand(t, "rank",
		"-u", f.user, "-c", f.candidates, "-w", f.weights, "--min-score", "0", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stderr, "WEIGHTS")
	assert.Contains(t, stderr, "RANKING SUMMARY")
	assert.Contains(t, stderr, "TOP MATCHES")
	assert.Contains(t, stderr, "EXCLUDED BY REQUIREMENTS")
	assert.Contains(t, stderr, "cand-m")
}

func TestRankCommand_ExcludeID(t *testing.T) {
	f := writeRankFiles(t)

	stdout, _, err := executeCommand(t, "rank",
		"-u", f.user, "-c", f.candidates, "-w", f.weights, "--min-score", "0", "--exclude", "cand-f")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.NotNil(t, resp.Matches)
	assert.Empty(t, resp.Matches)
}

func TestRankCommand_DefaultWeights(t *testing.T) {
	f := writeRankFiles(t)

	stdout, _, err := executeCommand(t, "rank", "-u", f.user, "-c", f.candidates, "--min-score", "0")
	require.NoError(t, err)

	// The built-in weights do not gate on gender.
	resp := decodeResponse(t, stdout)
	assert.ElementsMatch(t, []string{"cand-f", "cand-m"}, candidateIDs(resp.Matches))
	assert.Equal(t, 0, resp.Stats.Excluded)
}

func TestRankCommand_ConfigFile(t *testing.T) {
	f := writeRankFiles(t)
	cfgPath := writeTempFile(t, f.dir, "config.toml", `
min_score = 0
max_results = 1

[weights.budget]
weight = 1.0
importance = "preferred"
`)

	stdout, _, err := executeCommand(t, "rank", "-u", f.user, "-c", f.candidates, "--config", cfgPath)
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Len(t, resp.Matches, 1)
	assert.Equal(t, 0, resp.Stats.Excluded, "config weights carry no required dimension")
}

func TestRankCommand_FlagsOverrideConfig(t *testing.T) {
	f := writeRankFiles(t)
	cfgPath := writeTempFile(t, f.dir, "config.json", `{"min_score": 100, "max_results": 1}`)

	stdout, _, err := executeCommand(t, "rank",
		"-u", f.user, "-c", f.candidates, "-w", f.weights, "--config", cfgPath, "--min-score", "0")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, []string{"cand-f"}, candidateIDs(resp.Matches))
}

func TestRankCommand_ConfigVerboseAndFlagDefaults(t *testing.T) {
	f := writeRankFiles(t)
	cfgPath := writeTempFile(t, f.dir, "config.toml", `
verbose = true
workers = 2
`)

	stdout, stderr, err := executeCommand(t, "rank",
		"-u", f.user, "-c", f.candidates, "-w", f.weights, "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, stderr, "RANKING SUMMARY")
	resp := decodeResponse(t, stdout)
	for _, m := range resp.Matches {
		assert.GreaterOrEqual(t, m.OverallScore, types.DefaultMinScore)
	}
}

func TestRankCommand_TOMLWeights(t *testing.T) {
	f := writeRankFiles(t)
	weightsPath := writeTempFile(t, f.dir, "weights.toml", `
[location]
weight = 2.0
importance = "preferred"

[gender]
weight = 1.0
importance = "required"
`)

	stdout, _, err := executeCommand(t, "rank", "-u", f.user, "-c", f.candidates, "-w", weightsPath, "--min-score", "0")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, []string{"cand-f"}, candidateIDs(resp.Matches))
}

func TestRankCommand_MalformedCandidates(t *testing.T) {
	f := writeRankFiles(t)
	candidates := writeTempFile(t, f.dir, "mixed.json", `[
		{"id": "cand-f", "gender": "female", "locations": ["Toronto"], "budget": "$1300-$1700"},
		{"id": "cand-odd", "gender": "female", "locations": "Toronto", "budget": 1500, "smoking": "no", "age": "31"},
		{"gender": "female"}
	]`)

	stdout, _, err := executeCommand(t, "rank", "-u", f.user, "-c", candidates, "-w", f.weights, "--min-score", "0")
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.ElementsMatch(t, []string{"cand-f", "cand-odd"}, candidateIDs(resp.Matches))
	assert.Equal(t, 1, resp.Stats.Dropped)
}

func TestRankCommand_Errors(t *testing.T) {
	f := writeRankFiles(t)
	notAList := writeTempFile(t, f.dir, "bad_candidates.json", `{"id": "cand-f"}`)
	requiredOnly := writeTempFile(t, f.dir, "required_only.json", `{"gender": {"weight": 1, "importance": "required"}}`)
	badConfig := writeTempFile(t, f.dir, "bad_config.json", `{"min_score": 250}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing user flag",
			args:    []string{"rank", "-c", f.candidates},
			wantErr: `required flag(s) "user" not set`,
		},
		{
			name:    "missing candidates flag",
			args:    []string{"rank", "-u", f.user},
			wantErr: `required flag(s) "candidates" not set`,
		},
		{
			name:    "candidates not a list",
			args:    []string{"rank", "-u", f.user, "-c", notAList},
			wantErr: "failed to load candidates",
		},
		{
			name:    "user file not found",
			args:    []string{"rank", "-u", filepath.Join(f.dir, "nope.json"), "-c", f.candidates},
			wantErr: "failed to load user profile",
		},
		{
			name:    "bad importance",
			args:    []string{"rank", "-u", f.user, "-c", f.candidates, "-w", repoPath("testdata", "invalid", "weights_bad_importance.json")},
			wantErr: "failed to load weights",
		},
		{
			name:    "required dimensions only",
			args:    []string{"rank", "-u", f.user, "-c", f.candidates, "-w", requiredOnly},
			wantErr: "failed to rank matches",
		},
		{
			name:    "unknown format",
			args:    []string{"rank", "-u", f.user, "-c", f.candidates, "--format", "xml"},
			wantErr: "unknown output format",
		},
		{
			name:    "out of range config",
			args:    []string{"rank", "-u", f.user, "-c", f.candidates, "--config", badConfig},
			wantErr: "min_score",
		},
		{
			name:    "out of range flag",
			args:    []string{"rank", "-u", f.user, "-c", f.candidates, "--min-score", "101"},
			wantErr: "min_score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
