package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/roommate-matcher/internal/config"
	"github.com/jonathan/roommate-matcher/internal/db"
	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/matching"
	"github.com/jonathan/roommate-matcher/internal/server/middleware"
	"github.com/jonathan/roommate-matcher/internal/server/ratelimit"
	"github.com/jonathan/roommate-matcher/internal/types"
)

var fixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	pingErr   error
	profiles  map[uuid.UUID]*db.Profile
	weights   map[uuid.UUID]types.WeightConfig
	dismissed map[uuid.UUID]map[uuid.UUID]bool
	poolLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  make(map[uuid.UUID]*db.Profile),
		weights:   make(map[uuid.UUID]types.WeightConfig),
		dismissed: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, db.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) ListCandidates(_ context.Context, userID uuid.UUID, limit int) ([]types.RawProfileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.poolLimit = limit

	var out []types.RawProfileRecord
	for id, p := range f.profiles {
		if id == userID || !p.IsComplete || f.dismissed[userID][id] {
			continue
		}
		out = append(out, p.Record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetWeightConfig(_ context.Context, userID uuid.UUID) (types.WeightConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.weights[userID]
	if !ok {
		return nil, fmt.Errorf("weights for %s: %w", userID, db.ErrNotFound)
	}
	return w, nil
}

func (f *fakeStore) SaveWeightConfig(_ context.Context, userID uuid.UUID, weights types.WeightConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; !ok {
		return fmt.Errorf("profile %s: %w", userID, db.ErrNotFound)
	}
	f.weights[userID] = weights
	return nil
}

func (f *fakeStore) DismissMatch(_ context.Context, userID, dismissedID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; !ok {
		return fmt.Errorf("profile %s: %w", userID, db.ErrNotFound)
	}
	p, ok := f.profiles[dismissedID]
	if !ok || !p.IsComplete {
		return fmt.Errorf("candidate %s: %w", dismissedID, db.ErrNotFound)
	}
	if f.dismissed[userID] == nil {
		f.dismissed[userID] = make(map[uuid.UUID]bool)
	}
	f.dismissed[userID][dismissedID] = true
	return nil
}

func (f *fakeStore) add(complete bool, mods ...func(*types.RawProfileRecord)) uuid.UUID {
	id := uuid.New()
	f.profiles[id] = &db.Profile{UserID: id, Record: sampleRecord(id.String(), mods...), IsComplete: complete}
	return id
}

func sampleRecord(id string, mods ...func(*types.RawProfileRecord)) types.RawProfileRecord {
	smoking, pets := false, false
	r := types.RawProfileRecord{
		ID:           id,
		Gender:       "female",
		Locations:    []string{"Toronto"},
		Budget:       "$1200-$1800",
		MoveInStart:  "2025-03-01",
		MoveInEnd:    "2025-03-31",
		HousingType:  "apartment",
		LivingSpace:  "privateRoom",
		Smoking:      &smoking,
		HasPets:      &pets,
		WorkSchedule: "dayShift",
		Hobbies:      []string{"hiking", "cooking"},
	}
	for _, m := range mods {
		m(&r)
	}
	return r
}

type testServer struct {
	*Server
	store   *fakeStore
	jwt     *JWTService
	metrics *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := newFakeStore()
	jwtService := NewJWTService(config.JWTConfig{Secret: "test-secret-key-for-jwt-signing-minimum-32-bytes"})
	reg := prometheus.NewRegistry()

	s, err := New(Config{
		Store:  store,
		Tokens: jwtService.AsTokenValidator(),
		Ranker: &matching.Ranker{
			Workers: 2,
			Clock:   func() time.Time { return fixedNow },
			Metrics: matching.NewMetrics(reg),
		},
		Logger:             logctx.Discard(),
		Gatherer:           reg,
		CandidatePoolLimit: 25,
	})
	require.NoError(t, err)
	return &testServer{Server: s, store: store, jwt: jwtService, metrics: reg}
}

func (ts *testServer) do(t *testing.T, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != uuid.Nil {
		token, err := ts.jwt.GenerateToken(userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestNew_RequiresStoreAndTokens(t *testing.T) {
	_, err := New(Config{Tokens: NewJWTService(config.JWTConfig{Secret: "x"}).AsTokenValidator()})
	assert.Error(t, err)

	_, err = New(Config{Store: newFakeStore()})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	ts.store.pingErr = errors.New("connection refused")
	w = ts.do(t, http.MethodGet, "/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimiting(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	s, err := New(Config{
		Store:       newFakeStore(),
		Tokens:      NewJWTService(config.JWTConfig{Secret: "x"}).AsTokenValidator(),
		Logger:      logctx.Discard(),
		Gatherer:    prometheus.NewRegistry(),
		RateLimiter: limiter,
	})
	require.NoError(t, err)

	send := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send("/v1/preferences").Code)
	limited := send("/v1/preferences")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("/health").Code, "health is never limited")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)
	ts.store.add(true)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/v1/matches?min_score=0", me, nil).Code)

	w := ts.do(t, http.MethodGet, "/metrics", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matcher_candidates_evaluated_total 1")
	assert.Contains(t, w.Body.String(), "matcher_rank_duration_seconds")
}

func TestHandleRank(t *testing.T) {
	ts := newTestServer(t)
	req := types.RankRequest{
		User:    sampleRecord("user"),
		Weights: types.DefaultWeights(),
		Candidates: []types.RawProfileRecord{
			sampleRecord("a"),
			sampleRecord("b", func(r *types.RawProfileRecord) { r.Locations = []string{"Vancouver"} }),
		},
		Options: types.RankOptions{MaxResults: 1},
	}

	w := ts.do(t, http.MethodPost, "/v1/rank", uuid.Nil, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[types.RankResponse](t, w)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "a", resp.Matches[0].CandidateID)
	assert.NotEmpty(t, resp.Matches[0].Reasons)
	assert.Equal(t, 2, resp.Stats.Evaluated)
	assert.Equal(t, 1, resp.Stats.Returned)
}

func TestHandleRank_MalformedCandidateDoesNotFailRequest(t *testing.T) {
	ts := newTestServer(t)
	user, err := json.Marshal(sampleRecord("user"))
	require.NoError(t, err)
	good, err := json.Marshal(sampleRecord("good"))
	require.NoError(t, err)

	body := `{
		"user": ` + string(user) + `,
		"weights": {"budget": {"weight": 1, "importance": "preferred"}, "smoking": {"weight": 1, "importance": "preferred"}},
		"candidates": [` + string(good) + `, {"id": "bad", "budget": 1500, "smoking": "no", "age": "29"}, {"gender": "male"}],
		"options": {"min_score": 0}
	}`

	w := ts.do(t, http.MethodPost, "/v1/rank", uuid.Nil, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[types.RankResponse](t, w)
	ids := make([]string, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		ids = append(ids, m.CandidateID)
	}
	assert.ElementsMatch(t, []string{"good", "bad"}, ids)
	assert.Equal(t, 1, resp.Stats.Dropped)
}

func TestHandleRank_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"empty body", "", http.StatusBadRequest, "is required"},
		{"malformed json", "{not json", http.StatusBadRequest, "valid JSON"},
		{"missing user", `{"weights": {"budget": {"weight": 1, "importance": "preferred"}}}`, http.StatusBadRequest, "details"},
		{
			"unknown dimension",
			`{"user": {"id": "u"}, "weights": {"vibes": {"weight": 1, "importance": "preferred"}}}`,
			http.StatusUnprocessableEntity,
			"unknown dimension",
		},
		{
			"required only",
			`{"user": {"id": "u"}, "weights": {"gender": {"weight": 1, "importance": "required"}}}`,
			http.StatusUnprocessableEntity,
			"no preferred dimension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/v1/rank", uuid.Nil, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHandleListMatches(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)
	good := ts.store.add(true)
	far := ts.store.add(true, func(r *types.RawProfileRecord) { r.Locations = []string{"Vancouver"} })
	ts.store.add(false)

	w := ts.do(t, http.MethodGet, "/v1/matches?min_score=0&max_results=5", me, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[types.RankResponse](t, w)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, good.String(), resp.Matches[0].CandidateID)
	assert.Equal(t, far.String(), resp.Matches[1].CandidateID)
	assert.Equal(t, 25, ts.store.poolLimit)
}

func TestHandleListMatches_UsesSavedWeights(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true, func(r *types.RawProfileRecord) { r.Preferences.Gender = []string{"female"} })
	ts.store.add(true, func(r *types.RawProfileRecord) { r.Gender = "male" })
	woman := ts.store.add(true)
	ts.store.weights[me] = types.WeightConfig{
		"location": {Weight: 1, Importance: types.ImportancePreferred},
		"gender":   {Weight: 1, Importance: types.ImportanceRequired},
	}

	w := ts.do(t, http.MethodGet, "/v1/matches", me, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[types.RankResponse](t, w)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, woman.String(), resp.Matches[0].CandidateID)
	assert.Equal(t, 1, resp.Stats.Excluded)
}

func TestHandleListMatches_MalformedStoredCandidate(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)
	good := ts.store.add(true)

	sloppy := uuid.New()
	var record types.RawProfileRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": "`+sloppy.String()+`", "budget": 1500, "smoking": "no", "locations": {"city": "Toronto"}}`), &record))
	ts.store.profiles[sloppy] = &db.Profile{UserID: sloppy, Record: record, IsComplete: true}

	w := ts.do(t, http.MethodGet, "/v1/matches?min_score=0", me, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[types.RankResponse](t, w)
	ids := make([]string, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		ids = append(ids, m.CandidateID)
	}
	assert.ElementsMatch(t, []string{good.String(), sloppy.String()}, ids)

	metrics := ts.do(t, http.MethodGet, "/metrics", uuid.Nil, nil)
	assert.Contains(t, metrics.Body.String(), `matcher_profile_anomalies_total{field="locations"} 1`)
}

func TestMissingCallerProfile_NotFound(t *testing.T) {
	ts := newTestServer(t)
	other := ts.store.add(true)
	ghost := uuid.New()
	weights := types.WeightConfig{"budget": {Weight: 1, Importance: types.ImportancePreferred}}

	w := ts.do(t, http.MethodPut, "/v1/preferences", ghost, weights)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "profile not found")

	w = ts.do(t, http.MethodPost, "/v1/matches/"+other.String()+"/dismiss", ghost, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "profile not found")

	assert.Empty(t, ts.store.weights)
	assert.Empty(t, ts.store.dismissed)
}

func TestHandleListMatches_Errors(t *testing.T) {
	ts := newTestServer(t)
	incomplete := ts.store.add(false)
	complete := ts.store.add(true)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/v1/matches", uuid.Nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/v1/matches", uuid.New(), nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/v1/matches", incomplete, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/v1/matches?min_score=high", complete, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/v1/matches?min_score=101", complete, nil).Code)
}

func TestHandleDismissMatch(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)
	other := ts.store.add(true)

	w := ts.do(t, http.MethodPost, "/v1/matches/"+other.String()+"/dismiss", me, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[map[string]bool](t, w)["dismissed"])

	w = ts.do(t, http.MethodGet, "/v1/matches?min_score=0", me, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[types.RankResponse](t, w).Matches)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/v1/matches/not-a-uuid/dismiss", me, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/v1/matches/"+me.String()+"/dismiss", me, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/v1/matches/"+uuid.NewString()+"/dismiss", me, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/v1/matches/"+other.String()+"/dismiss", uuid.Nil, nil).Code)
}

func TestPreferences(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)

	w := ts.do(t, http.MethodGet, "/v1/preferences", me, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[PreferencesResponse](t, w)
	assert.True(t, got.Default)
	assert.Equal(t, types.DefaultWeights(), got.Weights)

	weights := types.WeightConfig{
		"budget": {Weight: 5, Importance: types.ImportancePreferred},
		"pets":   {Weight: 1, Importance: types.ImportanceRequired},
	}
	w = ts.do(t, http.MethodPut, "/v1/preferences", me, weights)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/v1/preferences", me, nil)
	got = decode[PreferencesResponse](t, w)
	assert.False(t, got.Default)
	assert.Equal(t, weights, got.Weights)
}

func TestSavePreferences_Invalid(t *testing.T) {
	ts := newTestServer(t)
	me := ts.store.add(true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty object", `{}`, http.StatusBadRequest},
		{"bad importance", `{"budget": {"weight": 1, "importance": "sometimes"}}`, http.StatusBadRequest},
		{"negative weight", `{"budget": {"weight": -1, "importance": "preferred"}}`, http.StatusBadRequest},
		{"unknown dimension", `{"vibes": {"weight": 1, "importance": "preferred"}}`, http.StatusUnprocessableEntity},
		{"all zero", `{"budget": {"weight": 0, "importance": "preferred"}}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPut, "/v1/preferences", me, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, ts.store.weights)
}
