package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonathan/roommate-matcher/internal/db"
	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/schemas"
	"github.com/jonathan/roommate-matcher/internal/server/middleware"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// PreferencesResponse is the body of GET and PUT /v1/preferences.
type PreferencesResponse struct {
	Weights types.WeightConfig `json:"weights"`
	Default bool               `json:"default"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logctx.From(r.Context()).Warn("health check failed", slog.Any("error", err))
		s.jsonResponse(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRank ranks the candidates carried in the request body. It needs no
// authentication and touches no storage.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r, schemas.RankRequest)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	var req types.RankRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	report, err := s.ranker.Evaluate(r.Context(), req.User, req.Weights, req.Candidates, req.Options)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, types.RankResponse{Matches: report.Matches, Stats: report.Stats})
}

// handleListMatches ranks the stored candidate pool for the caller using
// their saved weights, or the default preset when none are saved.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	opts, err := rankOptionsFromQuery(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	opts.ExcludeID = userID.String()

	me, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "profile", ID: userID.String()}
		}
		s.errorResponse(w, r, err)
		return
	}
	if !me.IsComplete {
		s.errorResponse(w, r, &ErrProfileIncomplete{UserID: userID})
		return
	}

	weights, _, err := s.weightsFor(r, userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	candidates, err := s.store.ListCandidates(ctx, userID, s.poolLimit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	report, err := s.ranker.Evaluate(ctx, me.Record, weights, candidates, opts)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, types.RankResponse{Matches: report.Matches, Stats: report.Stats})
}

// handleDismissMatch hides a candidate from the caller's future matches.
func (s *Server) handleDismissMatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	dismissedID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}
	if dismissedID == userID {
		s.errorResponse(w, r, &ErrValidation{Field: "id", Message: "cannot dismiss yourself"})
		return
	}

	if err := s.requireProfile(r, userID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	if err := s.store.DismissMatch(r.Context(), userID, dismissedID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "candidate", ID: dismissedID.String()}
		}
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusCreated, map[string]bool{"dismissed": true})
}

// handleGetPreferences returns the caller's effective weights.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	weights, isDefault, err := s.weightsFor(r, userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, PreferencesResponse{Weights: weights, Default: isDefault})
}

// handleSavePreferences validates and stores the caller's weights.
func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	body, err := s.readBody(w, r, schemas.WeightConfig)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	var weights types.WeightConfig
	if err := json.Unmarshal(body, &weights); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := s.ranker.ValidateWeights(weights); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	if err := s.requireProfile(r, userID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	if err := s.store.SaveWeightConfig(r.Context(), userID, weights); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = &ErrNotFound{Resource: "profile", ID: userID.String()}
		}
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, PreferencesResponse{Weights: weights})
}

// requireProfile returns ErrNotFound when userID has no stored profile.
func (s *Server) requireProfile(r *http.Request, userID uuid.UUID) error {
	if _, err := s.store.GetProfile(r.Context(), userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrNotFound{Resource: "profile", ID: userID.String()}
		}
		return err
	}
	return nil
}

// weightsFor returns the saved weights of userID, or the default preset.
func (s *Server) weightsFor(r *http.Request, userID uuid.UUID) (types.WeightConfig, bool, error) {
	weights, err := s.store.GetWeightConfig(r.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		return s.defaultWeights, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return weights, false, nil
}

// readBody reads the request body and validates it against a bundled schema.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrValidation{Field: "body", Message: "unreadable or too large"}
	}
	if len(body) == 0 {
		return nil, &ErrValidation{Field: "body", Message: "is required"}
	}

	if err := schemas.Validate(schema, body); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, validationErr
		}
		return nil, &ErrValidation{Field: "body", Message: "must be valid JSON"}
	}
	return body, nil
}

func rankOptionsFromQuery(r *http.Request) (types.RankOptions, error) {
	var opts types.RankOptions
	q := r.URL.Query()

	if v := q.Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &ErrValidation{Field: "min_score", Message: "must be an integer"}
		}
		opts.MinScore = &n
	}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &ErrValidation{Field: "max_results", Message: "must be an integer"}
		}
		opts.MaxResults = n
	}

	if err := opts.Validate(); err != nil {
		return opts, &ErrValidation{Field: "query", Message: err.Error()}
	}
	return opts, nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logctx.From(r.Context()).Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// errorResponse maps err to a status code and writes an error JSON response.
// Internal errors are logged and replaced with a generic message.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := map[string]any{"error": err.Error()}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		details := make([]string, 0, len(validationErr.Errors))
		for _, fe := range validationErr.Errors {
			details = append(details, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		body = map[string]any{"error": "request does not match schema", "details": details}
	}

	if status >= http.StatusInternalServerError {
		logctx.From(r.Context()).Error("request failed",
			slog.Int("status", status),
			slog.Any("error", err),
		)
		body = map[string]any{"error": http.StatusText(status)}
	}
	s.jsonResponse(w, r, status, body)
}
