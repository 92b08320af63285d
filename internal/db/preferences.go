package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/roommate-matcher/internal/types"
)

// GetWeightConfig retrieves the saved weight configuration of a user.
// Returns ErrNotFound if the user never saved one.
func (db *DB) GetWeightConfig(ctx context.Context, userID uuid.UUID) (types.WeightConfig, error) {
	var weightsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT weights FROM match_preferences WHERE user_id = $1`,
		userID,
	).Scan(&weightsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("weights for %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get weights for %s: %w", userID, err)
	}

	var weights types.WeightConfig
	if err := json.Unmarshal(weightsJSON, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights for %s: %w", userID, err)
	}
	return weights, nil
}

// SaveWeightConfig creates or replaces the weight configuration of a user.
// Returns ErrNotFound if the user has no profile.
func (db *DB) SaveWeightConfig(ctx context.Context, userID uuid.UUID, weights types.WeightConfig) error {
	weightsJSON, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO match_preferences (user_id, weights)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET weights = $2, updated_at = NOW()`,
		userID, weightsJSON,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to save weights for %s: %w", userID, err)
	}
	return nil
}
