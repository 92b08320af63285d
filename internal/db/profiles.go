package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/roommate-matcher/internal/logctx"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// UpsertProfile creates or replaces the profile record of a user.
// The record's ID is always overwritten with the user ID.
func (db *DB) UpsertProfile(ctx context.Context, userID uuid.UUID, record types.RawProfileRecord, complete bool) error {
	record.ID = userID.String()
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal profile record: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, record, is_complete)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET record = $2, is_complete = $3, updated_at = NOW()`,
		userID, recordJSON, complete,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", userID, err)
	}
	return nil
}

// GetProfile retrieves the profile row of a user.
// Returns ErrNotFound if the user has no profile.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	var recordJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, record, is_complete, created_at, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &recordJSON, &p.IsComplete, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}

	record, err := decodeRecord(p.UserID, recordJSON)
	if err != nil {
		return nil, err
	}
	p.Record = record
	return &p, nil
}

// ListCandidates returns the candidate pool for a user: complete profiles of
// other users the user has not dismissed, most recently updated first.
// A non-positive limit uses DefaultCandidateLimit. Rows that cannot be decoded
// are logged and skipped; malformed fields inside a row are left for the
// normalizer.
func (db *DB) ListCandidates(ctx context.Context, userID uuid.UUID, limit int) ([]types.RawProfileRecord, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT p.user_id, p.record
		 FROM profiles p
		 WHERE p.user_id <> $1
		   AND p.is_complete
		   AND NOT EXISTS (
		       SELECT 1 FROM dismissed_matches d
		       WHERE d.user_id = $1 AND d.dismissed_user_id = p.user_id
		   )
		 ORDER BY p.updated_at DESC, p.user_id
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates for %s: %w", userID, err)
	}
	defer rows.Close()

	candidates := []types.RawProfileRecord{}
	for rows.Next() {
		var id uuid.UUID
		var recordJSON []byte
		if err := rows.Scan(&id, &recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		record, err := decodeRecord(id, recordJSON)
		if err != nil {
			logctx.From(ctx).Warn("skipping unreadable candidate profile",
				slog.String("candidate_id", id.String()),
				slog.Any("error", err),
			)
			continue
		}
		candidates = append(candidates, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

// IsComplete reports whether the user has a complete profile.
// Users without a profile are reported as incomplete.
func (db *DB) IsComplete(ctx context.Context, userID uuid.UUID) (bool, error) {
	var complete bool
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE((SELECT is_complete FROM profiles WHERE user_id = $1), FALSE)`,
		userID,
	).Scan(&complete)
	if err != nil {
		return false, fmt.Errorf("failed to check profile %s: %w", userID, err)
	}
	return complete, nil
}

// DeleteProfile removes a profile along with its weights and dismissals.
func (db *DB) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", userID, err)
	}
	return nil
}

func decodeRecord(userID uuid.UUID, data []byte) (types.RawProfileRecord, error) {
	var record types.RawProfileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return types.RawProfileRecord{}, fmt.Errorf("failed to unmarshal profile %s: %w", userID, err)
	}
	record.ID = userID.String()
	return record, nil
}
