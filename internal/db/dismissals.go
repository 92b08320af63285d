package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DismissMatch hides dismissedID from the candidate pool of userID.
// Dismissing the same user twice is a no-op. Returns ErrNotFound if userID
// has no profile or dismissedID has no complete profile.
func (db *DB) DismissMatch(ctx context.Context, userID, dismissedID uuid.UUID) error {
	if userID == dismissedID {
		return fmt.Errorf("cannot dismiss own profile")
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO dismissed_matches (user_id, dismissed_user_id)
		 SELECT $1, p.user_id FROM profiles p
		 WHERE p.user_id = $2 AND p.is_complete
		 ON CONFLICT DO NOTHING`,
		userID, dismissedID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to dismiss %s for %s: %w", dismissedID, userID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing inserted: either already dismissed or no such candidate.
	complete, err := db.IsComplete(ctx, dismissedID)
	if err != nil {
		return err
	}
	if !complete {
		return fmt.Errorf("candidate %s: %w", dismissedID, ErrNotFound)
	}
	return nil
}

// ListDismissed returns the IDs a user has dismissed, oldest first.
func (db *DB) ListDismissed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT dismissed_user_id FROM dismissed_matches
		 WHERE user_id = $1 ORDER BY created_at, dismissed_user_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dismissed matches for %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan dismissed match: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dismissed matches: %w", err)
	}
	return ids, nil
}
