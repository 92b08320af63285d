package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/roommate-matcher/internal/types"
)

// DefaultCandidateLimit caps ListCandidates when no positive limit is given.
const DefaultCandidateLimit = 500

// Profile is a row of the profiles table.
type Profile struct {
	UserID     uuid.UUID              `json:"user_id"`
	Record     types.RawProfileRecord `json:"record"`
	IsComplete bool                   `json:"is_complete"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}
