package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/google/uuid"
)

// PlayerRepo defines the interface for player persistence operations.
type PlayerRepo interface {
	// Save inserts or updates a player in the repository.
	Save(ctx context.Context, player *dmn.Player) error

	// ByID retrieves a player by their unique ID.
	// Returns an error if the player is not found or in case of an unexpected error.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Player, error)
}

// MatchResultRepo stores the results of finished games.
type MatchResultRepo interface {
	Save(ctx context.Context, result *dmn.MatchResult) error

	// ByActor returns the latest results an actor took part in, newest first.
	ByActor(ctx context.Context, actorID string, limit int64) ([]dmn.MatchResult, error)
}

// Leaderboard ranks players by wins.
type Leaderboard interface {
	// RecordResult adds a win when won is set and keeps the best score seen for the player.
	RecordResult(ctx context.Context, playerID string, won bool, score int) error

	// Top returns up to n entries, most wins first.
	Top(ctx context.Context, n int64) ([]dmn.LeaderboardEntry, error)
}
